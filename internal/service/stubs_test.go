package service_test

// In-memory repository stubs shared by the service tests. They honor the
// same contracts as the GORM implementations (gorm.ErrRecordNotFound on
// missing rows, conditional updates returning affected counts) so the
// services under test behave exactly as against Postgres, minus real
// transactionality.

import (
	"context"
	"sort"
	"time"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── ProductoRepository ───────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos   map[uuid.UUID]*model.Producto
	movimientos []model.MovimientoStock
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) agregar(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.agregar(p)
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras == barcode && p.Activo {
			copia := *p
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) (int64, error) {
	p, ok := r.productos[id]
	if !ok || p.StockActual < cantidad {
		return 0, nil
	}
	p.StockActual -= cantidad
	return 1, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) AjustarStockTx(_ *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	p, ok := r.productos[id]
	if !ok || !p.Activo {
		return 0, nil
	}
	if delta < 0 && p.StockActual < -delta {
		return 0, nil
	}
	p.StockActual += delta
	return 1, nil
}

func (r *stubProductoRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── CAIRepository ────────────────────────────────────────────────────────────

type stubCAIRepo struct {
	cais map[uuid.UUID]*model.CAI
}

func newStubCAIRepo() *stubCAIRepo {
	return &stubCAIRepo{cais: make(map[uuid.UUID]*model.CAI)}
}

func (r *stubCAIRepo) agregar(c *model.CAI) *model.CAI {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cais[c.ID] = c
	return c
}

func (r *stubCAIRepo) Create(_ context.Context, c *model.CAI) error {
	r.agregar(c)
	return nil
}

func (r *stubCAIRepo) CreateTx(_ *gorm.DB, c *model.CAI) error {
	r.agregar(c)
	return nil
}

func (r *stubCAIRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CAI, error) {
	c, ok := r.cais[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *c
	return &copia, nil
}

func (r *stubCAIRepo) FindActiva(_ context.Context) (*model.CAI, error) {
	for _, c := range r.cais {
		if c.Activo {
			copia := *c
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCAIRepo) List(_ context.Context) ([]model.CAI, error) {
	var out []model.CAI
	for _, c := range r.cais {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCAIRepo) FindActivaTx(tx *gorm.DB) (*model.CAI, error) {
	return r.FindActiva(context.Background())
}

func (r *stubCAIRepo) AvanzarCorrelativoTx(_ *gorm.DB, id uuid.UUID, actual, nuevo int64) (int64, error) {
	c, ok := r.cais[id]
	if !ok || c.Correlativo != actual {
		return 0, nil
	}
	c.Correlativo = nuevo
	return 1, nil
}

func (r *stubCAIRepo) DesactivarTodasTx(_ *gorm.DB) error {
	for _, c := range r.cais {
		c.Activo = false
	}
	return nil
}

func (r *stubCAIRepo) SetActivoTx(_ *gorm.DB, id uuid.UUID, activo bool) error {
	c, ok := r.cais[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = activo
	return nil
}

func (r *stubCAIRepo) DB() *gorm.DB { return nil }

var _ repository.CAIRepository = (*stubCAIRepo)(nil)

// ── VentaRepository ──────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) SumPorSesionTx(_ *gorm.DB, sesionID uuid.UUID) (*repository.ResumenSesion, error) {
	resumen := &repository.ResumenSesion{
		TotalVentas:   decimal.Zero,
		TotalEfectivo: decimal.Zero,
		TotalTarjeta:  decimal.Zero,
	}
	for _, v := range r.ventas {
		if v.SesionCajaID != sesionID || v.Estado != "completada" {
			continue
		}
		for _, p := range v.Pagos {
			resumen.TotalVentas = resumen.TotalVentas.Add(p.Monto)
			switch p.Metodo {
			case "efectivo":
				resumen.TotalEfectivo = resumen.TotalEfectivo.Add(p.Monto)
			case "tarjeta":
				resumen.TotalTarjeta = resumen.TotalTarjeta.Add(p.Monto)
			}
		}
	}
	return resumen, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── CajaRepository ───────────────────────────────────────────────────────────

type stubCajaRepo struct {
	sesiones    map[uuid.UUID]*model.SesionCaja
	movimientos []model.MovimientoCaja
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *stubCajaRepo) CreateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *s
	return &copia, nil
}

func (r *stubCajaRepo) FindSesionAbiertaPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.UsuarioID == usuarioID && s.Estado == "abierta" {
			copia := *s
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCajaRepo) FindSesionAbiertaPorUsuarioTx(_ *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	return r.FindSesionAbiertaPorUsuario(context.Background(), usuarioID)
}

func (r *stubCajaRepo) FindSesionAbiertaPorUsuarioSharedTx(_ *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	return r.FindSesionAbiertaPorUsuario(context.Background(), usuarioID)
}

func (r *stubCajaRepo) UpdateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubCajaRepo) ListMovimientos(_ context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.SesionCajaID == sesionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) Historial(_ context.Context, filter dto.HistorialCajaFilter) ([]model.SesionCaja, int64, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		if filter.Estado != "" && filter.Estado != "all" && s.Estado != filter.Estado {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubCajaRepo) DB() *gorm.DB { return nil }

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

// ── FacturaRepository ────────────────────────────────────────────────────────

type stubFacturaRepo struct {
	facturas map[uuid.UUID]*model.Factura
}

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{facturas: make(map[uuid.UUID]*model.Factura)}
}

func (r *stubFacturaRepo) CreateTx(_ *gorm.DB, f *model.Factura) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.facturas[f.ID] = f
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *stubFacturaRepo) FindByVentaID(_ context.Context, ventaID uuid.UUID) (*model.Factura, error) {
	for _, f := range r.facturas {
		if f.VentaID == ventaID {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFacturaRepo) UpdatePDFPath(_ context.Context, id uuid.UUID, path string) error {
	f, ok := r.facturas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.PDFPath = &path
	return nil
}

var _ repository.FacturaRepository = (*stubFacturaRepo)(nil)

// ── UsuarioRepository ────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) agregar(u *model.Usuario) *model.Usuario {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return u
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.agregar(u)
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = true
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)
