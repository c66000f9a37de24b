package service

import (
	"context"
	"fmt"
	"time"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/repository"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// impuestoIncluidoDivisor backs the 15% ISV out of tax-inclusive prices:
// impuesto = total - total/1.15. The rate is fixed for this deployment; a
// per-line rate from the tax catalog would replace desglosarImpuesto.
var impuestoIncluidoDivisor = decimal.NewFromFloat(1.15)

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	caiRepo      repository.CAIRepository
	cajaRepo     repository.CajaRepository
	facturaRepo  repository.FacturaRepository
	usuarioRepo  repository.UsuarioRepository
	dispatcher   *worker.Dispatcher
	umbralAviso  int64
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	caiRepo repository.CAIRepository,
	cajaRepo repository.CajaRepository,
	facturaRepo repository.FacturaRepository,
	usuarioRepo repository.UsuarioRepository,
	dispatcher *worker.Dispatcher,
	umbralAviso int,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		caiRepo:      caiRepo,
		cajaRepo:     cajaRepo,
		facturaRepo:  facturaRepo,
		usuarioRepo:  usuarioRepo,
		dispatcher:   dispatcher,
		umbralAviso:  int64(umbralAviso),
	}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// One ACID transaction:
//  1. lock each product row, verify it exists, is active and has stock
//  2. capture unit prices and compute tax-inclusive totals
//  3. conditional stock decrement + movimiento de stock per line
//  4. take a shared lock on the open session, so a concurrent close waits
//     for this sale and a close that already won makes this sale abort
//  5. lock the active CAI, verify expiry/exhaustion, advance the correlative
//  6. persist Venta + items + pagos, Factura and movimientos de caja
//
// The CAI allocation is the LAST failable step before the writes so that an
// aborted sale never consumes an invoice number. Any failure rolls back every
// prior mutation in the unit.

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	// Sales require an open drawer session; the session is looked up from
	// the authenticated operator, never taken from the client. This read is
	// a fast-path reject only — the transaction re-validates it under lock.
	sesion, err := s.cajaRepo.FindSesionAbiertaPorUsuario(ctx, usuarioID)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.SinCajaAbierta()
		}
		return nil, traducirErrorDB(err)
	}

	lineas, err := parsearLineas(req.Items)
	if err != nil {
		return nil, err
	}

	var (
		venta      model.Venta
		factura    model.Factura
		cai        model.CAI
		cajero     string
		pagosNorm  []dto.PagoRequest
		vueltoOper decimal.Decimal
	)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		total := decimal.Zero

		// 1–2. Lock products, validate, capture prices.
		for i := range lineas {
			l := &lineas[i]
			p, err := s.productoRepo.FindByIDForUpdateTx(tx, l.productoID)
			if err != nil {
				if esNoEncontrado(err) {
					return apierror.NoEncontrado(fmt.Sprintf("producto %s no encontrado", l.productoID))
				}
				return err
			}
			if !p.Activo {
				return apierror.Validacion(fmt.Sprintf("el producto %s está inactivo y no puede venderse", p.Nombre))
			}
			if p.StockActual < l.cantidad {
				return apierror.StockInsuficiente(
					fmt.Sprintf("stock insuficiente de %s, quedan %d", p.Nombre, p.StockActual))
			}
			l.nombre = p.Nombre
			l.precio = p.PrecioVenta
			l.stockAntes = p.StockActual
			l.subtotal = p.PrecioVenta.Mul(decimal.NewFromInt(int64(l.cantidad)))
			total = total.Add(l.subtotal)
		}

		subtotal, impuesto := desglosarImpuesto(total)

		pagos, vuelto, err := normalizarPagos(req.Pagos, total)
		if err != nil {
			return err
		}
		pagosNorm, vueltoOper = pagos, vuelto

		// 3. Decrement stock. The rows are already locked, so an affected
		// count of zero means the conditional guard caught a quantity change
		// between check and write — treat it as insufficient stock.
		for _, l := range lineas {
			n, err := s.productoRepo.DescontarStockTx(tx, l.productoID, l.cantidad)
			if err != nil {
				return err
			}
			if n == 0 {
				return apierror.StockInsuficiente(
					fmt.Sprintf("stock insuficiente de %s, quedan %d", l.nombre, l.stockAntes))
			}
		}

		// 4. Re-validate the session under a shared lock. The pre-check ran
		// outside this transaction, so a close may have won the race since:
		// if the row is no longer open, abort before drawing a number. While
		// the lock is held, Cerrar (FOR UPDATE) blocks until we commit and
		// its aggregation sees this sale.
		sesionViva, err := s.cajaRepo.FindSesionAbiertaPorUsuarioSharedTx(tx, usuarioID)
		if err != nil {
			if esNoEncontrado(err) {
				return apierror.SinCajaAbierta()
			}
			return err
		}
		sesion = sesionViva

		// 5. Allocate the invoice number — last failable step.
		activa, err := s.caiRepo.FindActivaTx(tx)
		if err != nil {
			if esNoEncontrado(err) {
				return apierror.SinCAIActivo()
			}
			return err
		}
		if activa.Vencido(time.Now()) {
			return apierror.CAIVencido()
		}
		if activa.Agotado() {
			return apierror.CAIAgotado()
		}
		siguiente := activa.Correlativo + 1
		n, err := s.caiRepo.AvanzarCorrelativoTx(tx, activa.ID, activa.Correlativo, siguiente)
		if err != nil {
			return err
		}
		if n == 0 {
			// The guarded update found a different correlative than the one
			// read under lock — only possible if the locking discipline was
			// bypassed. Abort rather than issue a suspect number.
			return apierror.Conflicto("el correlativo del CAI cambió durante la venta")
		}
		activa.Correlativo = siguiente
		cai = *activa

		// 6. Persist the sale, its invoice and the drawer movements.
		venta = model.Venta{
			SesionCajaID: sesion.ID,
			UsuarioID:    usuarioID,
			Subtotal:     subtotal,
			Impuesto:     impuesto,
			Total:        total,
			Estado:       "completada",
		}
		for _, l := range lineas {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     l.productoID,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.precio,
				Subtotal:       l.subtotal,
			})
		}
		for _, p := range pagos {
			venta.Pagos = append(venta.Pagos, model.VentaPago{Metodo: p.Metodo, Monto: p.Monto})
		}
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		for _, l := range lineas {
			ventaRef := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    l.productoID,
				Tipo:          "venta",
				Cantidad:      -l.cantidad,
				StockAnterior: l.stockAntes,
				StockNuevo:    l.stockAntes - l.cantidad,
				Motivo:        fmt.Sprintf("Venta %s", venta.ID),
				ReferenciaID:  &ventaRef,
			}
			if err := s.productoRepo.CreateMovimientoTx(tx, mov); err != nil {
				return err
			}
		}

		factura = model.Factura{
			VentaID:          venta.ID,
			CAIID:            cai.ID,
			Numero:           numeroFactura(&cai, siguiente),
			Total:            total,
			ClienteNombre:    req.ClienteNombre,
			ClienteRTN:       req.ClienteRTN,
			ClienteDireccion: req.ClienteDireccion,
		}
		if err := s.facturaRepo.CreateTx(tx, &factura); err != nil {
			return err
		}

		for _, p := range pagos {
			metodo := p.Metodo
			ventaRef := venta.ID
			mov := &model.MovimientoCaja{
				SesionCajaID: sesion.ID,
				Tipo:         "venta",
				MetodoPago:   &metodo,
				Monto:        p.Monto,
				Descripcion:  fmt.Sprintf("Venta %s", factura.Numero),
				ReferenciaID: &ventaRef,
			}
			if err := s.cajaRepo.CreateMovimientoTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, traducirErrorDB(txErr)
	}

	if u, err := s.usuarioRepo.FindByID(ctx, usuarioID); err == nil {
		cajero = u.Nombre
	}

	// Post-commit, best effort: receipt PDF + audit notification. A failure
	// here never fails the sale.
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueRecibo(ctx, worker.ReciboJobPayload{FacturaID: factura.ID.String()}); err != nil {
			log.Warn().Err(err).Str("factura", factura.Numero).Msg("no se pudo encolar el recibo")
		}
		s.dispatcher.NotificarAuditoria(ctx, "venta_registrada", map[string]any{
			"venta_id": venta.ID.String(),
			"factura":  factura.Numero,
			"usuario":  usuarioID.String(),
			"total":    venta.Total.StringFixed(2),
		})
	}

	return s.armarRespuesta(&venta, &factura, &cai, lineas, pagosNorm, vueltoOper, cajero), nil
}

// ListVentas returns a paginated list of sales, filtered by date and session.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type lineaVenta struct {
	productoID uuid.UUID
	nombre     string
	cantidad   int
	stockAntes int
	precio     decimal.Decimal
	subtotal   decimal.Decimal
}

func parsearLineas(items []dto.ItemVentaRequest) ([]lineaVenta, error) {
	if len(items) == 0 {
		return nil, apierror.Validacion("la venta debe incluir al menos un producto")
	}
	lineas := make([]lineaVenta, 0, len(items))
	vistos := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apierror.Validacion(fmt.Sprintf("producto_id inválido: %s", item.ProductoID))
		}
		if item.Cantidad < 1 {
			return nil, apierror.Validacion("la cantidad debe ser mayor que cero")
		}
		if vistos[pid] {
			return nil, apierror.Validacion("producto repetido en la venta — combine las cantidades")
		}
		vistos[pid] = true
		lineas = append(lineas, lineaVenta{productoID: pid, cantidad: item.Cantidad})
	}
	return lineas, nil
}

// desglosarImpuesto backs the inclusive tax out of a tax-inclusive total.
func desglosarImpuesto(total decimal.Decimal) (subtotal, impuesto decimal.Decimal) {
	impuesto = total.Sub(total.Div(impuestoIncluidoDivisor)).Round(2)
	subtotal = total.Sub(impuesto)
	return subtotal, impuesto
}

// normalizarPagos validates the payment split against the sale total and
// folds the change back into the cash payment so that persisted payments sum
// exactly to the total — the session reconciliation depends on that.
// An empty split means the whole total is taken in cash.
func normalizarPagos(pagos []dto.PagoRequest, total decimal.Decimal) ([]dto.PagoRequest, decimal.Decimal, error) {
	if len(pagos) == 0 {
		return []dto.PagoRequest{{Metodo: "efectivo", Monto: total}}, decimal.Zero, nil
	}

	suma := decimal.Zero
	efectivo := decimal.Zero
	for _, p := range pagos {
		if p.Monto.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, apierror.Validacion("los montos de pago deben ser mayores que cero")
		}
		suma = suma.Add(p.Monto)
		if p.Metodo == "efectivo" {
			efectivo = efectivo.Add(p.Monto)
		}
	}
	if suma.LessThan(total) {
		return nil, decimal.Zero, apierror.Validacion("el monto total de pagos es insuficiente")
	}

	vuelto := suma.Sub(total)
	if vuelto.IsZero() {
		return pagos, decimal.Zero, nil
	}
	if efectivo.LessThan(vuelto) {
		return nil, decimal.Zero, apierror.Validacion("el vuelto no puede exceder el pago en efectivo")
	}

	normalizados := make([]dto.PagoRequest, 0, len(pagos))
	restante := vuelto
	for _, p := range pagos {
		if p.Metodo == "efectivo" && restante.IsPositive() {
			descuento := decimal.Min(p.Monto, restante)
			restante = restante.Sub(descuento)
			p.Monto = p.Monto.Sub(descuento)
			if p.Monto.IsZero() {
				continue
			}
		}
		normalizados = append(normalizados, p)
	}
	return normalizados, vuelto, nil
}

// numeroFactura formats establecimiento-punto_emision-tipo_documento-correlativo.
func numeroFactura(c *model.CAI, correlativo int64) string {
	return fmt.Sprintf("%s-%s-%s-%08d", c.Establecimiento, c.PuntoEmision, c.TipoDocumento, correlativo)
}

func (s *ventaService) armarRespuesta(v *model.Venta, f *model.Factura, c *model.CAI, lineas []lineaVenta, pagos []dto.PagoRequest, vuelto decimal.Decimal, cajero string) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(lineas))
	for _, l := range lineas {
		items = append(items, dto.ItemVentaResponse{
			Producto:       l.nombre,
			Cantidad:       l.cantidad,
			PrecioUnitario: l.precio,
			Subtotal:       l.subtotal,
		})
	}

	resp := &dto.VentaResponse{
		ID:            v.ID.String(),
		NumeroFactura: f.Numero,
		Items:         items,
		Subtotal:      v.Subtotal,
		Impuesto:      v.Impuesto,
		Total:         v.Total,
		Pagos:         pagos,
		Vuelto:        vuelto,
		Cajero:        cajero,
		CAI: dto.CAIInfoResponse{
			Codigo:      c.Codigo,
			FechaLimite: c.FechaLimite.Format("2006-01-02"),
			RangoFin:    numeroFactura(c, c.RangoFin),
			Restantes:   c.Restantes(),
		},
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
	}
	if c.Restantes() <= s.umbralAviso {
		aviso := fmt.Sprintf("Quedan %d números autorizados en el CAI %s — registre una nueva autorización", c.Restantes(), c.Codigo)
		resp.Aviso = &aviso
	}
	return resp
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	pagos := make([]dto.PagoRequest, 0, len(v.Pagos))
	for _, p := range v.Pagos {
		pagos = append(pagos, dto.PagoRequest{Metodo: p.Metodo, Monto: p.Monto})
	}
	cajero := ""
	if v.Usuario != nil {
		cajero = v.Usuario.Nombre
	}
	return &dto.VentaResponse{
		ID:        v.ID.String(),
		Items:     items,
		Subtotal:  v.Subtotal,
		Impuesto:  v.Impuesto,
		Total:     v.Total,
		Pagos:     pagos,
		Cajero:    cajero,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
	}
}
