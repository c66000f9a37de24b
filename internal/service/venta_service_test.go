package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ventaFixture wires a VentaService over stubs with one cashier, one open
// session, one product and one active CAI.
type ventaFixture struct {
	svc          service.VentaService
	productoRepo *stubProductoRepo
	caiRepo      *stubCAIRepo
	ventaRepo    *stubVentaRepo
	cajaRepo     *stubCajaRepo
	facturaRepo  *stubFacturaRepo

	cajero   *model.Usuario
	sesion   *model.SesionCaja
	producto *model.Producto
	cai      *model.CAI
}

func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()

	f := &ventaFixture{
		productoRepo: newStubProductoRepo(),
		caiRepo:      newStubCAIRepo(),
		ventaRepo:    newStubVentaRepo(),
		cajaRepo:     newStubCajaRepo(),
		facturaRepo:  newStubFacturaRepo(),
	}
	usuarioRepo := newStubUsuarioRepo()

	f.cajero = usuarioRepo.agregar(&model.Usuario{
		Username: "cajera1", Nombre: "Ana Cajera", Rol: "cajero", Activo: true,
	})
	f.sesion = &model.SesionCaja{
		UsuarioID:    f.cajero.ID,
		MontoInicial: decimal.NewFromInt(500),
		Estado:       "abierta",
		OpenedAt:     time.Now(),
	}
	require.NoError(t, f.cajaRepo.CreateSesionTx(nil, f.sesion))

	f.producto = f.productoRepo.agregar(&model.Producto{
		CodigoBarras: "7421000100010",
		Nombre:       "Café molido 500g",
		PrecioVenta:  decimal.NewFromInt(25),
		StockActual:  10,
		Activo:       true,
	})
	f.cai = f.caiRepo.agregar(&model.CAI{
		Codigo:          "254F8-612021-9A0E1-059BE-ABC123456789",
		Establecimiento: "001",
		PuntoEmision:    "001",
		TipoDocumento:   "01",
		RangoInicio:     1,
		RangoFin:        100,
		Correlativo:     0,
		FechaEmision:    time.Now().AddDate(0, -1, 0),
		FechaLimite:     time.Now().AddDate(0, 6, 0),
		Activo:          true,
	})

	f.svc = service.NewVentaService(
		f.ventaRepo, f.productoRepo, f.caiRepo, f.cajaRepo, f.facturaRepo,
		usuarioRepo, nil, 20,
	)
	return f
}

func (f *ventaFixture) registrar(items []dto.ItemVentaRequest, pagos []dto.PagoRequest) (*dto.VentaResponse, error) {
	return f.svc.RegistrarVenta(context.Background(), f.cajero.ID, dto.RegistrarVentaRequest{
		Items: items,
		Pagos: pagos,
	})
}

func codigoDe(t *testing.T, err error) string {
	t.Helper()
	var apiErr *apierror.Error
	require.True(t, errors.As(err, &apiErr), "expected *apierror.Error, got %v", err)
	return apiErr.Code
}

func TestRegistrarVentaExitosa(t *testing.T) {
	f := newVentaFixture(t)

	resp, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 2},
	}, nil)
	require.NoError(t, err)

	// Totals: 2 × 25.00 tax-inclusive; impuesto = 50 − 50/1.15
	assert.Equal(t, "50", resp.Total.String())
	assert.Equal(t, "6.52", resp.Impuesto.StringFixed(2))
	assert.Equal(t, "43.48", resp.Subtotal.StringFixed(2))

	// Invoice number comes from the CAI prefix and the advanced correlative
	assert.Equal(t, "001-001-01-00000001", resp.NumeroFactura)
	assert.Equal(t, int64(1), f.cai.Correlativo)
	assert.Equal(t, int64(99), resp.CAI.Restantes)
	assert.Equal(t, f.cai.Codigo, resp.CAI.Codigo)

	// Stock decremented and the movement recorded with before/after
	assert.Equal(t, 8, f.producto.StockActual)
	require.Len(t, f.productoRepo.movimientos, 1)
	mov := f.productoRepo.movimientos[0]
	assert.Equal(t, "venta", mov.Tipo)
	assert.Equal(t, -2, mov.Cantidad)
	assert.Equal(t, 10, mov.StockAnterior)
	assert.Equal(t, 8, mov.StockNuevo)

	// Whole total taken in cash by default, no change
	require.Len(t, resp.Pagos, 1)
	assert.Equal(t, "efectivo", resp.Pagos[0].Metodo)
	assert.True(t, resp.Vuelto.IsZero())

	// One drawer movement per payment, tied to the session
	require.Len(t, f.cajaRepo.movimientos, 1)
	assert.Equal(t, f.sesion.ID, f.cajaRepo.movimientos[0].SesionCajaID)
	assert.Equal(t, "50", f.cajaRepo.movimientos[0].Monto.String())

	assert.Equal(t, "Ana Cajera", resp.Cajero)
	assert.Nil(t, resp.Aviso)
}

func TestRegistrarVentaNumerosSecuenciales(t *testing.T) {
	f := newVentaFixture(t)
	items := []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 1}}

	primera, err := f.registrar(items, nil)
	require.NoError(t, err)
	segunda, err := f.registrar(items, nil)
	require.NoError(t, err)

	assert.Equal(t, "001-001-01-00000001", primera.NumeroFactura)
	assert.Equal(t, "001-001-01-00000002", segunda.NumeroFactura)
	assert.NotEqual(t, primera.ID, segunda.ID)
}

func TestRegistrarVentaSinSesionAbierta(t *testing.T) {
	f := newVentaFixture(t)
	f.sesion.Estado = "cerrada"

	_, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	assert.Equal(t, apierror.CodeSinCajaAbierta, codigoDe(t, err))
}

func TestRegistrarVentaStockInsuficiente(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 11},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.CodeStockInsuficiente, codigoDe(t, err))
	assert.Contains(t, err.Error(), "quedan 10")

	// Nothing moved: the check fails before any write
	assert.Equal(t, 10, f.producto.StockActual)
	assert.Equal(t, int64(0), f.cai.Correlativo)
	assert.Empty(t, f.ventaRepo.ventas)
}

func TestRegistrarVentaProductoInactivo(t *testing.T) {
	f := newVentaFixture(t)
	f.producto.Activo = false

	_, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	assert.Equal(t, apierror.CodeValidacion, codigoDe(t, err))
}

func TestRegistrarVentaProductoInexistente(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: uuid.NewString(), Cantidad: 1},
	}, nil)
	assert.Equal(t, apierror.CodeNoEncontrado, codigoDe(t, err))
}

func TestRegistrarVentaProductoRepetido(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
		{ProductoID: f.producto.ID.String(), Cantidad: 2},
	}, nil)
	assert.Equal(t, apierror.CodeValidacion, codigoDe(t, err))
}

func TestRegistrarVentaSinCAIActivo(t *testing.T) {
	f := newVentaFixture(t)
	f.cai.Activo = false

	_, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	assert.Equal(t, apierror.CodeSinCAIActivo, codigoDe(t, err))
	assert.Empty(t, f.ventaRepo.ventas)
}

func TestRegistrarVentaCAIVencido(t *testing.T) {
	f := newVentaFixture(t)
	f.cai.FechaLimite = time.Now().AddDate(0, 0, -1)

	_, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	assert.Equal(t, apierror.CodeCAIVencido, codigoDe(t, err))
}

func TestRegistrarVentaCAIAgotado(t *testing.T) {
	f := newVentaFixture(t)
	f.cai.Correlativo = f.cai.RangoFin

	_, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	assert.Equal(t, apierror.CodeCAIAgotado, codigoDe(t, err))
	assert.Equal(t, f.cai.RangoFin, f.cai.Correlativo)
}

func TestRegistrarVentaUltimoNumeroDelRango(t *testing.T) {
	f := newVentaFixture(t)
	f.cai.Correlativo = f.cai.RangoFin - 1

	resp, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "001-001-01-00000100", resp.NumeroFactura)
	assert.Equal(t, int64(0), resp.CAI.Restantes)
	require.NotNil(t, resp.Aviso)

	// The block is exhausted now: the next sale must be rejected
	_, err = f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	assert.Equal(t, apierror.CodeCAIAgotado, codigoDe(t, err))
}

func TestRegistrarVentaAvisoUmbral(t *testing.T) {
	f := newVentaFixture(t)
	f.cai.Correlativo = f.cai.RangoFin - 15 // 14 restantes tras la venta

	resp, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Aviso)
	assert.Contains(t, *resp.Aviso, "14")
}

func TestRegistrarVentaPagosInsuficientes(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.registrar(
		[]dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 2}},
		[]dto.PagoRequest{{Metodo: "efectivo", Monto: decimal.NewFromInt(30)}},
	)
	assert.Equal(t, apierror.CodeValidacion, codigoDe(t, err))
}

func TestRegistrarVentaVueltoDeEfectivo(t *testing.T) {
	f := newVentaFixture(t)

	resp, err := f.registrar(
		[]dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 2}},
		[]dto.PagoRequest{{Metodo: "efectivo", Monto: decimal.NewFromInt(100)}},
	)
	require.NoError(t, err)
	assert.Equal(t, "50", resp.Vuelto.String())

	// The persisted payment is net of change so the session reconciliation
	// sums to the sale total
	var venta *model.Venta
	for _, v := range f.ventaRepo.ventas {
		venta = v
	}
	require.NotNil(t, venta)
	require.Len(t, venta.Pagos, 1)
	assert.Equal(t, "50", venta.Pagos[0].Monto.String())
}

func TestRegistrarVentaVueltoNoSaleDeTarjeta(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.registrar(
		[]dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 2}},
		[]dto.PagoRequest{{Metodo: "tarjeta", Monto: decimal.NewFromInt(60)}},
	)
	assert.Equal(t, apierror.CodeValidacion, codigoDe(t, err))
}

func TestRegistrarVentaPagoMixto(t *testing.T) {
	f := newVentaFixture(t)

	resp, err := f.registrar(
		[]dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 2}},
		[]dto.PagoRequest{
			{Metodo: "tarjeta", Monto: decimal.NewFromInt(30)},
			{Metodo: "efectivo", Monto: decimal.NewFromInt(20)},
		},
	)
	require.NoError(t, err)
	assert.True(t, resp.Vuelto.IsZero())
	require.Len(t, f.cajaRepo.movimientos, 2)
}

func TestRegistrarVentaPrecioCapturado(t *testing.T) {
	f := newVentaFixture(t)

	resp, err := f.registrar([]dto.ItemVentaRequest{
		{ProductoID: f.producto.ID.String(), Cantidad: 1},
	}, nil)
	require.NoError(t, err)

	// A later price change must not touch the recorded sale line
	f.producto.PrecioVenta = decimal.NewFromInt(99)

	var venta *model.Venta
	for _, v := range f.ventaRepo.ventas {
		venta = v
	}
	require.NotNil(t, venta)
	require.Len(t, venta.Items, 1)
	assert.Equal(t, "25", venta.Items[0].PrecioUnitario.String())
	assert.Equal(t, "25", resp.Total.String())
}

// productoRepoCierraSesion closes the operator's drawer right after the stock
// decrement, emulating a close that wins the race against an in-flight sale.
type productoRepoCierraSesion struct {
	*stubProductoRepo
	sesion *model.SesionCaja
}

func (r *productoRepoCierraSesion) DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) (int64, error) {
	n, err := r.stubProductoRepo.DescontarStockTx(tx, id, cantidad)
	r.sesion.Estado = "cerrada"
	return n, err
}

func TestRegistrarVentaSesionCerradaDuranteLaVenta(t *testing.T) {
	f := newVentaFixture(t)
	svc := service.NewVentaService(
		f.ventaRepo,
		&productoRepoCierraSesion{stubProductoRepo: f.productoRepo, sesion: f.sesion},
		f.caiRepo, f.cajaRepo, f.facturaRepo, newStubUsuarioRepo(), nil, 20,
	)

	_, err := svc.RegistrarVenta(context.Background(), f.cajero.ID, dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 2}},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.CodeSinCajaAbierta, codigoDe(t, err))

	// The in-transaction re-check fired before any record was written: no
	// number drawn, no venta, no factura, no movimiento against the closed
	// session.
	assert.Equal(t, int64(0), f.cai.Correlativo)
	assert.Empty(t, f.ventaRepo.ventas)
	assert.Empty(t, f.facturaRepo.facturas)
	assert.Empty(t, f.cajaRepo.movimientos)
}

// ventaRepoCreateFalla fails the sale insert, as a dropped connection
// mid-transaction would.
type ventaRepoCreateFalla struct {
	*stubVentaRepo
}

func (r *ventaRepoCreateFalla) Create(context.Context, *gorm.DB, *model.Venta) error {
	return errors.New("driver: bad connection")
}

func TestRegistrarVentaFalloDePersistencia(t *testing.T) {
	f := newVentaFixture(t)
	svc := service.NewVentaService(
		&ventaRepoCreateFalla{stubVentaRepo: f.ventaRepo},
		f.productoRepo, f.caiRepo, f.cajaRepo, f.facturaRepo,
		newStubUsuarioRepo(), nil, 20,
	)

	_, err := svc.RegistrarVenta(context.Background(), f.cajero.ID, dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 2}},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.CodePersistencia, codigoDe(t, err))

	// The error aborts the transaction, so the decrement and the drawn
	// correlative roll back with it. Nothing past the failed insert ran.
	assert.Empty(t, f.ventaRepo.ventas)
	assert.Empty(t, f.facturaRepo.facturas)
	assert.Empty(t, f.productoRepo.movimientos)
	assert.Empty(t, f.cajaRepo.movimientos)
}
