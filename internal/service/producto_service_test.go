package service_test

import (
	"context"
	"testing"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearProducto(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo)

	resp, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		CodigoBarras: "7421000100027",
		Nombre:       "Azúcar 1kg",
		PrecioVenta:  decimal.NewFromFloat(18.50),
		StockInicial: 40,
		StockMinimo:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Azúcar 1kg", resp.Nombre)
	assert.Equal(t, 40, resp.StockActual)
	assert.True(t, resp.Activo)
}

func TestCrearProductoPrecioInvalido(t *testing.T) {
	svc := service.NewProductoService(newStubProductoRepo())

	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		CodigoBarras: "7421000100027",
		Nombre:       "Azúcar 1kg",
		PrecioVenta:  decimal.Zero,
	})
	assert.Equal(t, apierror.CodeValidacion, codigoDe(t, err))
}

func TestActualizarProductoParcial(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo)

	p := repo.agregar(&model.Producto{
		CodigoBarras: "7421000100034",
		Nombre:       "Harina 1kg",
		PrecioVenta:  decimal.NewFromInt(15),
		StockActual:  20,
		Activo:       true,
	})

	precio := decimal.NewFromFloat(16.75)
	resp, err := svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{
		PrecioVenta: &precio,
	})
	require.NoError(t, err)

	// Only the supplied field changes
	assert.Equal(t, "16.75", resp.PrecioVenta.String())
	assert.Equal(t, "Harina 1kg", resp.Nombre)
	assert.Equal(t, 20, resp.StockActual)
}

func TestActualizarProductoDesactivar(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo)

	p := repo.agregar(&model.Producto{
		CodigoBarras: "7421000100041", Nombre: "Aceite 1L",
		PrecioVenta: decimal.NewFromInt(60), Activo: true,
	})

	inactivo := false
	resp, err := svc.Actualizar(context.Background(), p.ID, dto.ActualizarProductoRequest{Activo: &inactivo})
	require.NoError(t, err)
	assert.False(t, resp.Activo)
}

func TestObtenerProductoInexistente(t *testing.T) {
	svc := service.NewProductoService(newStubProductoRepo())

	_, err := svc.Obtener(context.Background(), uuid.New())
	assert.Equal(t, apierror.CodeNoEncontrado, codigoDe(t, err))
}

func TestObtenerPorBarcode(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo)

	repo.agregar(&model.Producto{
		CodigoBarras: "7421000100058", Nombre: "Sal 500g",
		PrecioVenta: decimal.NewFromInt(8), Activo: true,
	})

	resp, err := svc.ObtenerPorBarcode(context.Background(), "7421000100058")
	require.NoError(t, err)
	assert.Equal(t, "Sal 500g", resp.Nombre)

	_, err = svc.ObtenerPorBarcode(context.Background(), "0000000000000")
	assert.Equal(t, apierror.CodeNoEncontrado, codigoDe(t, err))
}

func TestAjustarStockEntrada(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo)

	p := repo.agregar(&model.Producto{
		CodigoBarras: "7421000100065", Nombre: "Frijoles 1kg",
		PrecioVenta: decimal.NewFromInt(30), StockActual: 5, Activo: true,
	})

	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		Delta: 24, Motivo: "compra a proveedor",
	})
	require.NoError(t, err)
	assert.Equal(t, 29, resp.StockActual)
	assert.Equal(t, 29, p.StockActual)

	require.Len(t, repo.movimientos, 1)
	mov := repo.movimientos[0]
	assert.Equal(t, "ajuste_manual", mov.Tipo)
	assert.Equal(t, 24, mov.Cantidad)
	assert.Equal(t, 5, mov.StockAnterior)
	assert.Equal(t, 29, mov.StockNuevo)
	assert.Equal(t, "compra a proveedor", mov.Motivo)
}

func TestAjustarStockSalidaInsuficiente(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo)

	p := repo.agregar(&model.Producto{
		CodigoBarras: "7421000100072", Nombre: "Arroz 1kg",
		PrecioVenta: decimal.NewFromInt(22), StockActual: 3, Activo: true,
	})

	_, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		Delta: -5, Motivo: "merma por daño",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.CodeStockInsuficiente, codigoDe(t, err))
	assert.Equal(t, 3, p.StockActual)
	assert.Empty(t, repo.movimientos)
}

func TestAjustarStockDeltaCero(t *testing.T) {
	svc := service.NewProductoService(newStubProductoRepo())

	_, err := svc.AjustarStock(context.Background(), uuid.New(), dto.AjustarStockRequest{Delta: 0, Motivo: "nada"})
	assert.Equal(t, apierror.CodeValidacion, codigoDe(t, err))
}

func TestAjustarStockProductoInactivo(t *testing.T) {
	repo := newStubProductoRepo()
	svc := service.NewProductoService(repo)

	p := repo.agregar(&model.Producto{
		CodigoBarras: "7421000100089", Nombre: "Descontinuado",
		PrecioVenta: decimal.NewFromInt(10), StockActual: 7, Activo: false,
	})

	_, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{Delta: 1, Motivo: "reposición"})
	assert.Equal(t, apierror.CodeValidacion, codigoDe(t, err))
}
