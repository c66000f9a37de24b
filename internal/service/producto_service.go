package service

import (
	"context"
	"fmt"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error)
	List(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.PrecioVenta.IsNegative() || req.PrecioVenta.IsZero() {
		return nil, apierror.Validacion("precio_venta debe ser mayor que cero")
	}
	p := model.Producto{
		CodigoBarras: req.CodigoBarras,
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		PrecioVenta:  req.PrecioVenta,
		StockActual:  req.StockInicial,
		StockMinimo:  req.StockMinimo,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, traducirErrorDB(err)
	}
	return productoToResponse(&p), nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.NoEncontrado("producto no encontrado")
		}
		return nil, traducirErrorDB(err)
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.PrecioVenta != nil {
		if req.PrecioVenta.IsNegative() || req.PrecioVenta.IsZero() {
			return nil, apierror.Validacion("precio_venta debe ser mayor que cero")
		}
		p.PrecioVenta = *req.PrecioVenta
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, traducirErrorDB(err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.NoEncontrado("producto no encontrado")
		}
		return nil, traducirErrorDB(err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.NoEncontrado("producto no encontrado")
		}
		return nil, traducirErrorDB(err)
	}
	return productoToResponse(p), nil
}

func (s *productoService) List(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// AjustarStock applies a supervised manual delta and records the movement in
// the same transaction. The row lock plus the guarded update keep the
// adjustment from racing a concurrent sale into negative stock.
func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	if req.Delta == 0 {
		return nil, apierror.Validacion("delta no puede ser cero")
	}

	var actualizado model.Producto

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if esNoEncontrado(err) {
				return apierror.NoEncontrado("producto no encontrado")
			}
			return err
		}
		if !p.Activo {
			return apierror.Validacion("no se puede ajustar stock de un producto inactivo")
		}
		if req.Delta < 0 && p.StockActual < -req.Delta {
			return apierror.StockInsuficiente(
				fmt.Sprintf("stock insuficiente de %s, quedan %d", p.Nombre, p.StockActual))
		}

		n, err := s.repo.AjustarStockTx(tx, id, req.Delta)
		if err != nil {
			return err
		}
		if n == 0 {
			return apierror.StockInsuficiente(
				fmt.Sprintf("stock insuficiente de %s, quedan %d", p.Nombre, p.StockActual))
		}

		mov := &model.MovimientoStock{
			ProductoID:    id,
			Tipo:          "ajuste_manual",
			Cantidad:      req.Delta,
			StockAnterior: p.StockActual,
			StockNuevo:    p.StockActual + req.Delta,
			Motivo:        req.Motivo,
		}
		if err := s.repo.CreateMovimientoTx(tx, mov); err != nil {
			return err
		}

		actualizado = *p
		actualizado.StockActual = p.StockActual + req.Delta
		return nil
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	return productoToResponse(&actualizado), nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		CodigoBarras: p.CodigoBarras,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioVenta:  p.PrecioVenta,
		StockActual:  p.StockActual,
		StockMinimo:  p.StockMinimo,
		Activo:       p.Activo,
	}
}
