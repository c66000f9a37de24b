package repository

import (
	"context"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository is the stock ledger. Services depend on this interface,
// not on the concrete GORM implementation, enabling unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)

	// FindByIDForUpdateTx reads a product under a row-level exclusive lock.
	// The lock is held until the enclosing transaction commits or aborts, so
	// concurrent sales of the same product serialize here.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)

	// DescontarStockTx is a conditional decrement: it only succeeds when the
	// product still has at least `cantidad` units. Returns the number of rows
	// affected — 0 means the decrement would have oversold.
	DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) (int64, error)

	Update(ctx context.Context, p *model.Producto) error

	// AjustarStockTx applies a manual delta outside a sale (supervised
	// adjustment); negative deltas carry the same stock guard as a sale.
	AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error)

	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo_barras = ? AND activo = true", barcode).First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}
	if filter.Barcode != "" {
		q = q.Where("codigo_barras = ?", filter.Barcode)
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) DescontarStockTx(tx *gorm.DB, id uuid.UUID, cantidad int) (int64, error) {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND stock_actual >= ?", id, cantidad).
		Update("stock_actual", gorm.Expr("stock_actual - ?", cantidad))
	return res.RowsAffected, res.Error
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) AjustarStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	q := tx.Model(&model.Producto{})
	if delta < 0 {
		q = q.Where("id = ? AND activo = true AND stock_actual >= ?", id, -delta)
	} else {
		q = q.Where("id = ? AND activo = true", id)
	}
	res := q.Update("stock_actual", gorm.Expr("stock_actual + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *productoRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}
