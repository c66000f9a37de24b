package repository

import (
	"context"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FacturaRepository interface {
	CreateTx(tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	FindByVentaID(ctx context.Context, ventaID uuid.UUID) (*model.Factura, error)
	// UpdatePDFPath is the only mutation allowed on an issued invoice: the
	// fiscal fields never change, only the receipt file reference.
	UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) CreateTx(tx *gorm.DB, f *model.Factura) error {
	return tx.Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("CAI").First(&f, id).Error
	return &f, err
}

func (r *facturaRepo) FindByVentaID(ctx context.Context, ventaID uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("CAI").Where("venta_id = ?", ventaID).First(&f).Error
	return &f, err
}

func (r *facturaRepo) UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Factura{}).
		Where("id = ?", id).Update("pdf_path", path).Error
}
