package repository

import (
	"context"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CAIRepository manages fiscal authorization blocks.
//
// The "at most one active block" invariant is enforced twice: by
// DesactivarTodasTx running inside the same transaction as the activation,
// and by a partial unique index on (activo) WHERE activo = true.
type CAIRepository interface {
	Create(ctx context.Context, c *model.CAI) error
	CreateTx(tx *gorm.DB, c *model.CAI) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CAI, error)
	FindActiva(ctx context.Context) (*model.CAI, error)
	List(ctx context.Context) ([]model.CAI, error)

	// FindActivaTx reads the active block under a row-level exclusive lock.
	// Every concurrent sale serializes on this lock for the duration of the
	// read-increment-write, held until the sale transaction resolves.
	FindActivaTx(tx *gorm.DB) (*model.CAI, error)

	// AvanzarCorrelativoTx advances the correlative to `nuevo`. The guard on
	// the current value makes the write conditional so a lost update can
	// never slip through even if the caller forgot the row lock.
	AvanzarCorrelativoTx(tx *gorm.DB, id uuid.UUID, actual, nuevo int64) (int64, error)

	DesactivarTodasTx(tx *gorm.DB) error
	SetActivoTx(tx *gorm.DB, id uuid.UUID, activo bool) error

	DB() *gorm.DB
}

type caiRepo struct{ db *gorm.DB }

func NewCAIRepository(db *gorm.DB) CAIRepository { return &caiRepo{db: db} }

func (r *caiRepo) DB() *gorm.DB { return r.db }

func (r *caiRepo) Create(ctx context.Context, c *model.CAI) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *caiRepo) CreateTx(tx *gorm.DB, c *model.CAI) error {
	return tx.Create(c).Error
}

func (r *caiRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CAI, error) {
	var c model.CAI
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *caiRepo) FindActiva(ctx context.Context) (*model.CAI, error) {
	var c model.CAI
	err := r.db.WithContext(ctx).Where("activo = true").First(&c).Error
	return &c, err
}

func (r *caiRepo) List(ctx context.Context) ([]model.CAI, error) {
	var cais []model.CAI
	err := r.db.WithContext(ctx).Order("fecha_emision DESC").Find(&cais).Error
	return cais, err
}

func (r *caiRepo) FindActivaTx(tx *gorm.DB) (*model.CAI, error) {
	var c model.CAI
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("activo = true").First(&c).Error
	return &c, err
}

func (r *caiRepo) AvanzarCorrelativoTx(tx *gorm.DB, id uuid.UUID, actual, nuevo int64) (int64, error) {
	res := tx.Model(&model.CAI{}).
		Where("id = ? AND correlativo = ?", id, actual).
		Update("correlativo", nuevo)
	return res.RowsAffected, res.Error
}

func (r *caiRepo) DesactivarTodasTx(tx *gorm.DB) error {
	return tx.Model(&model.CAI{}).Where("activo = true").Update("activo", false).Error
}

func (r *caiRepo) SetActivoTx(tx *gorm.DB, id uuid.UUID, activo bool) error {
	return tx.Model(&model.CAI{}).Where("id = ?", id).Update("activo", activo).Error
}
