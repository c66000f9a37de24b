package repository

import (
	"context"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	CreateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	FindSesionAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error)

	// FindSesionAbiertaPorUsuarioTx locks the operator's open session row so
	// close cannot race another close (or a concurrent open check).
	FindSesionAbiertaPorUsuarioTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error)

	// FindSesionAbiertaPorUsuarioSharedTx takes a shared lock on the open
	// session row. Concurrent sales hold it without blocking one another,
	// while a close (FOR UPDATE) waits until every holder commits.
	FindSesionAbiertaPorUsuarioSharedTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error)

	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error)
	Historial(ctx context.Context, filter dto.HistorialCajaFilter) ([]model.SesionCaja, int64, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Create(s).Error
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Usuario").First(&s, id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND estado = 'abierta'", usuarioID).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaPorUsuarioTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("usuario_id = ? AND estado = 'abierta'", usuarioID).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaPorUsuarioSharedTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Where("usuario_id = ? AND estado = 'abierta'", usuarioID).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Save(s).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionCajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionCajaID).
		Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) Historial(ctx context.Context, filter dto.HistorialCajaFilter) ([]model.SesionCaja, int64, error) {
	var sesiones []model.SesionCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SesionCaja{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.UsuarioID != "" {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}
	if filter.Desde != "" {
		q = q.Where("DATE(opened_at) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(opened_at) <= ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Usuario").
		Order("opened_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sesiones).Error
	return sesiones, total, err
}
