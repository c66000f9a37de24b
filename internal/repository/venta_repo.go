package repository

import (
	"context"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResumenSesion aggregates the sales recorded during one cash session.
type ResumenSesion struct {
	TotalVentas   decimal.Decimal
	TotalEfectivo decimal.Decimal
	TotalTarjeta  decimal.Decimal
}

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)

	// SumPorSesionTx aggregates all sales scoped to a session. It runs inside
	// the closing transaction so it reads a consistent snapshot: no sale can
	// join the session afterwards because sales require an open session.
	SumPorSesionTx(tx *gorm.DB, sesionID uuid.UUID) (*ResumenSesion, error)

	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").Preload("Pagos").Preload("Usuario").
		First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.SesionCajaID != "" {
		q = q.Where("sesion_caja_id = ?", filter.SesionCajaID)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Producto").Preload("Pagos").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) SumPorSesionTx(tx *gorm.DB, sesionID uuid.UUID) (*ResumenSesion, error) {
	var filas []struct {
		Metodo string
		Suma   decimal.Decimal
	}
	err := tx.Model(&model.VentaPago{}).
		Select("venta_pagos.metodo AS metodo, COALESCE(SUM(venta_pagos.monto), 0) AS suma").
		Joins("JOIN ventas ON ventas.id = venta_pagos.venta_id").
		Where("ventas.sesion_caja_id = ? AND ventas.estado = 'completada'", sesionID).
		Group("venta_pagos.metodo").
		Scan(&filas).Error
	if err != nil {
		return nil, err
	}

	resumen := &ResumenSesion{
		TotalVentas:   decimal.Zero,
		TotalEfectivo: decimal.Zero,
		TotalTarjeta:  decimal.Zero,
	}
	for _, f := range filas {
		resumen.TotalVentas = resumen.TotalVentas.Add(f.Suma)
		switch f.Metodo {
		case "efectivo":
			resumen.TotalEfectivo = resumen.TotalEfectivo.Add(f.Suma)
		case "tarjeta":
			resumen.TotalTarjeta = resumen.TotalTarjeta.Add(f.Suma)
		}
	}
	return resumen, nil
}
