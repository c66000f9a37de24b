package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a completed sale. Created exactly once per successful sale
// transaction and never mutated afterwards — corrections happen via new
// compensating sales.
//
// Total is tax-inclusive; Impuesto is backed out of it (see venta_service).
type Venta struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Impuesto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt    time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Pagos   []VentaPago `gorm:"foreignKey:VentaID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
}

func (Venta) TableName() string { return "ventas" }

// VentaItem is one sale line. PrecioUnitario is captured at sale time and
// never re-read from the product afterwards.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaItem) TableName() string { return "venta_items" }

// VentaPago records how a sale was paid.
// Metodo: "efectivo" | "tarjeta"
type VentaPago struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Metodo  string          `gorm:"type:varchar(20);not null"`
	Monto   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (VentaPago) TableName() string { return "venta_pagos" }
