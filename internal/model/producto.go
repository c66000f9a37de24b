package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the stock ledger entry for a sellable item.
// StockActual never goes below zero: sales decrement it with a conditional
// UPDATE and the schema carries a CHECK (stock_actual >= 0) as backstop.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual  int             `gorm:"not null;default:0"`
	StockMinimo  int             `gorm:"not null;default:5"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Producto) TableName() string { return "productos" }
