package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SesionCaja represents the lifecycle of a cashier's drawer session.
// Estado: "abierta" | "cerrada" — cerrada is terminal.
// A partial unique index on (usuario_id) WHERE estado = 'abierta' guarantees
// at most one open session per operator even under concurrent opens.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'abierta'"`

	// Reconciliation figures — stamped once at close, nil while open.
	TotalVentas      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalEfectivo    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalTarjeta     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EfectivoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EfectivoContado  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Diferencia = contado - esperado; negative means a shortfall.
	Diferencia    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observaciones *string

	OpenedAt time.Time
	ClosedAt *time.Time

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// MovimientoCaja is an immutable event in the cash drawer ledger.
// Tipo: "venta" | "ingreso_manual" | "egreso_manual"
// Movements are NEVER modified or deleted.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	MetodoPago   *string         `gorm:"type:varchar(20)"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string          `gorm:"not null"`
	// ReferenciaID links to the originating Venta when Tipo = "venta"
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
