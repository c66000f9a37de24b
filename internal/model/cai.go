package model

import (
	"time"

	"github.com/google/uuid"
)

// CAI is a government-issued invoice authorization block: a numeric range
// plus an expiration window inside which invoice numbers must be issued
// sequentially.
//
// Invariants (enforced by CAIRepository and a partial unique index):
//   - at most one row has Activo = true
//   - Correlativo is monotonically non-decreasing and never exceeds RangoFin
//
// Correlativo holds the LAST issued number; the next invoice takes
// Correlativo+1. A fresh block starts with Correlativo = RangoInicio-1.
type CAI struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo string    `gorm:"uniqueIndex;not null"` // authorization code printed on every invoice

	// Invoice number prefix components: establecimiento-punto_emision-tipo_documento
	Establecimiento string `gorm:"type:varchar(3);not null;default:'001'"`
	PuntoEmision    string `gorm:"type:varchar(3);not null;default:'001'"`
	TipoDocumento   string `gorm:"type:varchar(2);not null;default:'01'"`

	RangoInicio int64 `gorm:"not null"`
	RangoFin    int64 `gorm:"not null"`
	Correlativo int64 `gorm:"not null"`

	FechaEmision time.Time `gorm:"not null"`
	FechaLimite  time.Time `gorm:"not null"`
	Activo       bool      `gorm:"not null;default:false;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (CAI) TableName() string { return "cais" }

// Restantes returns how many numbers remain in the authorized range.
func (c *CAI) Restantes() int64 { return c.RangoFin - c.Correlativo }

// Agotado reports whether the block has no numbers left to issue.
func (c *CAI) Agotado() bool { return c.Correlativo >= c.RangoFin }

// Vencido reports whether the block expired at the given instant.
func (c *CAI) Vencido(ahora time.Time) bool { return ahora.After(c.FechaLimite) }
