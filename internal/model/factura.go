package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Factura is the immutable fiscal invoice issued for a Venta.
// Exactly one Factura exists per Venta; Numero is unique over all invoices
// and its correlative component lies inside the CAI's authorized range.
type Factura struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CAIID   uuid.UUID `gorm:"type:uuid;index;not null;column:cai_id"`
	// Numero has the form establecimiento-punto_emision-tipo_documento-corre-
	// lativo, e.g. "001-001-01-00000042".
	Numero          string          `gorm:"uniqueIndex;not null"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ClienteNombre    *string
	ClienteRTN       *string `gorm:"column:cliente_rtn"`
	ClienteDireccion *string
	// PDFPath is relative to PDF_STORAGE_PATH; set by the recibo worker.
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time

	Venta *Venta `gorm:"foreignKey:VentaID"`
	CAI   *CAI   `gorm:"foreignKey:CAIID"`
}

func (Factura) TableName() string { return "facturas" }
