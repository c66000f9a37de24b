package dto

import "github.com/shopspring/decimal"

// FacturaResponse is the invoice record returned by GET /v1/facturas/:venta_id.
type FacturaResponse struct {
	ID               string          `json:"id"`
	Numero           string          `json:"numero"`
	VentaID          string          `json:"venta_id"`
	CAICodigo        string          `json:"cai_codigo"`
	FechaLimiteCAI   string          `json:"cai_fecha_limite"`
	Total            decimal.Decimal `json:"total"`
	ClienteNombre    *string         `json:"cliente_nombre,omitempty"`
	ClienteRTN       *string         `json:"cliente_rtn,omitempty"`
	ClienteDireccion *string         `json:"cliente_direccion,omitempty"`
	PDFUrl           *string         `json:"pdf_url,omitempty"`
	CreatedAt        string          `json:"created_at"`
}
