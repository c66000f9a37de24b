package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type PagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=efectivo tarjeta"`
	Monto  decimal.Decimal `json:"monto"  validate:"required"`
}

// RegistrarVentaRequest is the body of POST /v1/ventas. The operator and the
// open cash session are derived from the authenticated identity, never
// supplied by the client.
type RegistrarVentaRequest struct {
	Items []ItemVentaRequest `json:"items" validate:"required,min=1,dive"`
	// Pagos: optional split. When omitted, the whole total is taken in cash.
	Pagos []PagoRequest `json:"pagos" validate:"omitempty,min=1,dive"`
	// Optional customer data printed on the invoice
	ClienteNombre    *string `json:"cliente_nombre"`
	ClienteRTN       *string `json:"cliente_rtn"`
	ClienteDireccion *string `json:"cliente_direccion"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha        string `form:"fecha"`          // YYYY-MM-DD; empty = today
	SesionCajaID string `form:"sesion_caja_id"` // optional session scope
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// CAIInfoResponse carries the authorization metadata printed on the receipt.
type CAIInfoResponse struct {
	Codigo      string `json:"codigo"`
	FechaLimite string `json:"fecha_limite"`
	RangoFin    string `json:"rango_autorizado_hasta"`
	Restantes   int64  `json:"numeros_restantes"`
}

type VentaResponse struct {
	ID            string              `json:"id"`
	NumeroFactura string              `json:"numero_factura"`
	Items         []ItemVentaResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Impuesto      decimal.Decimal     `json:"impuesto"`
	Total         decimal.Decimal     `json:"total"`
	Pagos         []PagoRequest       `json:"pagos"`
	Vuelto        decimal.Decimal     `json:"vuelto"`
	Cajero        string              `json:"cajero"`
	CAI           CAIInfoResponse     `json:"cai"`
	// Aviso is present when the active CAI is close to exhaustion.
	Aviso     *string `json:"aviso,omitempty"`
	CreatedAt string  `json:"created_at"`
}
