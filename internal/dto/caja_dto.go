package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	EfectivoContado decimal.Decimal `json:"efectivo_contado" validate:"min=0"`
	Observaciones   *string         `json:"observaciones"`
}

// HistorialCajaFilter is bound from query string of GET /v1/caja/historial.
type HistorialCajaFilter struct {
	Desde     string `form:"desde"`  // YYYY-MM-DD
	Hasta     string `form:"hasta"`  // YYYY-MM-DD
	UsuarioID string `form:"usuario_id" validate:"omitempty,uuid"`
	Estado    string `form:"estado,default=cerrada"` // abierta | cerrada | all
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// SesionCajaResponse is the full session record; the reconciliation fields are
// nil while the session is open.
type SesionCajaResponse struct {
	ID               string           `json:"id"`
	UsuarioID        string           `json:"usuario_id"`
	Cajero           string           `json:"cajero,omitempty"`
	Estado           string           `json:"estado"`
	MontoInicial     decimal.Decimal  `json:"monto_inicial"`
	TotalVentas      *decimal.Decimal `json:"total_ventas,omitempty"`
	TotalEfectivo    *decimal.Decimal `json:"total_efectivo,omitempty"`
	TotalTarjeta     *decimal.Decimal `json:"total_tarjeta,omitempty"`
	EfectivoEsperado *decimal.Decimal `json:"efectivo_esperado,omitempty"`
	EfectivoContado  *decimal.Decimal `json:"efectivo_contado,omitempty"`
	Diferencia       *decimal.Decimal `json:"diferencia,omitempty"`
	Observaciones    *string          `json:"observaciones,omitempty"`
	OpenedAt         string           `json:"opened_at"`
	ClosedAt         *string          `json:"closed_at,omitempty"`
}

type MovimientoCajaResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	MetodoPago  *string         `json:"metodo_pago,omitempty"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion"`
	CreatedAt   string          `json:"created_at"`
}

type HistorialCajaResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
