package dto

import "github.com/shopspring/decimal"

type CrearProductoRequest struct {
	CodigoBarras string          `json:"codigo_barras" validate:"required,min=4"`
	Nombre       string          `json:"nombre"        validate:"required,min=2"`
	Descripcion  *string         `json:"descripcion"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"required"`
	StockInicial int             `json:"stock_inicial" validate:"min=0"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=2"`
	Descripcion *string          `json:"descripcion"`
	PrecioVenta *decimal.Decimal `json:"precio_venta"`
	StockMinimo *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	Activo      *bool            `json:"activo"`
}

// ProductoFilter is bound from query string of GET /v1/productos.
type ProductoFilter struct {
	Nombre  string `form:"nombre"`
	Barcode string `form:"barcode"`
	Activo  string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type AjustarStockRequest struct {
	// Delta: positive = entrada, negative = salida
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ProductoResponse struct {
	ID           string          `json:"id"`
	CodigoBarras string          `json:"codigo_barras"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion,omitempty"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	StockActual  int             `json:"stock_actual"`
	StockMinimo  int             `json:"stock_minimo"`
	Activo       bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
