// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
//
// Every error carries a machine-readable Code so that the sale screen can
// distinguish "fix your cart" errors (stock, validation) from "system
// unavailable" errors (CAI missing/exhausted, persistence).
package apierror

import "net/http"

// Error codes returned in the `code` field of every 4xx/5xx response.
const (
	CodeValidacion        = "validation_error"
	CodeNoEncontrado      = "not_found"
	CodeStockInsuficiente = "stock_insuficiente"
	CodeSinCAIActivo      = "sin_cai_activo"
	CodeCAIAgotado        = "cai_agotado"
	CodeCAIVencido        = "cai_vencido"
	CodeCajaYaAbierta     = "caja_ya_abierta"
	CodeSinCajaAbierta    = "sin_caja_abierta"
	CodeConflicto         = "conflicto_concurrencia"
	CodePersistencia      = "persistencia"
	CodeInterno           = "error_interno"
)

// Error is the canonical error envelope for all 4xx/5xx HTTP responses.
// It implements the error interface so services can return it directly.
type Error struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string { return e.Detail }

func New(code, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

func Validacion(detail string) *Error        { return New(CodeValidacion, detail) }
func NoEncontrado(detail string) *Error      { return New(CodeNoEncontrado, detail) }
func StockInsuficiente(detail string) *Error { return New(CodeStockInsuficiente, detail) }

func SinCAIActivo() *Error {
	return New(CodeSinCAIActivo, "No existe un CAI activo — registre una nueva autorización")
}

func CAIAgotado() *Error {
	return New(CodeCAIAgotado, "El rango autorizado del CAI está agotado")
}

func CAIVencido() *Error {
	return New(CodeCAIVencido, "El CAI activo está vencido")
}

func CajaYaAbierta() *Error {
	return New(CodeCajaYaAbierta, "Ya existe una sesión de caja abierta para este usuario")
}

func SinCajaAbierta() *Error {
	return New(CodeSinCajaAbierta, "No hay sesión de caja abierta")
}

func Conflicto(detail string) *Error    { return New(CodeConflicto, detail) }
func Persistencia(detail string) *Error { return New(CodePersistencia, detail) }

// HTTPStatus maps an error code to the HTTP status used in the response.
func HTTPStatus(code string) int {
	switch code {
	case CodeValidacion:
		return http.StatusUnprocessableEntity
	case CodeNoEncontrado:
		return http.StatusNotFound
	case CodeStockInsuficiente, CodeSinCAIActivo, CodeCAIAgotado, CodeCAIVencido,
		CodeCajaYaAbierta, CodeSinCajaAbierta:
		return http.StatusConflict
	case CodeConflicto:
		return http.StatusLocked
	case CodePersistencia, CodeInterno:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidacion, Detail: "Error de validacion", Fields: fields}
}
