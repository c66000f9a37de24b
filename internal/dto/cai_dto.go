package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarCAIRequest creates a new authorization block. Registering a block
// with `activar` deactivates every other block in the same transaction.
type RegistrarCAIRequest struct {
	Codigo          string `json:"codigo"           validate:"required,min=8"`
	Establecimiento string `json:"establecimiento"  validate:"required,len=3,numeric"`
	PuntoEmision    string `json:"punto_emision"    validate:"required,len=3,numeric"`
	TipoDocumento   string `json:"tipo_documento"   validate:"required,len=2,numeric"`
	RangoInicio     int64  `json:"rango_inicio"     validate:"required,min=1"`
	RangoFin        int64  `json:"rango_fin"        validate:"required,gtfield=RangoInicio"`
	FechaEmision    string `json:"fecha_emision"    validate:"required,datetime=2006-01-02"`
	FechaLimite     string `json:"fecha_limite"     validate:"required,datetime=2006-01-02"`
	Activar         bool   `json:"activar"`
}

type SetActivaCAIRequest struct {
	Activo bool `json:"activo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CAIResponse struct {
	ID              string `json:"id"`
	Codigo          string `json:"codigo"`
	Establecimiento string `json:"establecimiento"`
	PuntoEmision    string `json:"punto_emision"`
	TipoDocumento   string `json:"tipo_documento"`
	RangoInicio     int64  `json:"rango_inicio"`
	RangoFin        int64  `json:"rango_fin"`
	Correlativo     int64  `json:"correlativo"`
	Restantes       int64  `json:"restantes"`
	FechaEmision    string `json:"fecha_emision"`
	FechaLimite     string `json:"fecha_limite"`
	Activo          bool   `json:"activo"`
}
