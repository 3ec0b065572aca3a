package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthDTO respuesta de GET /health.
type HealthDTO struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// RefreshResultDTO respuesta de POST /api/dashboard/:view/refresh.
type RefreshResultDTO struct {
	View        string `json:"view"`
	RefreshedAt string `json:"refreshed_at"`
}
