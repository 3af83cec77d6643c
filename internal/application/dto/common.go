package dto

// ErrorResponse cuerpo de error HTTP. Detail lleva el snapshot de estado en
// rechazos de negocio (conflictos), para que el caller reconcilie sin releer.
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}
