package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse error HTTP con detalle por campo. State trae el borrador
// ya persistido con sus errores cuando la operación llegó a guardarse.
type ValidationErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
	State   interface{}       `json:"state,omitempty"`
}
