package dto

// ErrorResponse cuerpo de error HTTP. Code es un código estable que la capa de
// presentación usa para mostrar el motivo específico del rechazo (no solo texto
// libre): VALIDATION, NOT_FOUND, INSUFFICIENT_STOCK, ALREADY_SOLD,
// UNIT_WITHDRAWN, SEQUENCE_EXHAUSTED, PRODUCT_INACTIVE, DUPLICATE, INTERNAL.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
