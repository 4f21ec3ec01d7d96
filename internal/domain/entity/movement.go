package entity

import "time"

// Tipos de evento de movimiento.
const (
	MovementTypeIN  = "IN"  // emisión de lote de unidades
	MovementTypeOUT = "OUT" // venta o retiro manual
)

// MovementEvent es una entrada del libro de movimientos: append-only, nunca se
// actualiza ni se borra. Las correcciones se modelan como eventos compensatorios
// nuevos para preservar la pista de auditoría completa.
type MovementEvent struct {
	ID             string
	ProductID      string
	Type           string
	Quantity       int64 // siempre positivo; el signo lo da Type
	Reason         string
	RelatedUnitIDs []string // unidades afectadas, cuando el evento nace de unidades serializadas
	CreatedAt      time.Time
}

// Delta devuelve el efecto del evento sobre el stock (+Quantity para IN, −Quantity para OUT).
func (e *MovementEvent) Delta() int64 {
	if e.Type == MovementTypeOUT {
		return -e.Quantity
	}
	return e.Quantity
}
