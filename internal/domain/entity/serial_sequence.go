package entity

import "time"

// SerialSequence es el contador monótono por producto desde el que se derivan
// los seriales. Se persiste transaccionalmente junto con la reserva (no se
// deriva del reloj, para evitar colisiones por skew o ráfagas).
type SerialSequence struct {
	ProductID string
	PrefixNo  int64 // identidad global del producto dentro del espacio de seriales (única)
	LastValue int64 // último valor emitido; 0 = nunca se emitió
	UpdatedAt time.Time
}
