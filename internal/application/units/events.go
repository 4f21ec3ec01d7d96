package units

import "time"

// MovementRecorded es el evento de integración que se publica después de cada
// transacción mutante confirmada, con clave de partición product_id para que
// los consumidores vean los movimientos de un producto en orden.
type MovementRecorded struct {
	EventID    string    `json:"event_id"`
	ProductID  string    `json:"product_id"`
	Type       string    `json:"type"`
	Quantity   int64     `json:"quantity"`
	Reason     string    `json:"reason,omitempty"`
	Stock      int64     `json:"stock"` // stock disponible tras el movimiento
	OccurredAt time.Time `json:"occurred_at"`
}
