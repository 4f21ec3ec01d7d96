package repository

import "context"

// SerialSequenceRepository define el puerto del contador de seriales por
// producto. La reserva bloquea la fila de la secuencia, por lo que dos lotes
// concurrentes del mismo producto jamás obtienen rangos solapados; si la
// transacción que reservó aborta, el contador vuelve atrás con el rollback y
// no quedan seriales reservados huérfanos.
type SerialSequenceRepository interface {
	// ReserveRange crea la secuencia del producto si no existe, la bloquea
	// (SELECT FOR UPDATE) y avanza last_value en count. Devuelve la identidad
	// global del producto (prefixNo) y el primer valor del rango reservado.
	// Falla con domain.ErrSequenceExhausted al superar el techo documentado.
	ReserveRange(ctx context.Context, productID string, count int64) (prefixNo, first int64, err error)
}
