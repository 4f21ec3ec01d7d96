package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/serial"
)

var _ repository.SerialSequenceRepository = (*SerialSequenceRepo)(nil)

// SerialSequenceRepo contador de seriales por producto sobre PostgreSQL.
// Pensado para usarse dentro de la transacción de IssueBatch: la fila queda
// bloqueada hasta el commit, y un rollback devuelve el contador intacto.
type SerialSequenceRepo struct {
	q Querier
}

// NewSerialSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialSequenceRepository(q Querier) *SerialSequenceRepo {
	return &SerialSequenceRepo{q: q}
}

// ReserveRange crea la secuencia del producto en el primer uso (prefix_no lo
// asigna la identidad global de la tabla), bloquea la fila y avanza last_value
// en count. El techo es el ancho del serial; superarlo es ErrSequenceExhausted.
func (r *SerialSequenceRepo) ReserveRange(ctx context.Context, productID string, count int64) (prefixNo, first int64, err error) {
	if count < 1 {
		return 0, 0, domain.ErrInvalidInput
	}

	// Alta perezosa: no pasa nada si la fila ya existe
	_, err = r.q.Exec(ctx, `
		INSERT INTO serial_sequences (product_id, last_value, updated_at)
		VALUES ($1, 0, now())
		ON CONFLICT (product_id) DO NOTHING`,
		productID,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("init sequence: %w", err)
	}

	var last int64
	err = r.q.QueryRow(ctx, `
		SELECT prefix_no, last_value FROM serial_sequences
		WHERE product_id = $1
		FOR UPDATE`,
		productID,
	).Scan(&prefixNo, &last)
	if err != nil {
		return 0, 0, fmt.Errorf("lock sequence: %w", err)
	}

	if prefixNo > serial.MaxPrefix {
		return 0, 0, fmt.Errorf("prefijo %d supera el espacio de productos: %w", prefixNo, domain.ErrSequenceExhausted)
	}
	if last > serial.MaxSequence-count {
		return 0, 0, fmt.Errorf("secuencia del producto %s en %d, reservar %d supera el techo %d: %w",
			productID, last, count, serial.MaxSequence, domain.ErrSequenceExhausted)
	}

	_, err = r.q.Exec(ctx, `
		UPDATE serial_sequences SET last_value = $2, updated_at = now()
		WHERE product_id = $1`,
		productID, last+count,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("advance sequence: %w", err)
	}
	return prefixNo, last + 1, nil
}
