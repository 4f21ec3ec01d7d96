package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee: el libro es append-only y las
// correcciones se registran como eventos compensatorios.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append persiste un evento del libro.
func (r *MovementRepo) Append(ctx context.Context, event *entity.MovementEvent) error {
	query := `
		INSERT INTO movement_events (id, product_id, type, quantity, reason, related_unit_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		event.ID, event.ProductID, event.Type, event.Quantity,
		event.Reason, event.RelatedUnitIDs, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// ListByProduct lista eventos de un producto en un rango de fechas, los más
// recientes primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]*entity.MovementEvent, error) {
	query := `
		SELECT id, product_id, type, quantity, reason, related_unit_ids, created_at
		FROM movement_events WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementEvent
	for rows.Next() {
		var e entity.MovementEvent
		var reason *string
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Type, &e.Quantity, &reason, &e.RelatedUnitIDs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if reason != nil {
			e.Reason = *reason
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// SumByProduct devuelve Σ IN − Σ OUT del producto directamente en SQL.
func (r *MovementRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = $2 THEN quantity ELSE -quantity END), 0)
		FROM movement_events WHERE product_id = $1`,
		productID, entity.MovementTypeIN,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
