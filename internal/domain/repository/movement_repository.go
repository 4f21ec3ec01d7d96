package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// MovementRepository define el puerto del libro de movimientos. El puerto no
// expone update ni delete: las correcciones se registran como eventos
// compensatorios nuevos.
type MovementRepository interface {
	Append(ctx context.Context, event *entity.MovementEvent) error
	// ListByProduct lista los eventos de un producto, opcionalmente acotados
	// por [from, to], ordenados por created_at descendente.
	ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]*entity.MovementEvent, error)
	// SumByProduct devuelve Σ IN.quantity − Σ OUT.quantity del producto,
	// el lado "libro" de la reconciliación.
	SumByProduct(ctx context.Context, productID string) (int64, error)
}
