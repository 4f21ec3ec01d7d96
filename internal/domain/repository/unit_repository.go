package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// UnitRepository define el puerto de persistencia de unidades serializadas.
// Las unidades nunca se borran: solo cambian de estado exactamente una vez
// (available → sold o available → withdrawn).
type UnitRepository interface {
	// CreateBatch inserta las unidades de un lote; forma parte de la
	// transacción de IssueBatch junto con la reserva de seriales y el evento IN.
	CreateBatch(ctx context.Context, units []*entity.Unit) error
	GetByID(ctx context.Context, id string) (*entity.Unit, error)
	// GetForUpdate bloquea la fila de la unidad (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Unit, error)
	// ListByProduct devuelve todas las unidades del producto en cualquier
	// estado, ordenadas por created_at ascendente con desempate por id.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Unit, error)
	// LockOldestAvailable bloquea y devuelve hasta limit unidades disponibles,
	// las más antiguas primero (created_at, id). Puede devolver menos que limit.
	LockOldestAvailable(ctx context.Context, productID string, limit int64) ([]*entity.Unit, error)
	MarkSold(ctx context.Context, id, saleRef string, soldAt time.Time) error
	MarkWithdrawn(ctx context.Context, ids []string, reason string, withdrawnAt time.Time) error
	CountByState(ctx context.Context, productID, state string) (int64, error)
}
