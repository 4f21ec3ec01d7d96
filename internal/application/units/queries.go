package units

import (
	"context"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// MovementQueryUseCase lecturas del libro de movimientos para auditoría.
type MovementQueryUseCase struct {
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) *MovementQueryUseCase {
	return &MovementQueryUseCase{movRepo: movRepo, productRepo: productRepo}
}

// ListByProduct lista los eventos del producto, opcionalmente acotados por
// [from, to], del más reciente al más antiguo.
func (uc *MovementQueryUseCase) ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]*entity.MovementEvent, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movRepo.ListByProduct(ctx, productID, from, to)
}
