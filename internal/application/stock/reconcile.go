// Package stock implementa el motor de reconciliación: el stock actual como
// función pura del almacén de unidades, y la detección de drift contra la suma
// del libro de movimientos.
package stock

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// ReconcileUseCase expone CurrentStock y Reconcile. Las lecturas corren fuera
// de transacción (read committed): nunca bloquean a un escritor y nunca ven un
// lote a medio confirmar porque IssueBatch escribe todo en una sola tx.
type ReconcileUseCase struct {
	unitRepo    repository.UnitRepository
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(
	unitRepo repository.UnitRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) *ReconcileUseCase {
	return &ReconcileUseCase{unitRepo: unitRepo, movRepo: movRepo, productRepo: productRepo}
}

// CurrentStock devuelve el stock actual del producto: el conteo de unidades
// en estado available. Esta cuenta es la fuente de verdad; el campo cacheado
// del producto es solo una optimización de lectura.
func (uc *ReconcileUseCase) CurrentStock(ctx context.Context, productID string) (int64, error) {
	if productID == "" {
		return 0, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	return uc.unitRepo.CountByState(ctx, productID, entity.UnitStateAvailable)
}

// Reconcile recomputa el stock desde la suma del libro (Σ IN − Σ OUT) y lo
// compara contra el conteo de unidades disponibles. Devuelve la diferencia con
// signo (libro − unidades). Un drift distinto de cero es una falla de
// integridad: se reporta y se loguea, jamás se corrige en silencio porque eso
// ocultaría la causa raíz.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, productID string) (ok bool, drift int64, err error) {
	if productID == "" {
		return false, 0, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return false, 0, err
	}
	if product == nil {
		return false, 0, domain.ErrNotFound
	}

	ledgerSum, err := uc.movRepo.SumByProduct(ctx, productID)
	if err != nil {
		return false, 0, err
	}
	available, err := uc.unitRepo.CountByState(ctx, productID, entity.UnitStateAvailable)
	if err != nil {
		return false, 0, err
	}

	drift = ledgerSum - available
	if drift != 0 {
		log.Error().
			Str("product_id", productID).
			Int64("ledger_sum", ledgerSum).
			Int64("available_units", available).
			Int64("drift", drift).
			Msg("falla de integridad: el libro y las unidades no concilian")
	}
	return drift == 0, drift, nil
}
