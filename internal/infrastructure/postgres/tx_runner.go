package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ units.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. El Rollback
// en defer garantiza que un caller que aborta (contexto cancelado, error del
// callback) no deja rastro: ni seriales reservados, ni unidades, ni eventos.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	unitRepo repository.UnitRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	seqRepo repository.SerialSequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	unitRepo := NewUnitRepository(tx)
	movRepo := NewMovementRepository(tx)
	productRepo := NewProductRepository(tx)
	seqRepo := NewSerialSequenceRepository(tx)

	if err := fn(unitRepo, movRepo, productRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
