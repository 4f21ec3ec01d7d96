package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

// UnitRepo implementación del puerto UnitRepository sobre PostgreSQL (usable
// con pool o tx).
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

const unitColumns = "id, product_id, serial, state, created_at, sold_at, sale_ref, withdrawn_at, withdraw_reason"

// CreateBatch inserta las unidades de un lote con pgx.Batch (un round-trip).
func (r *UnitRepo) CreateBatch(ctx context.Context, units []*entity.Unit) error {
	if len(units) == 0 {
		return nil
	}
	query := `
		INSERT INTO units (id, product_id, serial, state, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	batch := &pgx.Batch{}
	for _, u := range units {
		batch.Queue(query, u.ID, u.ProductID, u.Serial, u.State, u.CreatedAt)
	}
	results := r.q.SendBatch(ctx, batch)
	defer results.Close()
	for range units {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert unit: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una unidad por ID; (nil, nil) si no existe.
func (r *UnitRepo) GetByID(ctx context.Context, id string) (*entity.Unit, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene la unidad y bloquea su fila (SELECT FOR UPDATE).
func (r *UnitRepo) GetForUpdate(ctx context.Context, id string) (*entity.Unit, error) {
	return r.get(ctx, id, true)
}

func (r *UnitRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Unit, error) {
	query := "SELECT " + unitColumns + " FROM units WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	u, err := scanUnit(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

// ListByProduct devuelve todas las unidades del producto (cualquier estado),
// created_at ascendente con desempate por id.
func (r *UnitRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Unit, error) {
	query := "SELECT " + unitColumns + " FROM units WHERE product_id = $1 ORDER BY created_at ASC, id ASC"
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	return collectUnits(rows)
}

// LockOldestAvailable bloquea hasta limit unidades disponibles, las más
// antiguas primero. Puede devolver menos que limit: el caller decide si eso
// es stock insuficiente.
func (r *UnitRepo) LockOldestAvailable(ctx context.Context, productID string, limit int64) ([]*entity.Unit, error) {
	query := "SELECT " + unitColumns + ` FROM units
		WHERE product_id = $1 AND state = $2
		ORDER BY created_at ASC, id ASC
		LIMIT $3
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productID, entity.UnitStateAvailable, limit)
	if err != nil {
		return nil, fmt.Errorf("lock oldest available: %w", err)
	}
	defer rows.Close()
	return collectUnits(rows)
}

// MarkSold transiciona available → sold. El WHERE sobre state hace la
// transición monótona también a nivel SQL; cero filas afectadas = conflicto.
func (r *UnitRepo) MarkSold(ctx context.Context, id, saleRef string, soldAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE units SET state = $2, sold_at = $3, sale_ref = $4
		 WHERE id = $1 AND state = $5`,
		id, entity.UnitStateSold, soldAt, saleRef, entity.UnitStateAvailable,
	)
	if err != nil {
		return fmt.Errorf("mark sold: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadySold
	}
	return nil
}

// MarkWithdrawn transiciona available → withdrawn para el conjunto de ids. Si
// alguna unidad ya no estaba disponible la cuenta no coincide y se reporta
// conflicto: el caller las bloqueó, así que esto solo ocurre ante un bug.
func (r *UnitRepo) MarkWithdrawn(ctx context.Context, ids []string, reason string, withdrawnAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE units SET state = $2, withdrawn_at = $3, withdraw_reason = $4
		 WHERE id = ANY($1) AND state = $5`,
		ids, entity.UnitStateWithdrawn, withdrawnAt, reason, entity.UnitStateAvailable,
	)
	if err != nil {
		return fmt.Errorf("mark withdrawn: %w", err)
	}
	if cmd.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("retiradas %d de %d unidades: %w", cmd.RowsAffected(), len(ids), domain.ErrInsufficientStock)
	}
	return nil
}

// CountByState cuenta unidades del producto en un estado dado.
func (r *UnitRepo) CountByState(ctx context.Context, productID, state string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM units WHERE product_id = $1 AND state = $2`,
		productID, state,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return n, nil
}

func scanUnit(row pgx.Row) (*entity.Unit, error) {
	var u entity.Unit
	var saleRef, withdrawReason *string
	err := row.Scan(&u.ID, &u.ProductID, &u.Serial, &u.State, &u.CreatedAt,
		&u.SoldAt, &saleRef, &u.WithdrawnAt, &withdrawReason)
	if err != nil {
		return nil, err
	}
	if saleRef != nil {
		u.SaleRef = *saleRef
	}
	if withdrawReason != nil {
		u.WithdrawReason = *withdrawReason
	}
	return &u, nil
}

func collectUnits(rows pgx.Rows) ([]*entity.Unit, error) {
	var list []*entity.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
