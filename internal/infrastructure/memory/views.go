package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository        = productView{}
	_ repository.UnitRepository           = unitView{}
	_ repository.MovementRepository       = movementView{}
	_ repository.SerialSequenceRepository = sequenceView{}
)

// Products devuelve la vista ProductRepository del almacén.
func (s *Store) Products() repository.ProductRepository { return productView{s} }

// Units devuelve la vista UnitRepository del almacén.
func (s *Store) Units() repository.UnitRepository { return unitView{s} }

// Movements devuelve la vista MovementRepository del almacén.
func (s *Store) Movements() repository.MovementRepository { return movementView{s} }

// Sequences devuelve la vista SerialSequenceRepository del almacén.
func (s *Store) Sequences() repository.SerialSequenceRepository { return sequenceView{s} }

type productView struct{ s *Store }

func (v productView) Create(ctx context.Context, p *entity.Product) error { return v.s.Create(ctx, p) }
func (v productView) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return v.s.GetByID(ctx, id)
}
func (v productView) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return v.s.GetForUpdate(ctx, id)
}
func (v productView) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return v.s.List(ctx, limit, offset)
}
func (v productView) UpdateCachedStock(ctx context.Context, productID string, stock int64) error {
	return v.s.UpdateCachedStock(ctx, productID, stock)
}

type unitView struct{ s *Store }

func (v unitView) CreateBatch(ctx context.Context, units []*entity.Unit) error {
	return v.s.CreateBatch(ctx, units)
}
func (v unitView) GetByID(ctx context.Context, id string) (*entity.Unit, error) {
	return v.s.GetUnitByID(ctx, id)
}
func (v unitView) GetForUpdate(ctx context.Context, id string) (*entity.Unit, error) {
	return v.s.GetUnitForUpdate(ctx, id)
}
func (v unitView) ListByProduct(ctx context.Context, productID string) ([]*entity.Unit, error) {
	return v.s.ListByProduct(ctx, productID)
}
func (v unitView) LockOldestAvailable(ctx context.Context, productID string, limit int64) ([]*entity.Unit, error) {
	return v.s.LockOldestAvailable(ctx, productID, limit)
}
func (v unitView) MarkSold(ctx context.Context, id, saleRef string, soldAt time.Time) error {
	return v.s.MarkSold(ctx, id, saleRef, soldAt)
}
func (v unitView) MarkWithdrawn(ctx context.Context, ids []string, reason string, withdrawnAt time.Time) error {
	return v.s.MarkWithdrawn(ctx, ids, reason, withdrawnAt)
}
func (v unitView) CountByState(ctx context.Context, productID, state string) (int64, error) {
	return v.s.CountByState(ctx, productID, state)
}

type movementView struct{ s *Store }

func (v movementView) Append(ctx context.Context, e *entity.MovementEvent) error {
	return v.s.Append(ctx, e)
}
func (v movementView) ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]*entity.MovementEvent, error) {
	return v.s.ListMovementsByProduct(ctx, productID, from, to)
}
func (v movementView) SumByProduct(ctx context.Context, productID string) (int64, error) {
	return v.s.SumByProduct(ctx, productID)
}

type sequenceView struct{ s *Store }

func (v sequenceView) ReserveRange(ctx context.Context, productID string, count int64) (int64, int64, error) {
	return v.s.ReserveRange(ctx, productID, count)
}
