// Package memory implementa los puertos de persistencia en memoria, para
// tests y desarrollo. El TxRunner de este paquete reproduce la semántica
// transaccional del de PostgreSQL: los escritores se serializan y una función
// que falla (o un contexto cancelado antes del commit) no deja rastro.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/serial"
)

// Store guarda el estado completo del libro en mapas. Los puertos de
// repositorio se obtienen con Products/Units/Movements/Sequences (un mismo
// tipo no puede implementar los cuatro: los nombres de método chocan).
type Store struct {
	mu         sync.RWMutex
	products   map[string]entity.Product
	units      map[string]entity.Unit
	movements  []entity.MovementEvent
	sequences  map[string]entity.SerialSequence
	nextPrefix int64
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]entity.Product),
		units:      make(map[string]entity.Unit),
		sequences:  make(map[string]entity.SerialSequence),
		nextPrefix: 1,
	}
}

// ---- ProductRepository ----

func (s *Store) Create(_ context.Context, product *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	s.products[product.ID] = *product
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

// GetForUpdate en memoria no bloquea filas: la serialización la da el TxRunner.
func (s *Store) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	out := make([]*entity.Product, 0, end-offset)
	for i := offset; i < end; i++ {
		cp := all[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) UpdateCachedStock(_ context.Context, productID string, stock int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CurrentStock = stock
	p.UpdatedAt = time.Now()
	s.products[productID] = p
	return nil
}

// ---- UnitRepository ----

func (s *Store) CreateBatch(_ context.Context, units []*entity.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range units {
		if _, ok := s.units[u.ID]; ok {
			return domain.ErrDuplicate
		}
	}
	for _, u := range units {
		s.units[u.ID] = *u
	}
	return nil
}

func (s *Store) GetUnitByID(_ context.Context, id string) (*entity.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[id]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func (s *Store) GetUnitForUpdate(ctx context.Context, id string) (*entity.Unit, error) {
	return s.GetUnitByID(ctx, id)
}

func (s *Store) ListByProduct(_ context.Context, productID string) ([]*entity.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unitsOf(productID, ""), nil
}

func (s *Store) LockOldestAvailable(_ context.Context, productID string, limit int64) ([]*entity.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	available := s.unitsOf(productID, entity.UnitStateAvailable)
	if int64(len(available)) > limit {
		available = available[:limit]
	}
	return available, nil
}

// unitsOf devuelve copias de las unidades del producto (filtradas por estado
// si state != ""), created_at ascendente con desempate por id. Caller sostiene mu.
func (s *Store) unitsOf(productID, state string) []*entity.Unit {
	var list []*entity.Unit
	for _, u := range s.units {
		if u.ProductID != productID {
			continue
		}
		if state != "" && u.State != state {
			continue
		}
		cp := u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (s *Store) MarkSold(_ context.Context, id, saleRef string, soldAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok {
		return domain.ErrNotFound
	}
	if u.State != entity.UnitStateAvailable {
		return domain.ErrAlreadySold
	}
	at := soldAt
	u.State = entity.UnitStateSold
	u.SoldAt = &at
	u.SaleRef = saleRef
	s.units[id] = u
	return nil
}

func (s *Store) MarkWithdrawn(_ context.Context, ids []string, reason string, withdrawnAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		u, ok := s.units[id]
		if !ok || u.State != entity.UnitStateAvailable {
			return domain.ErrInsufficientStock
		}
	}
	for _, id := range ids {
		u := s.units[id]
		at := withdrawnAt
		u.State = entity.UnitStateWithdrawn
		u.WithdrawnAt = &at
		u.WithdrawReason = reason
		s.units[id] = u
	}
	return nil
}

func (s *Store) CountByState(_ context.Context, productID, state string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.units {
		if u.ProductID == productID && u.State == state {
			n++
		}
	}
	return n, nil
}

// ---- MovementRepository ----

func (s *Store) Append(_ context.Context, event *entity.MovementEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *event
	cp.RelatedUnitIDs = append([]string(nil), event.RelatedUnitIDs...)
	s.movements = append(s.movements, cp)
	return nil
}

func (s *Store) ListMovementsByProduct(_ context.Context, productID string, from, to *time.Time) ([]*entity.MovementEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*entity.MovementEvent
	for i := range s.movements {
		e := s.movements[i]
		if e.ProductID != productID {
			continue
		}
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && e.CreatedAt.After(*to) {
			continue
		}
		cp := e
		cp.RelatedUnitIDs = append([]string(nil), e.RelatedUnitIDs...)
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (s *Store) SumByProduct(_ context.Context, productID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum int64
	for i := range s.movements {
		if s.movements[i].ProductID == productID {
			sum += s.movements[i].Delta()
		}
	}
	return sum, nil
}

// ---- SerialSequenceRepository ----

func (s *Store) ReserveRange(_ context.Context, productID string, count int64) (prefixNo, first int64, err error) {
	if count < 1 {
		return 0, 0, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, ok := s.sequences[productID]
	if !ok {
		if s.nextPrefix > serial.MaxPrefix {
			return 0, 0, domain.ErrSequenceExhausted
		}
		seq = entity.SerialSequence{ProductID: productID, PrefixNo: s.nextPrefix}
		s.nextPrefix++
	}
	if seq.LastValue > serial.MaxSequence-count {
		return 0, 0, domain.ErrSequenceExhausted
	}
	first = seq.LastValue + 1
	seq.LastValue += count
	seq.UpdatedAt = time.Now()
	s.sequences[productID] = seq
	return seq.PrefixNo, first, nil
}
