package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ units.TxRunner = (*TxRunner)(nil)

// TxRunner reproduce en memoria la semántica del runner de PostgreSQL:
// los escritores se serializan entre sí, y si fn falla o el contexto ya está
// cancelado antes del "commit", el estado vuelve al snapshot previo y no
// queda rastro de la operación.
type TxRunner struct {
	txMu  sync.Mutex
	store *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn contra el almacén bajo el lock de escritores; restaura el
// snapshot ante cualquier error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	unitRepo repository.UnitRepository,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	seqRepo repository.SerialSequenceRepository,
) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snap := r.store.snapshot()
	err := fn(r.store.Units(), r.store.Movements(), r.store.Products(), r.store.Sequences())
	if err == nil {
		err = ctx.Err() // cancelación antes del commit: también revierte
	}
	if err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	products   map[string]entity.Product
	units      map[string]entity.Unit
	movements  []entity.MovementEvent
	sequences  map[string]entity.SerialSequence
	nextPrefix int64
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn := storeSnapshot{
		products:   make(map[string]entity.Product, len(s.products)),
		units:      make(map[string]entity.Unit, len(s.units)),
		movements:  make([]entity.MovementEvent, len(s.movements)),
		sequences:  make(map[string]entity.SerialSequence, len(s.sequences)),
		nextPrefix: s.nextPrefix,
	}
	for k, v := range s.products {
		sn.products[k] = v
	}
	for k, v := range s.units {
		sn.units[k] = v
	}
	copy(sn.movements, s.movements)
	for k, v := range s.sequences {
		sn.sequences[k] = v
	}
	return sn
}

func (s *Store) restore(sn storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = sn.products
	s.units = sn.units
	s.movements = sn.movements
	s.sequences = sn.sequences
	s.nextPrefix = sn.nextPrefix
}
