package units_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/serial"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/events"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
)

type fixture struct {
	store  *memory.Store
	ledger *units.LedgerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ledger := units.NewLedgerUseCase(
		memory.NewTxRunner(store),
		store.Products(),
		store.Units(),
		events.NoopPublisher{},
		500,
	)
	return &fixture{store: store, ledger: ledger}
}

func (f *fixture) createProduct(t *testing.T, active bool) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		Name:      "Collar antipulgas",
		Price:     decimal.NewFromInt(35000),
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func TestIssueBatch_EmiteLoteCompleto(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)
	ctx := context.Background()

	issued, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 10, Reason: "compra proveedor"})
	require.NoError(t, err)
	require.Len(t, issued, 10)

	seen := make(map[string]struct{})
	for _, u := range issued {
		assert.Equal(t, entity.UnitStateAvailable, u.State)
		assert.True(t, serial.IsValid(u.Serial), "serial con formato inválido: %s", u.Serial)
		_, dup := seen[u.Serial]
		require.False(t, dup, "serial repetido: %s", u.Serial)
		seen[u.Serial] = struct{}{}
	}

	// Un solo evento IN con las 10 unidades relacionadas
	movs, err := f.store.Movements().ListByProduct(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIN, movs[0].Type)
	assert.Equal(t, int64(10), movs[0].Quantity)
	assert.Len(t, movs[0].RelatedUnitIDs, 10)

	// Stock cacheado refrescado en la misma transacción
	got, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.CurrentStock)
}

func TestIssueBatch_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)
	ctx := context.Background()

	_, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 501})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "por encima de la cota por llamada")

	_, err = f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: uuid.New().String(), Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Nada quedó registrado
	movs, err := f.store.Movements().ListByProduct(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestIssueBatch_ProductoInactivo(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, false)

	_, err := f.ledger.IssueBatch(context.Background(), units.IssueBatchInput{ProductID: p.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductInactive)
}

// Un caller que aborta antes del commit no deja rastro: ni unidades, ni
// eventos, ni avance del contador de seriales.
func TestIssueBatch_AbortoNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.ledger.IssueBatch(cancelled, units.IssueBatchInput{ProductID: p.ID, Quantity: 5})
	require.Error(t, err)

	ctx := context.Background()
	list, err := f.store.Units().ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "sin unidades huérfanas")

	movs, err := f.store.Movements().ListByProduct(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, movs, "sin eventos huérfanos")

	got, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentStock)

	// El contador quedó intacto: la siguiente emisión arranca en 1
	issued, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	_, seq, err := serial.Decode(issued[0].Serial)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

// Dos lotes concurrentes de 50 para el mismo producto producen 100 seriales
// distintos y un rango de secuencia continuo 1..100.
func TestIssueBatch_ConcurrenteSinColisiones(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]*entity.Unit, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 50})
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	seqs := make(map[int64]struct{})
	for _, batch := range results {
		require.Len(t, batch, 50)
		for _, u := range batch {
			_, seq, err := serial.Decode(u.Serial)
			require.NoError(t, err)
			_, dup := seqs[seq]
			require.False(t, dup, "secuencia repetida: %d", seq)
			seqs[seq] = struct{}{}
		}
	}
	require.Len(t, seqs, 100)
	for want := int64(1); want <= 100; want++ {
		_, ok := seqs[want]
		assert.True(t, ok, "hueco en la secuencia: falta %d", want)
	}
}

func TestMarkSold_TransicionMonotona(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)
	ctx := context.Background()

	issued, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	unitID := issued[0].ID

	require.NoError(t, f.ledger.MarkSold(ctx, unitID, "FAC-001"))

	sold, err := f.store.Units().GetByID(ctx, unitID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStateSold, sold.State)
	require.NotNil(t, sold.SoldAt)
	assert.Equal(t, "FAC-001", sold.SaleRef)
	firstSoldAt := *sold.SoldAt

	// Segunda venta: rechazo explícito, soldAt de la primera intacto
	err = f.ledger.MarkSold(ctx, unitID, "FAC-002")
	assert.ErrorIs(t, err, domain.ErrAlreadySold)

	again, err := f.store.Units().GetByID(ctx, unitID)
	require.NoError(t, err)
	assert.True(t, firstSoldAt.Equal(*again.SoldAt), "soldAt no debe cambiar en el rechazo")
	assert.Equal(t, "FAC-001", again.SaleRef)

	// La venta registró su evento OUT de cantidad 1 y bajó el stock cacheado
	movs, err := f.store.Movements().ListByProduct(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 2) // IN del lote + OUT de la venta
	assert.Equal(t, entity.MovementTypeOUT, movs[0].Type)
	assert.Equal(t, int64(1), movs[0].Quantity)

	got, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CurrentStock)
}

func TestMarkSold_UnidadInexistente(t *testing.T) {
	f := newFixture(t)
	err := f.ledger.MarkSold(context.Background(), uuid.New().String(), "FAC-001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkSold_UnidadRetirada(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)
	ctx := context.Background()

	issued, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.ledger.RemoveUnits(ctx, units.RemoveUnitsInput{ProductID: p.ID, Quantity: 1, Reason: "rotura"}))

	err = f.ledger.MarkSold(ctx, issued[0].ID, "FAC-001")
	assert.ErrorIs(t, err, domain.ErrUnitWithdrawn)
}

func TestRemoveUnits_InsuficienteNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)
	ctx := context.Background()

	_, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	err = f.ledger.RemoveUnits(ctx, units.RemoveUnitsInput{ProductID: p.ID, Quantity: 10, Reason: "ajuste"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Stock intacto y sin evento OUT
	got, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.CurrentStock)

	movs, err := f.store.Movements().ListByProduct(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIN, movs[0].Type)
}

func TestRemoveUnits_RetiraLasMasAntiguas(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)
	ctx := context.Background()

	old, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // createdAt distinto entre lotes
	recent, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.ledger.RemoveUnits(ctx, units.RemoveUnitsInput{ProductID: p.ID, Quantity: 2, Reason: "vencidas"}))

	for _, u := range old {
		got, err := f.store.Units().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.UnitStateWithdrawn, got.State, "las más antiguas salen primero")
		assert.Equal(t, "vencidas", got.WithdrawReason)
		require.NotNil(t, got.WithdrawnAt)
	}
	stillThere, err := f.store.Units().GetByID(ctx, recent[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStateAvailable, stillThere.State)

	movs, err := f.store.Movements().ListByProduct(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, entity.MovementTypeOUT, movs[0].Type)
	assert.Equal(t, int64(2), movs[0].Quantity)
}

func TestListUnitsByProduct_OrdenAscendente(t *testing.T) {
	f := newFixture(t)
	p := f.createProduct(t, true)
	ctx := context.Background()

	_, err := f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = f.ledger.IssueBatch(ctx, units.IssueBatchInput{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	product, list, err := f.ledger.ListUnitsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, product.ID)
	require.Len(t, list, 5)
	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		less := prev.CreatedAt.Before(cur.CreatedAt) ||
			(prev.CreatedAt.Equal(cur.CreatedAt) && prev.ID < cur.ID)
		assert.True(t, less, "orden created_at asc con desempate por id")
	}
}
