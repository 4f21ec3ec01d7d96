package units

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/serial"
)

// LedgerUseCase implementa las operaciones mutantes sobre unidades
// serializadas: emisión de lotes (IN), venta unitaria y retiro manual (OUT).
// Cada operación es una sola transacción que toma el bloqueo de fila del
// producto como ancla de serialización, de modo que operaciones concurrentes
// sobre el mismo producto se ordenan y productos distintos no se bloquean.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	unitRepo    repository.UnitRepository
	publisher   EventPublisher
	maxBatch    int64 // cota por llamada para no retener el bloqueo indefinidamente
}

// NewLedgerUseCase construye el caso de uso. maxBatch acota la cantidad por
// llamada de IssueBatch/RemoveUnits.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	unitRepo repository.UnitRepository,
	publisher EventPublisher,
	maxBatch int64,
) *LedgerUseCase {
	if maxBatch <= 0 {
		maxBatch = 500
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		unitRepo:    unitRepo,
		publisher:   publisher,
		maxBatch:    maxBatch,
	}
}

// IssueBatchInput entrada para emitir un lote de unidades nuevas.
type IssueBatchInput struct {
	ProductID string
	Quantity  int64
	Reason    string
}

// RemoveUnitsInput entrada para retirar unidades de stock sin borrarlas.
type RemoveUnitsInput struct {
	ProductID string
	Quantity  int64
	Reason    string
}

// IssueBatch emite Quantity unidades nuevas para el producto en una sola
// transacción: bloqueo del producto, reserva del rango de seriales, inserción
// de las unidades en estado available, un evento IN con las unidades
// relacionadas y el refresco del stock cacheado. Si cualquier paso falla no
// persiste ninguno (sin lotes parciales ni seriales huérfanos).
func (uc *LedgerUseCase) IssueBatch(ctx context.Context, input IssueBatchInput) ([]*entity.Unit, error) {
	if input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity < 1 || input.Quantity > uc.maxBatch {
		return nil, fmt.Errorf("cantidad %d fuera de [1, %d]: %w", input.Quantity, uc.maxBatch, domain.ErrInvalidInput)
	}

	var issued []*entity.Unit
	var stockAfter int64
	err := uc.txRunner.Run(ctx, func(
		unitRepo repository.UnitRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		seqRepo repository.SerialSequenceRepository,
	) error {
		// Bloquea la fila del producto: ancla de serialización por producto
		product, err := productRepo.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if !product.Active {
			return domain.ErrProductInactive
		}

		// Reserva el rango de seriales bajo el mismo bloqueo transaccional
		prefixNo, first, err := seqRepo.ReserveRange(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return err
		}

		now := time.Now()
		batch := make([]*entity.Unit, 0, input.Quantity)
		relatedIDs := make([]string, 0, input.Quantity)
		for i := int64(0); i < input.Quantity; i++ {
			code, err := serial.Encode(prefixNo, first+i)
			if err != nil {
				return err
			}
			u := &entity.Unit{
				ID:        uuid.New().String(),
				ProductID: input.ProductID,
				Serial:    code,
				State:     entity.UnitStateAvailable,
				CreatedAt: now,
			}
			batch = append(batch, u)
			relatedIDs = append(relatedIDs, u.ID)
		}
		if err := unitRepo.CreateBatch(ctx, batch); err != nil {
			return err
		}

		// Un solo evento IN por lote, con las unidades emitidas
		mov := &entity.MovementEvent{
			ID:             uuid.New().String(),
			ProductID:      input.ProductID,
			Type:           entity.MovementTypeIN,
			Quantity:       input.Quantity,
			Reason:         input.Reason,
			RelatedUnitIDs: relatedIDs,
			CreatedAt:      now,
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}

		// Refresca el campo cacheado recontando, nunca sumando sobre la caché
		stockAfter, err = uc.refreshCachedStock(ctx, unitRepo, productRepo, input.ProductID)
		if err != nil {
			return err
		}
		issued = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, MovementRecorded{
		EventID:    uuid.New().String(),
		ProductID:  input.ProductID,
		Type:       entity.MovementTypeIN,
		Quantity:   input.Quantity,
		Reason:     input.Reason,
		Stock:      stockAfter,
		OccurredAt: time.Now(),
	})
	return issued, nil
}

// MarkSold transiciona una unidad available → sold asignando soldAt y saleRef
// exactamente una vez, y registra el evento OUT de cantidad 1 que mantiene la
// suma del libro igual al conteo de disponibles. Una segunda llamada sobre la
// misma unidad devuelve ErrAlreadySold sin tocar el soldAt original: el doble
// cobro debe aflorar, no silenciarse.
func (uc *LedgerUseCase) MarkSold(ctx context.Context, unitID, saleRef string) error {
	if unitID == "" {
		return domain.ErrInvalidInput
	}

	var productID string
	var stockAfter int64
	err := uc.txRunner.Run(ctx, func(
		unitRepo repository.UnitRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SerialSequenceRepository,
	) error {
		// Lectura sin bloqueo para conocer el producto y respetar el orden de
		// bloqueo producto → unidad (mismo orden que IssueBatch/RemoveUnits)
		peek, err := unitRepo.GetByID(ctx, unitID)
		if err != nil {
			return err
		}
		if peek == nil {
			return domain.ErrNotFound
		}
		productID = peek.ProductID

		if _, err := productRepo.GetForUpdate(ctx, productID); err != nil {
			return err
		}
		unit, err := unitRepo.GetForUpdate(ctx, unitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return domain.ErrNotFound
		}
		switch unit.State {
		case entity.UnitStateSold:
			return domain.ErrAlreadySold
		case entity.UnitStateWithdrawn:
			return domain.ErrUnitWithdrawn
		}

		now := time.Now()
		if err := unitRepo.MarkSold(ctx, unitID, saleRef, now); err != nil {
			return err
		}
		mov := &entity.MovementEvent{
			ID:             uuid.New().String(),
			ProductID:      productID,
			Type:           entity.MovementTypeOUT,
			Quantity:       1,
			Reason:         saleReason(saleRef),
			RelatedUnitIDs: []string{unitID},
			CreatedAt:      now,
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		stockAfter, err = uc.refreshCachedStock(ctx, unitRepo, productRepo, productID)
		return err
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, MovementRecorded{
		EventID:    uuid.New().String(),
		ProductID:  productID,
		Type:       entity.MovementTypeOUT,
		Quantity:   1,
		Reason:     saleReason(saleRef),
		Stock:      stockAfter,
		OccurredAt: time.Now(),
	})
	return nil
}

// RemoveUnits retira las Quantity unidades disponibles más antiguas
// (available → withdrawn) y registra un solo evento OUT. La verificación de
// stock y la mutación ocurren bajo el bloqueo del producto: dos retiros
// concurrentes no pueden sobregirar el stock entre los dos.
func (uc *LedgerUseCase) RemoveUnits(ctx context.Context, input RemoveUnitsInput) error {
	if input.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if input.Quantity < 1 || input.Quantity > uc.maxBatch {
		return fmt.Errorf("cantidad %d fuera de [1, %d]: %w", input.Quantity, uc.maxBatch, domain.ErrInvalidInput)
	}

	var stockAfter int64
	err := uc.txRunner.Run(ctx, func(
		unitRepo repository.UnitRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SerialSequenceRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		// Las más antiguas primero (created_at, id), bloqueadas
		locked, err := unitRepo.LockOldestAvailable(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return err
		}
		if int64(len(locked)) < input.Quantity {
			return fmt.Errorf("no se pueden retirar %d unidades, solo %d disponibles: %w",
				input.Quantity, len(locked), domain.ErrInsufficientStock)
		}

		now := time.Now()
		ids := make([]string, 0, len(locked))
		for _, u := range locked {
			ids = append(ids, u.ID)
		}
		if err := unitRepo.MarkWithdrawn(ctx, ids, input.Reason, now); err != nil {
			return err
		}
		mov := &entity.MovementEvent{
			ID:             uuid.New().String(),
			ProductID:      input.ProductID,
			Type:           entity.MovementTypeOUT,
			Quantity:       input.Quantity,
			Reason:         input.Reason,
			RelatedUnitIDs: ids,
			CreatedAt:      now,
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		stockAfter, err = uc.refreshCachedStock(ctx, unitRepo, productRepo, input.ProductID)
		return err
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, MovementRecorded{
		EventID:    uuid.New().String(),
		ProductID:  input.ProductID,
		Type:       entity.MovementTypeOUT,
		Quantity:   input.Quantity,
		Reason:     input.Reason,
		Stock:      stockAfter,
		OccurredAt: time.Now(),
	})
	return nil
}

// ListUnitsByProduct devuelve el producto y todas sus unidades (cualquier
// estado) ordenadas por created_at ascendente con desempate por id, para la
// reconstrucción del historial.
func (uc *LedgerUseCase) ListUnitsByProduct(ctx context.Context, productID string) (*entity.Product, []*entity.Unit, error) {
	if productID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	list, err := uc.unitRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return product, list, nil
}

// refreshCachedStock recuenta las unidades disponibles dentro de la tx y
// persiste el resultado en el campo cacheado del producto.
func (uc *LedgerUseCase) refreshCachedStock(
	ctx context.Context,
	unitRepo repository.UnitRepository,
	productRepo repository.ProductRepository,
	productID string,
) (int64, error) {
	stock, err := unitRepo.CountByState(ctx, productID, entity.UnitStateAvailable)
	if err != nil {
		return 0, err
	}
	if err := productRepo.UpdateCachedStock(ctx, productID, stock); err != nil {
		return 0, err
	}
	return stock, nil
}

// publish envía el evento de integración tras el commit; los fallos solo se
// loguean porque el hecho contable ya quedó confirmado en la BD.
func (uc *LedgerUseCase) publish(ctx context.Context, ev MovementRecorded) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, ev.ProductID, ev); err != nil {
		log.Error().Err(err).
			Str("product_id", ev.ProductID).
			Str("type", ev.Type).
			Msg("publicar evento de movimiento")
	}
}

func saleReason(saleRef string) string {
	if saleRef == "" {
		return "venta"
	}
	return "venta " + saleRef
}
