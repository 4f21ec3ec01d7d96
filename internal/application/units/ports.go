package units

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la reserva de seriales, las
// filas de unidades, el evento del libro y el refresco del stock cacheado
// se confirman o se descartan como un todo: un caller que aborta antes del
// commit no deja rastro alguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		unitRepo repository.UnitRepository,
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		seqRepo repository.SerialSequenceRepository,
	) error) error
}

// EventPublisher publica eventos de integración tras el commit. Un fallo de
// publicación nunca hace fallar la operación que lo originó.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
