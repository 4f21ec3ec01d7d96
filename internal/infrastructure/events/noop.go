package events

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
)

var _ units.EventPublisher = NoopPublisher{}

// NoopPublisher descarta los eventos; se usa cuando no hay broker configurado
// (KAFKA_BROKERS vacío) y en tests que no miran el stream.
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
