package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo visto por el libro de unidades.
// El catálogo es dueño del resto de los campos; este núcleo solo lee identidad
// y actividad, y escribe CurrentStock (campo derivado, cacheado).
type Product struct {
	ID           string
	Name         string
	Price        decimal.Decimal // precio de venta (solo lectura para el libro)
	Active       bool
	CurrentStock int64 // derivado de unidades disponibles; se refresca dentro de la misma tx que lo altera
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
