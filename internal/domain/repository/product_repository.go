package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia del catálogo que el libro
// de unidades necesita. GetForUpdate es el ancla de serialización por producto:
// toda operación mutante lo toma primero, de modo que productos distintos
// avanzan en paralelo y el mismo producto se serializa.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// UpdateCachedStock refresca el campo derivado current_stock. Solo debe
	// invocarse dentro de la misma transacción que alteró las unidades.
	UpdateCachedStock(ctx context.Context, productID string, stock int64) error
}
