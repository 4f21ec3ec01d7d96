package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ProductDTO representación HTTP de un producto.
type ProductDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Active       bool            `json:"active"`
	CurrentStock int64           `json:"current_stock"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ProductFromEntity convierte la entidad al DTO de transporte.
func ProductFromEntity(p *entity.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Active:       p.Active,
		CurrentStock: p.CurrentStock,
		CreatedAt:    p.CreatedAt,
	}
}

// ProductUnitsResponse respuesta de GET /api/products/:id/units.
type ProductUnitsResponse struct {
	Product ProductDTO `json:"product"`
	Units   []UnitDTO  `json:"units"`
}

// TimelineDayDTO un día del historial del producto, del más reciente al más
// antiguo. Los contadores parten las unidades del día por estado para que el
// cliente pinte los badges de disponibilidad sin recontar.
type TimelineDayDTO struct {
	Date      string    `json:"date"` // YYYY-MM-DD en la zona horaria del negocio
	Units     []UnitDTO `json:"units"`
	Available int64     `json:"available"`
	Sold      int64     `json:"sold"`
	Withdrawn int64     `json:"withdrawn"`
	Synthetic bool      `json:"synthetic,omitempty"` // ancla del día de alta del producto, sin unidades
}

// StockResponse respuesta de GET /api/products/:id/stock.
type StockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int64  `json:"stock"`
}

// ReconcileResponse respuesta de POST /api/products/:id/reconcile. Drift es la
// diferencia con signo entre la suma del libro y el conteo de unidades
// disponibles; cualquier valor distinto de cero es una falla de integridad.
type ReconcileResponse struct {
	ProductID string `json:"product_id"`
	OK        bool   `json:"ok"`
	Drift     int64  `json:"drift"`
}
