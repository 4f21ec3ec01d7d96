package dto

import (
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// IssueUnitsRequest body para POST /api/units.
type IssueUnitsRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// UnitDTO representación HTTP de una unidad.
type UnitDTO struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	Serial      string     `json:"serial"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	SoldAt      *time.Time `json:"sold_at,omitempty"`
	SaleRef     string     `json:"sale_ref,omitempty"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`
}

// UnitFromEntity convierte la entidad al DTO de transporte.
func UnitFromEntity(u *entity.Unit) UnitDTO {
	return UnitDTO{
		ID:          u.ID,
		ProductID:   u.ProductID,
		Serial:      u.Serial,
		State:       u.State,
		CreatedAt:   u.CreatedAt,
		SoldAt:      u.SoldAt,
		SaleRef:     u.SaleRef,
		WithdrawnAt: u.WithdrawnAt,
	}
}

// IssueUnitsResponse respuesta de POST /api/units; el cliente imprime los
// seriales devueltos como etiquetas escaneables.
type IssueUnitsResponse struct {
	Units []UnitDTO `json:"units"`
	Count int       `json:"count"`
}

// MarkSoldRequest body para PUT /api/units/:id/sold.
type MarkSoldRequest struct {
	SaleRef string `json:"sale_ref"`
}

// RegisterMovementRequest body para POST /api/movements. Solo se acepta
// type=OUT: las entradas (IN) nacen siempre de POST /api/units para que cada
// evento IN tenga sus unidades serializadas.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// MovementDTO representación HTTP de un evento del libro.
type MovementDTO struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	Type           string    `json:"type"`
	Quantity       int64     `json:"quantity"`
	Reason         string    `json:"reason,omitempty"`
	RelatedUnitIDs []string  `json:"related_unit_ids,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MovementFromEntity convierte la entidad al DTO de transporte.
func MovementFromEntity(e *entity.MovementEvent) MovementDTO {
	return MovementDTO{
		ID:             e.ID,
		ProductID:      e.ProductID,
		Type:           e.Type,
		Quantity:       e.Quantity,
		Reason:         e.Reason,
		RelatedUnitIDs: e.RelatedUnitIDs,
		CreatedAt:      e.CreatedAt,
	}
}
