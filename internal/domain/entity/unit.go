package entity

import "time"

// Estados de una unidad. La transición es monótona: available → sold o
// available → withdrawn, exactamente una vez; nunca se revierte ni se borra.
const (
	UnitStateAvailable = "available"
	UnitStateSold      = "sold"
	UnitStateWithdrawn = "withdrawn" // retiro manual de stock, distinto de una venta
)

// Unit representa una unidad física serializada de un producto.
// El serial es único en todo el espacio de unidades (no solo por producto)
// porque se imprime en etiquetas escaneables y no puede renegociarse.
type Unit struct {
	ID             string
	ProductID      string
	Serial         string // 12 caracteres fijos, alfabeto sin ambiguos; inmutable una vez asignado
	State          string
	CreatedAt      time.Time
	SoldAt         *time.Time // se asigna exactamente una vez, en available → sold
	SaleRef        string
	WithdrawnAt    *time.Time
	WithdrawReason string
}

// IsAvailable indica si la unidad cuenta para el stock actual.
func (u *Unit) IsAvailable() bool {
	return u.State == UnitStateAvailable
}
