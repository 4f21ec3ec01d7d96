// Package timeline agrupa unidades por día calendario para la vista de
// historial que el cliente renderiza.
package timeline

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// DayBucket un día del historial de un producto. Date está truncado a
// medianoche en la zona horaria del negocio.
type DayBucket struct {
	Date      time.Time
	Units     []*entity.Unit
	Available int64
	Sold      int64
	Withdrawn int64
	// Synthetic marca el ancla del día de alta de un producto sin unidades;
	// no lleva unidades y jamás cuenta para el stock.
	Synthetic bool
}

// BuildTimelineUseCase arma el historial por día de un producto.
type BuildTimelineUseCase struct {
	unitRepo    repository.UnitRepository
	productRepo repository.ProductRepository
	loc         *time.Location // zona horaria del negocio, no UTC
}

// NewBuildTimelineUseCase construye el caso de uso. loc es la zona horaria del
// negocio; nil equivale a time.Local.
func NewBuildTimelineUseCase(
	unitRepo repository.UnitRepository,
	productRepo repository.ProductRepository,
	loc *time.Location,
) *BuildTimelineUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &BuildTimelineUseCase{unitRepo: unitRepo, productRepo: productRepo, loc: loc}
}

// BuildTimeline agrupa todas las unidades del producto por la fecha calendario
// (zona del negocio) de createdAt y devuelve los días en orden descendente.
// Un producto sin unidades devuelve un único bucket sintético en su fecha de
// alta: un borrador con stock cero igual tiene ancla en el historial.
func (uc *BuildTimelineUseCase) BuildTimeline(ctx context.Context, productID string) ([]DayBucket, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	units, err := uc.unitRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return []DayBucket{{Date: uc.dayOf(product.CreatedAt), Synthetic: true}}, nil
	}

	byDay := make(map[time.Time]*DayBucket)
	for _, u := range units {
		day := uc.dayOf(u.CreatedAt)
		b, ok := byDay[day]
		if !ok {
			b = &DayBucket{Date: day}
			byDay[day] = b
		}
		b.Units = append(b.Units, u)
		switch u.State {
		case entity.UnitStateAvailable:
			b.Available++
		case entity.UnitStateSold:
			b.Sold++
		case entity.UnitStateWithdrawn:
			b.Withdrawn++
		}
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	// Días más recientes primero
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.After(buckets[j].Date)
	})
	return buckets, nil
}

// dayOf trunca t a medianoche en la zona del negocio.
func (uc *BuildTimelineUseCase) dayOf(t time.Time) time.Time {
	local := t.In(uc.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, uc.loc)
}
