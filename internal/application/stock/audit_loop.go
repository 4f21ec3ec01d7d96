package stock

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const auditPageSize = 100

// StartAuditLoop lanza una goroutine que reconcilia periódicamente todos los
// productos. La corrección del libro no depende de este loop (las escrituras
// son transaccionales); solo adelanta la detección de drift. Respeta el
// contexto para el apagado ordenado.
func (uc *ReconcileUseCase) StartAuditLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("audit_loop: iniciado")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("audit_loop: apagando")
				return
			case <-ticker.C:
				uc.auditAll(ctx)
			}
		}
	}()
}

// auditAll recorre el catálogo por páginas y reconcilia cada producto. El
// drift ya queda logueado por Reconcile; aquí solo se cuenta.
func (uc *ReconcileUseCase) auditAll(ctx context.Context) {
	var checked, faults int
	for offset := 0; ; offset += auditPageSize {
		products, err := uc.productRepo.List(ctx, auditPageSize, offset)
		if err != nil {
			log.Error().Err(err).Msg("audit_loop: listar productos")
			return
		}
		if len(products) == 0 {
			break
		}
		for _, p := range products {
			ok, _, err := uc.Reconcile(ctx, p.ID)
			if err != nil {
				log.Error().Err(err).Str("product_id", p.ID).Msg("audit_loop: reconciliar")
				continue
			}
			checked++
			if !ok {
				faults++
			}
		}
		if len(products) < auditPageSize {
			break
		}
	}
	log.Info().Int("checked", checked).Int("faults", faults).Msg("audit_loop: pasada completa")
}
