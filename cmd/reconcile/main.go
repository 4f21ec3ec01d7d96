// Auditoría bajo demanda: reconcilia el libro contra las unidades de todos
// los productos y sale con código 1 si hay drift en alguno.
package main

import (
	"context"
	"os"

	"github.com/jhoicas/Trazabilidad-api/internal/application/stock"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

const pageSize = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	stockUC := stock.NewReconcileUseCase(unitRepo, movRepo, productRepo)

	var checked, faults int
	for offset := 0; ; offset += pageSize {
		products, err := productRepo.List(ctx, pageSize, offset)
		if err != nil {
			log.Fatal().Err(err).Msg("listar productos")
		}
		if len(products) == 0 {
			break
		}
		for _, p := range products {
			ok, drift, err := stockUC.Reconcile(ctx, p.ID)
			if err != nil {
				log.Error().Err(err).Str("product_id", p.ID).Msg("reconciliar")
				continue
			}
			checked++
			if !ok {
				faults++
				log.Error().Str("product_id", p.ID).Int64("drift", drift).Msg("drift detectado")
			}
		}
		if len(products) < pageSize {
			break
		}
	}

	log.Info().Int("checked", checked).Int("faults", faults).Msg("auditoría completa")
	if faults > 0 {
		os.Exit(1)
	}
}
