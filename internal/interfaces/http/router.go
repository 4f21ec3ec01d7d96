package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/Trazabilidad-api/internal/application/stock"
	"github.com/jhoicas/Trazabilidad-api/internal/application/timeline"
	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *units.LedgerUseCase
	MovementQuery *units.MovementQueryUseCase
	Stock         *stock.ReconcileUseCase
	Timeline      *timeline.BuildTimelineUseCase
	Products      *catalog.ProductUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Unidades serializadas
	unitsGroup := api.Group("/units")
	unitsHandler := NewUnitsHandler(deps.Ledger)
	unitsGroup.Post("/", unitsHandler.IssueBatch)
	unitsGroup.Put("/:id/sold", unitsHandler.MarkSold)

	// Libro de movimientos
	movements := api.Group("/movements")
	movementsHandler := NewMovementsHandler(deps.Ledger, deps.MovementQuery)
	movements.Post("/", movementsHandler.Register)
	movements.Get("/", movementsHandler.List)

	// Catálogo mínimo y vistas derivadas
	products := api.Group("/products")
	productsHandler := NewProductsHandler(deps.Products, deps.Ledger, deps.Stock, deps.Timeline)
	products.Post("/", productsHandler.Create)
	products.Get("/", productsHandler.List)
	products.Get("/:id", productsHandler.GetByID)
	products.Get("/:id/units", productsHandler.GetUnits)
	products.Get("/:id/timeline", productsHandler.GetTimeline)
	products.Get("/:id/stock", productsHandler.GetStock)
	products.Post("/:id/reconcile", productsHandler.Reconcile)
}
