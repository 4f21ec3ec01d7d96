package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/catalog"
	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/stock"
	"github.com/jhoicas/Trazabilidad-api/internal/application/timeline"
	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
)

// ProductsHandler maneja el catálogo mínimo y las vistas derivadas del libro:
// unidades, historial por día, stock y reconciliación.
type ProductsHandler struct {
	products *catalog.ProductUseCase
	ledger   *units.LedgerUseCase
	stock    *stock.ReconcileUseCase
	timeline *timeline.BuildTimelineUseCase
}

// NewProductsHandler construye el handler.
func NewProductsHandler(
	products *catalog.ProductUseCase,
	ledger *units.LedgerUseCase,
	stockUC *stock.ReconcileUseCase,
	timelineUC *timeline.BuildTimelineUseCase,
) *ProductsHandler {
	return &ProductsHandler{products: products, ledger: ledger, stock: stockUC, timeline: timelineUC}
}

// Create godoc
// @Summary      Crear un producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "name, price"
// @Success      201   {object}  dto.ProductDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.products.Create(c.Context(), in.Name, in.Price)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductFromEntity(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Success      200  {array}  dto.ProductDTO
// @Router       /api/products [get]
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.products.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProductFromEntity(p))
	}
	return c.JSON(fiber.Map{"products": out, "total": len(out)})
}

// GetByID godoc
// @Summary      Obtener un producto
// @Tags         products
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductsHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.products.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductFromEntity(p))
}

// GetUnits godoc
// @Summary      Listar las unidades de un producto (todas, cualquier estado)
// @Tags         products
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductUnitsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/units [get]
func (h *ProductsHandler) GetUnits(c *fiber.Ctx) error {
	product, list, err := h.ledger.ListUnitsByProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ProductUnitsResponse{Product: dto.ProductFromEntity(product), Units: make([]dto.UnitDTO, 0, len(list))}
	for _, u := range list {
		out.Units = append(out.Units, dto.UnitFromEntity(u))
	}
	return c.JSON(out)
}

// GetTimeline godoc
// @Summary      Historial por día de un producto, del más reciente al más antiguo
// @Tags         products
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}   dto.TimelineDayDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/timeline [get]
func (h *ProductsHandler) GetTimeline(c *fiber.Ctx) error {
	buckets, err := h.timeline.BuildTimeline(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.TimelineDayDTO, 0, len(buckets))
	for _, b := range buckets {
		day := dto.TimelineDayDTO{
			Date:      b.Date.Format("2006-01-02"),
			Units:     make([]dto.UnitDTO, 0, len(b.Units)),
			Available: b.Available,
			Sold:      b.Sold,
			Withdrawn: b.Withdrawn,
			Synthetic: b.Synthetic,
		}
		for _, u := range b.Units {
			day.Units = append(day.Units, dto.UnitFromEntity(u))
		}
		out = append(out, day)
	}
	return c.JSON(fiber.Map{"timeline": out})
}

// GetStock godoc
// @Summary      Stock actual del producto (conteo de unidades disponibles)
// @Tags         products
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *ProductsHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Params("id")
	n, err := h.stock.CurrentStock(c.Context(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: productID, Stock: n})
}

// Reconcile godoc
// @Summary      Reconciliar el libro contra las unidades del producto
// @Description  Devuelve la diferencia con signo (libro − unidades). Un drift
//               distinto de cero es una falla de integridad que ya quedó
//               logueada; nunca se corrige automáticamente.
// @Tags         products
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/reconcile [post]
func (h *ProductsHandler) Reconcile(c *fiber.Ctx) error {
	productID := c.Params("id")
	ok, drift, err := h.stock.Reconcile(c.Context(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{ProductID: productID, OK: ok, Drift: drift})
}
