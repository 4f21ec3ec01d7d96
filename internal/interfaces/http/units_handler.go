package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
)

// UnitsHandler maneja las peticiones HTTP de unidades serializadas.
type UnitsHandler struct {
	ledger *units.LedgerUseCase
}

// NewUnitsHandler construye el handler.
func NewUnitsHandler(ledger *units.LedgerUseCase) *UnitsHandler {
	return &UnitsHandler{ledger: ledger}
}

// IssueBatch godoc
// @Summary      Emitir un lote de unidades serializadas
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueUnitsRequest  true  "product_id, quantity, reason"
// @Success      201   {object}  dto.IssueUnitsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/units [post]
func (h *UnitsHandler) IssueBatch(c *fiber.Ctx) error {
	var in dto.IssueUnitsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	issued, err := h.ledger.IssueBatch(c.Context(), units.IssueBatchInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := dto.IssueUnitsResponse{Units: make([]dto.UnitDTO, 0, len(issued)), Count: len(issued)}
	for _, u := range issued {
		out.Units = append(out.Units, dto.UnitFromEntity(u))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MarkSold godoc
// @Summary      Marcar una unidad como vendida
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la unidad"
// @Param        body  body  dto.MarkSoldRequest  true  "sale_ref"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/units/{id}/sold [put]
func (h *UnitsHandler) MarkSold(c *fiber.Ctx) error {
	unitID := c.Params("id")
	var in dto.MarkSoldRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.ledger.MarkSold(c.Context(), unitID, in.SaleRef); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "unidad vendida"})
}
