package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/units"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// MovementsHandler maneja el libro de movimientos: retiros manuales (OUT) y
// la consulta de auditoría.
type MovementsHandler struct {
	ledger *units.LedgerUseCase
	query  *units.MovementQueryUseCase
}

// NewMovementsHandler construye el handler.
func NewMovementsHandler(ledger *units.LedgerUseCase, query *units.MovementQueryUseCase) *MovementsHandler {
	return &MovementsHandler{ledger: ledger, query: query}
}

// Register godoc
// @Summary      Registrar un retiro manual de stock (OUT)
// @Description  Solo acepta type=OUT. Las entradas nacen de POST /api/units
//               para que cada evento IN tenga sus unidades serializadas.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type=OUT, quantity, reason"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementsHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Type != entity.MovementTypeOUT {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "type debe ser OUT; las entradas se emiten con POST /api/units",
		})
	}
	err := h.ledger.RemoveUnits(c.Context(), units.RemoveUnitsInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "retiro registrado"})
}

// List godoc
// @Summary      Listar movimientos de un producto
// @Tags         movements
// @Produce      json
// @Param        product_id  query  string  true   "ID del producto"
// @Param        from        query  string  false  "RFC 3339"
// @Param        to          query  string  false  "RFC 3339"
// @Success      200  {array}   dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementsHandler) List(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC 3339)"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC 3339)"})
	}

	events, err := h.query.ListByProduct(c.Context(), productID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(events))
	for _, e := range events {
		out = append(out, dto.MovementFromEntity(e))
	}
	return c.JSON(fiber.Map{"movements": out, "total": len(out)})
}

func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
