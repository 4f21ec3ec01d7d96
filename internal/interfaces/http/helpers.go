package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
)

// respondError mapea los errores de dominio a códigos HTTP y códigos estables
// que la capa de presentación muestra tal cual (p. ej. "no se pueden retirar 5
// unidades, solo 3 disponibles"). Los conflictos devuelven 409: el caller
// puede reintentar tras releer estado, reintentar a ciegas no cambia nada.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrProductInactive):
		status, code = fiber.StatusConflict, "PRODUCT_INACTIVE"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrAlreadySold):
		status, code = fiber.StatusConflict, "ALREADY_SOLD"
	case errors.Is(err, domain.ErrUnitWithdrawn):
		status, code = fiber.StatusConflict, "UNIT_WITHDRAWN"
	case errors.Is(err, domain.ErrSequenceExhausted):
		status, code = fiber.StatusConflict, "SEQUENCE_EXHAUSTED"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
