package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/vanstock-api/internal/application/dto"
	"github.com/jhoicas/vanstock-api/internal/domain"
)

// retryAfterSeconds sugerencia al cliente cuando la transacción perdió por contención.
const retryAfterSeconds = "1"

// statusFor traduce el tipo de error de dominio a código HTTP.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrValidation:
		return fiber.StatusBadRequest
	case domain.ErrUnauthorized:
		return fiber.StatusUnauthorized
	case domain.ErrForbidden:
		return fiber.StatusForbidden
	case domain.ErrNotFound:
		return fiber.StatusNotFound
	case domain.ErrConflict:
		return fiber.StatusConflict
	case domain.ErrContention:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// writeError responde err como dto.ErrorResponse con el código estable del modo de falla.
// Los errores fuera de la taxonomía se registran y se responden sin detalle.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(status).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: domain.CodeOf(err), Message: err.Error()})
}

// ErrorHandler manejador de errores de Fiber para lo que escape de los handlers (404 de ruta, panics recuperados).
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
