package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Logistica-api/internal/application/draft"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/rs/zerolog"
)

// writeError traduce errores de aplicación a HTTP. state es el estado ya persistido
// (puede ser nil) y se adjunta en los 422.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error, state interface{}) error {
	var ve *draft.ValidationError
	if errors.As(err, &ve) {
		body := dto.ValidationErrorResponse{Code: "VALIDATION", Message: ve.Error(), Fields: ve.Fields}
		if state != nil {
			body.State = state
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrUploadInProgress):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "UPLOAD_IN_PROGRESS", Message: err.Error()})
	case errors.Is(err, domain.ErrNotEditing):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_EDITING", Message: err.Error()})
	case errors.Is(err, domain.ErrStepOutOfRange):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "STEP_OUT_OF_RANGE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUpstream):
		msg := "el servicio de envíos no respondió correctamente"
		var re *draft.RemoteError
		if errors.As(err, &re) && re.Message != "" {
			msg = re.Message
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM_ERROR", Message: msg})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
