package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
)

var validate = validator.New()

// bindJSON parsea el cuerpo y corre las reglas `validate`. Si falla ya escribió la respuesta
// y devuelve ok=false; el handler debe retornar el error devuelto.
func bindJSON(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Code:    "INVALID_BODY",
			Message: "cuerpo con campos inválidos",
			Fields:  validationErrorsToMap(err),
		})
	}
	return true, nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			ns := fe.Namespace()
			if i := strings.Index(ns, "."); i >= 0 {
				ns = ns[i+1:]
			}
			out[ns] = fe.Tag()
		}
		return out
	}
	out["body"] = err.Error()
	return out
}
