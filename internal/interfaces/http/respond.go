package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// respond escribe resp con status o, si err != nil, el error con resp como estado adjunto.
func respond[T any](c *fiber.Ctx, log zerolog.Logger, status int, resp *T, err error) error {
	if err != nil {
		var state interface{}
		if resp != nil {
			state = resp
		}
		return writeError(c, log, err, state)
	}
	return c.Status(status).JSON(resp)
}
