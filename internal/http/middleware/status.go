package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"smartstudy/internal/apperror"
)

// responseStatus predicts the status the error handler will write for err.
// Middleware that observes the response runs before the handler turns err into a body.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperror.As(err).Status()
}
