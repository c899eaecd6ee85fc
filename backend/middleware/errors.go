package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the app-level error handler. Handlers that validate
// proactively respond with structured 4xx bodies themselves; anything they
// let propagate (DB failures, constraint violations, fields never validated)
// lands here and becomes a uniform 500 body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
		"code":    "INTERNAL_ERROR",
		"path":    c.Path(),
	})
}
