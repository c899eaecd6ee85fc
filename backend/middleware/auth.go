package middleware

import (
	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserIDKey is the locals key under which AuthMiddleware stores the
// authenticated user's id. Handlers read it instead of re-parsing the token.
const UserIDKey = "user_id"

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

func AdminMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil || user.Role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden - Admin access required",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// CurrentUserID returns the user id stored by AuthMiddleware, or 0 when the
// request was not authenticated.
func CurrentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(UserIDKey).(uint); ok {
		return id
	}
	return 0
}
