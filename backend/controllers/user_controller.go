package controllers

import (
	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile with enrollments
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	enrollments := []models.Enrollment{}
	uc.DB.Preload("Course").
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").
		Find(&enrollments)

	return c.JSON(fiber.Map{
		"id":          user.ID,
		"email":       user.Email,
		"name":        user.Name,
		"role":        user.Role,
		"avatar_url":  user.AvatarURL,
		"bio":         user.Bio,
		"created_at":  user.CreatedAt,
		"enrollments": enrollments,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates the authenticated user's profile data
// @Tags users
// @Accept json
// @Produce json
// @Param input body map[string]interface{} true "Profile update data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var input struct {
		Name        string `json:"name"`
		AvatarURL   string `json:"avatar_url"`
		Bio         string `json:"bio"`
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}

	if input.NewPassword != "" {
		if input.OldPassword == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Old password is required to set new password",
			})
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Old password is incorrect",
			})
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not hash password",
			})
		}
		user.PasswordHash = string(hashed)
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update profile",
		})
	}

	return c.JSON(fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.Role,
		"avatar_url": user.AvatarURL,
		"bio":        user.Bio,
	})
}
