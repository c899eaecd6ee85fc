package controllers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"academy/backend/config"
	"academy/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEnrollmentsController(db *gorm.DB, cfg *config.Config) *EnrollmentsController {
	return &EnrollmentsController{DB: db, Cfg: cfg}
}

// Enroll godoc
// @Summary Enroll a user in a course
// @Description Creates an enrollment and increments the course enrollment count
// @Tags enrollments
// @Accept json
// @Produce json
// @Param input body map[string]interface{} true "userId and courseId"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /enrollments [post]
func (ec *EnrollmentsController) Enroll(c *fiber.Ctx) error {
	var input struct {
		UserID   uint `json:"userId"`
		CourseID uint `json:"courseId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.CourseID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required field: courseId",
			"code":  "MISSING_FIELD",
		})
	}

	var course models.Course
	if err := ec.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("Course %d not found", input.CourseID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// userId is deliberately not validated the way courseId is: an absent or
	// unknown user propagates as a raw error into the app error handler.
	var user models.User
	if err := ec.DB.First(&user, input.UserID).Error; err != nil {
		return err
	}

	var existing int64
	ec.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", input.UserID, input.CourseID).
		Count(&existing)
	if existing > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User is already enrolled in this course",
			"code":  "ALREADY_ENROLLED",
		})
	}

	now := time.Now()
	enrollment := models.Enrollment{
		UserID:         input.UserID,
		CourseID:       input.CourseID,
		EnrolledAt:     now,
		LastAccessedAt: now,
		Progress:       0,
	}

	err := ec.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Course{}).
			Where("id = ?", input.CourseID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + 1")).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"enrollmentId": enrollment.ID,
		"courseId":     input.CourseID,
		"userId":       input.UserID,
	})
}

// ListUserEnrollments godoc
// @Summary List a user's enrollments
// @Description Returns enrollments with course and instructor preloaded
// @Tags enrollments
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} models.Enrollment
// @Failure 500 {object} map[string]interface{}
// @Router /enrollments/user/{userId} [get]
func (ec *EnrollmentsController) ListUserEnrollments(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	enrollments := []models.Enrollment{}
	err = ec.DB.
		Preload("Course").
		Preload("Course.Instructor").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(enrollments)
}

// Unenroll godoc
// @Summary Delete an enrollment
// @Description Removes the enrollment and decrements the course enrollment
// count inside one transaction
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /enrollments/{id} [delete]
func (ec *EnrollmentsController) Unenroll(c *fiber.Ctx) error {
	enrollmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid enrollment ID",
		})
	}

	var enrollment models.Enrollment
	if err := ec.DB.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Enrollment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// The row is physically removed, not soft-deleted; unenroll is a terminal
	// removal rather than a state flag.
	err = ec.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Course{}).
			Where("id = ?", enrollment.CourseID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count - 1")).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"deletedId": enrollment.ID,
	})
}

// GetProgress godoc
// @Summary Get enrollment progress
// @Description Recomputes progress from lesson completion; the stored value
// is refreshed when it has drifted
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /enrollments/{id}/progress [get]
func (ec *EnrollmentsController) GetProgress(c *fiber.Ctx) error {
	enrollmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid enrollment ID",
		})
	}

	var enrollment models.Enrollment
	if err := ec.DB.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Enrollment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	completed, total, progress, err := ec.computeProgress(&enrollment)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not compute progress",
		})
	}

	return c.JSON(fiber.Map{
		"enrollmentId":     enrollment.ID,
		"progress":         progress,
		"completedLessons": completed,
		"totalLessons":     total,
		"completedAt":      enrollment.CompletedAt,
	})
}

// RecordLessonProgress godoc
// @Summary Record lesson progress
// @Description Upserts per-lesson progress (time accumulates, resume position
// overwrites) and refreshes the enrollment progress
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param lessonId path int true "Lesson ID"
// @Param input body map[string]interface{} true "timeSpent, lastPosition, completed"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /enrollments/{id}/lessons/{lessonId}/progress [post]
func (ec *EnrollmentsController) RecordLessonProgress(c *fiber.Ctx) error {
	enrollmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid enrollment ID",
		})
	}
	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var input struct {
		TimeSpent    int  `json:"timeSpent"`
		LastPosition int  `json:"lastPosition"`
		Completed    bool `json:"completed"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var enrollment models.Enrollment
	if err := ec.DB.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Enrollment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var lesson models.Lesson
	if err := ec.DB.Where("id = ? AND course_id = ?", lessonID, enrollment.CourseID).
		First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Created on first interaction, updated afterwards.
	var record models.LessonProgress
	err = ec.DB.Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&record).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		record = models.LessonProgress{
			UserID:       enrollment.UserID,
			LessonID:     uint(lessonID),
			EnrollmentID: uint(enrollmentID),
		}
	}

	record.TimeSpent += input.TimeSpent
	record.LastPosition = input.LastPosition
	if input.Completed && record.CompletedAt == nil {
		now := time.Now()
		record.CompletedAt = &now
	}

	if err := ec.DB.Save(&record).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save progress",
		})
	}

	enrollment.LastAccessedAt = time.Now()
	if err := ec.DB.Save(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save enrollment",
		})
	}

	_, _, progress, err := ec.computeProgress(&enrollment)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not compute progress",
		})
	}

	return c.JSON(fiber.Map{
		"lessonProgress": record,
		"progress":       progress,
	})
}

// IssueCertificate godoc
// @Summary Issue a completion certificate
// @Description Issues a certificate for a completed enrollment; idempotent
// per enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 201 {object} models.Certificate
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /enrollments/{id}/certificate [post]
func (ec *EnrollmentsController) IssueCertificate(c *fiber.Ctx) error {
	enrollmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid enrollment ID",
		})
	}

	var enrollment models.Enrollment
	if err := ec.DB.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Enrollment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if enrollment.Progress < 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Enrollment is not completed",
			"code":  "NOT_COMPLETED",
		})
	}

	var existing models.Certificate
	if err := ec.DB.Where("enrollment_id = ?", enrollmentID).First(&existing).Error; err == nil {
		return c.JSON(existing)
	}

	serial := uuid.NewString()
	certificate := models.Certificate{
		UserID:         enrollment.UserID,
		CourseID:       enrollment.CourseID,
		EnrollmentID:   enrollment.ID,
		SerialNumber:   serial,
		CertificateURL: fmt.Sprintf("/certificates/%s.pdf", serial),
		IssuedAt:       time.Now(),
	}

	if err := ec.DB.Create(&certificate).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create certificate",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(certificate)
}

// computeProgress derives the completion percentage from lesson progress and
// writes it back to the enrollment when the stored value has drifted.
func (ec *EnrollmentsController) computeProgress(enrollment *models.Enrollment) (completed, total int64, progress int, err error) {
	if err = ec.DB.Model(&models.Lesson{}).
		Where("course_id = ?", enrollment.CourseID).
		Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}

	if err = ec.DB.Model(&models.LessonProgress{}).
		Where("enrollment_id = ? AND completed_at IS NOT NULL", enrollment.ID).
		Count(&completed).Error; err != nil {
		return 0, 0, 0, err
	}

	if total > 0 {
		progress = int(math.Round(float64(completed) / float64(total) * 100))
	}

	if progress != enrollment.Progress {
		enrollment.Progress = progress
		if progress == 100 && enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
		if err = ec.DB.Save(enrollment).Error; err != nil {
			return 0, 0, 0, err
		}
	}

	return completed, total, progress, nil
}
