package controllers

import (
	"errors"
	"strconv"

	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

// ListCourses godoc
// @Summary List courses
// @Description Returns courses, optionally filtered by category, level and featured flag
// @Tags courses
// @Accept json
// @Produce json
// @Param category query string false "Category"
// @Param level query string false "Level"
// @Param featured query bool false "Featured only"
// @Success 200 {array} models.Course
// @Failure 500 {object} map[string]interface{}
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	query := cc.DB.Model(&models.Course{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if featured := c.Query("featured"); featured != "" {
		query = query.Where("featured = ?", featured == "true")
	}

	courses := []models.Course{}
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(courses)
}

// ListCategories returns all categories ordered for display. Registered
// before the /courses/:id route so the literal segment "categories" is not
// captured as a course id.
func (cc *CoursesController) ListCategories(c *fiber.Ctx) error {
	categories := []models.Category{}
	if err := cc.DB.Order("display_order ASC").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(categories)
}

// GetCourse godoc
// @Summary Get course details
// @Description Returns a course with its lessons in sequence order
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} map[string]interface{}
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	err = cc.DB.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Preload("Instructor").
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(course)
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates a course; the slug is derived from the title. Slug
// uniqueness is not checked up front, a collision surfaces as a 500.
// @Tags courses
// @Accept json
// @Produce json
// @Param course body models.Course true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} map[string]interface{}
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if course.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required field: title",
			"code":  "MISSING_FIELD",
		})
	}

	course.Slug = utils.Slugify(course.Title)
	if course.Status == "" {
		course.Status = "draft"
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		// No proactive slug-uniqueness check; a constraint violation lands
		// in the app error handler.
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(course)
}

type updateCourseInput struct {
	Title              *string   `json:"title"`
	Description        *string   `json:"description"`
	Category           *string   `json:"category"`
	Level              *string   `json:"level"`
	Status             *string   `json:"status"`
	Price              *float64  `json:"price"`
	Featured           *bool     `json:"featured"`
	Tags               *[]string `json:"tags"`
	Prerequisites      *[]string `json:"prerequisites"`
	LearningObjectives *[]string `json:"learning_objectives"`
}

// UpdateCourse godoc
// @Summary Update a course
// @Description Partial update; only supplied fields change
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body updateCourseInput true "Fields to update"
// @Success 200 {object} models.Course
// @Failure 404 {object} map[string]interface{}
// @Router /courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var input updateCourseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Category != nil {
		course.Category = *input.Category
	}
	if input.Level != nil {
		course.Level = *input.Level
	}
	if input.Status != nil {
		course.Status = *input.Status
	}
	if input.Price != nil {
		course.Price = *input.Price
	}
	if input.Featured != nil {
		course.Featured = *input.Featured
	}
	if input.Tags != nil {
		course.Tags = *input.Tags
	}
	if input.Prerequisites != nil {
		course.Prerequisites = *input.Prerequisites
	}
	if input.LearningObjectives != nil {
		course.LearningObjectives = *input.LearningObjectives
	}

	// Save refreshes updated_at.
	if err := cc.DB.Save(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update course",
		})
	}

	return c.JSON(course)
}

// AddLesson appends a lesson at the end of the course sequence.
func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var input struct {
		Title    string `json:"title"`
		Type     string `json:"type"`
		Content  string `json:"content"`
		VideoURL string `json:"video_url"`
		Free     bool   `json:"free"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var lessonCount int64
	cc.DB.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&lessonCount)

	lesson := models.Lesson{
		CourseID:      uint(courseID),
		Title:         input.Title,
		Slug:          utils.Slugify(input.Title),
		Type:          input.Type,
		Content:       input.Content,
		VideoURL:      input.VideoURL,
		SequenceOrder: int(lessonCount) + 1,
		Free:          input.Free,
	}

	if err := cc.DB.Create(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create lesson",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(lesson)
}

// GetCourseReviews returns all reviews for a course.
func (cc *CoursesController) GetCourseReviews(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	reviews := []models.Review{}
	if err := cc.DB.Where("course_id = ?", courseID).Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(reviews)
}

// AddCourseReview creates a review and recomputes the course rating and
// review count in the same transaction.
func (cc *CoursesController) AddCourseReview(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var input struct {
		UserID  uint   `json:"userId"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Rating < 1 || input.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rating must be between 1 and 5",
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	review := models.Review{
		UserID:   input.UserID,
		CourseID: uint(courseID),
		Rating:   input.Rating,
		Comment:  input.Comment,
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var avgRating float64
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0)").
			Where("course_id = ?", courseID).
			Scan(&avgRating).Error; err != nil {
			return err
		}

		var reviewCount int64
		if err := tx.Model(&models.Review{}).
			Where("course_id = ?", courseID).
			Count(&reviewCount).Error; err != nil {
			return err
		}

		return tx.Model(&models.Course{}).
			Where("id = ?", courseID).
			Updates(map[string]interface{}{
				"rating":       avgRating,
				"review_count": reviewCount,
			}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create review",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetCourseAnalytics returns a per-student progress rollup for a course.
func (cc *CoursesController) GetCourseAnalytics(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var enrollments []models.Enrollment
	if err := cc.DB.Where("course_id = ?", courseID).Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	students := []fiber.Map{}
	for _, enrollment := range enrollments {
		var user models.User
		if err := cc.DB.First(&user, enrollment.UserID).Error; err != nil {
			continue
		}

		students = append(students, fiber.Map{
			"user_id":       user.ID,
			"name":          user.Name,
			"progress":      enrollment.Progress,
			"enrolled_at":   enrollment.EnrolledAt,
			"completed_at":  enrollment.CompletedAt,
			"last_accessed": enrollment.LastAccessedAt,
		})
	}

	return c.JSON(fiber.Map{
		"analytics": students,
	})
}
