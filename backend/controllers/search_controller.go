package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"academy/backend/config"
	"academy/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SearchController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSearchController(db *gorm.DB, cfg *config.Config) *SearchController {
	return &SearchController{DB: db, Cfg: cfg}
}

// courseFilters is the parameter bag for course search. Every field is
// optional; the zero value means "no constraint".
type courseFilters struct {
	Query      string
	Category   string
	Level      string
	MinRating  float64
	HasRating  bool
	MaxPrice   float64
	HasPrice   bool
	Instructor string
	Tags       []string
}

// SearchCourses godoc
// @Summary Free-text course search
// @Description Searches courses by title, description and tags with optional
// filters. The search parameter key is "q"; a request without it is rejected
// with a message listing the parameter keys that were actually received.
// @Tags search
// @Accept json
// @Produce json
// @Param q query string true "Search text (may be empty to match all)"
// @Param category query string false "Category"
// @Param level query string false "Level"
// @Param minRating query number false "Minimum rating"
// @Param maxPrice query number false "Maximum price"
// @Param instructor query string false "Instructor name substring"
// @Param tags query string false "Comma-separated tags, all must match"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /search/courses [get]
func (sc *SearchController) SearchCourses(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()

	// An empty q matches everything; an absent q is a contract violation.
	// Clients that send a different key (the classic "query" instead of "q")
	// get told exactly which keys arrived.
	if !args.Has("q") {
		received := []string{}
		args.VisitAll(func(key, _ []byte) {
			received = append(received, string(key))
		})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Missing required parameter: q",
			"message": fmt.Sprintf("Received parameters: [%s]", strings.Join(received, ", ")),
			"code":    "MISSING_PARAMETER",
		})
	}

	filters := courseFilters{
		Query:      c.Query("q"),
		Category:   c.Query("category"),
		Level:      c.Query("level"),
		Instructor: c.Query("instructor"),
	}
	if raw := c.Query("minRating"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.MinRating = v
			filters.HasRating = true
		}
	}
	if raw := c.Query("maxPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.MaxPrice = v
			filters.HasPrice = true
		}
	}
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.Tags = append(filters.Tags, tag)
			}
		}
	}

	results := []models.Course{}
	if err := sc.buildCourseQuery(filters).Find(&results).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
		"total":   len(results),
		"query":   filters.Query,
		"filters": filters.applied(),
	})
}

// buildCourseQuery composes a single course query from the filter bag.
//
// With a free-text query, results rank in three tiers: title prefix match,
// title substring match, then everything else, ties broken by rating. Without
// one, featured courses come first, then rating, then recency.
func (sc *SearchController) buildCourseQuery(filters courseFilters) *gorm.DB {
	query := sc.DB.Model(&models.Course{}).Select("courses.*")

	if filters.Category != "" {
		query = query.Where("courses.category = ?", filters.Category)
	}
	if filters.Level != "" {
		query = query.Where("courses.level = ?", filters.Level)
	}
	if filters.HasRating {
		query = query.Where("courses.rating >= ?", filters.MinRating)
	}
	if filters.HasPrice {
		query = query.Where("courses.price <= ?", filters.MaxPrice)
	}
	if filters.Instructor != "" {
		query = query.
			Joins("JOIN users ON users.id = courses.instructor_id").
			Where("LOWER(users.name) LIKE ?", "%"+strings.ToLower(filters.Instructor)+"%")
	}
	// Set containment: the course must carry every requested tag. Tags are
	// stored as serialized JSON, so each tag matches as a quoted substring.
	for _, tag := range filters.Tags {
		query = query.Where("LOWER(courses.tags) LIKE ?", `%"`+strings.ToLower(tag)+`"%`)
	}

	if filters.Query == "" {
		return query.Order("courses.featured DESC, courses.rating DESC, courses.created_at DESC")
	}

	contains := "%" + strings.ToLower(filters.Query) + "%"
	prefix := strings.ToLower(filters.Query) + "%"

	query = query.Where(
		"LOWER(courses.title) LIKE ? OR LOWER(courses.description) LIKE ? OR LOWER(courses.tags) LIKE ?",
		contains, contains, contains,
	)

	return query.Clauses(clause.OrderBy{
		Expression: clause.Expr{
			SQL: "CASE WHEN LOWER(courses.title) LIKE ? THEN 0 " +
				"WHEN LOWER(courses.title) LIKE ? THEN 1 ELSE 2 END, courses.rating DESC",
			Vars:               []interface{}{prefix, contains},
			WithoutParentheses: true,
		},
	})
}

// applied echoes the filters that were actually supplied.
func (f courseFilters) applied() fiber.Map {
	applied := fiber.Map{}
	if f.Category != "" {
		applied["category"] = f.Category
	}
	if f.Level != "" {
		applied["level"] = f.Level
	}
	if f.HasRating {
		applied["minRating"] = f.MinRating
	}
	if f.HasPrice {
		applied["maxPrice"] = f.MaxPrice
	}
	if f.Instructor != "" {
		applied["instructor"] = f.Instructor
	}
	if len(f.Tags) > 0 {
		applied["tags"] = f.Tags
	}
	return applied
}
