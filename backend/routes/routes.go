package routes

import (
	"academy/backend/config"
	"academy/backend/controllers"
	"academy/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Courses routes. /categories must be registered before /:id so the
	// literal segment is not captured as a course id.
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses")
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/categories", coursesController.ListCategories)
	courses.Get("/:id", coursesController.GetCourse)
	courses.Post("/", coursesController.CreateCourse)
	courses.Put("/:id", coursesController.UpdateCourse)
	courses.Post("/:id/lessons", coursesController.AddLesson)
	courses.Get("/:id/reviews", coursesController.GetCourseReviews)
	courses.Post("/:id/reviews", coursesController.AddCourseReview)
	courses.Get("/:id/analytics", adminMiddleware, coursesController.GetCourseAnalytics)

	// Search routes
	searchController := controllers.NewSearchController(db, cfg)
	app.Get("/api/search/courses", searchController.SearchCourses)

	// Enrollment routes
	enrollmentsController := controllers.NewEnrollmentsController(db, cfg)
	enrollments := app.Group("/api/enrollments")
	enrollments.Post("/", enrollmentsController.Enroll)
	enrollments.Get("/user/:userId", enrollmentsController.ListUserEnrollments)
	enrollments.Delete("/:id", enrollmentsController.Unenroll)
	enrollments.Get("/:id/progress", enrollmentsController.GetProgress)
	enrollments.Post("/:id/lessons/:lessonId/progress", enrollmentsController.RecordLessonProgress)
	enrollments.Post("/:id/certificate", enrollmentsController.IssueCertificate)
}
