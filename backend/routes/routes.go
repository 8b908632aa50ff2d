package routes

import (
	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Topic menu, cached: it is rendered on every page of the client
	topicsController := controllers.NewTopicsController(db, cfg)
	app.Get("/api/topics", cache.New(cache.Config{
		Expiration: cfg.MenuCacheTTL,
	}), topicsController.GetMenuTopics)

	// Catalog routes (public; detail personalizes when a token is present)
	coursesController := controllers.NewCoursesController(db, cfg)
	app.Get("/api/courses", coursesController.GetCourses)
	app.Get("/api/courses/featured", coursesController.GetFeaturedCourses)
	app.Get("/api/courses/search", coursesController.SearchCourses)
	app.Get("/api/topics/:topicSlug/courses", coursesController.GetTopicCourses)
	app.Get("/api/courses/:courseSlug", optionalAuth, coursesController.GetCourseDetail)

	// Enrollment routes
	enrollmentsController := controllers.NewEnrollmentsController(db, cfg)
	app.Post("/api/courses/:courseSlug/enroll", authMiddleware, enrollmentsController.Enroll)
	app.Get("/api/my/courses", authMiddleware, enrollmentsController.GetMyCourses)
	app.Get("/api/my/enrollments/recent", authMiddleware, enrollmentsController.GetRecentEnrollments)

	// Lecture routes
	lecturesController := controllers.NewLecturesController(db, cfg)
	app.Get("/api/courses/:courseSlug/lecture", authMiddleware, lecturesController.GetFirstLecture)
	app.Get("/api/courses/:courseSlug/lectures/:lectureSlug", authMiddleware, lecturesController.GetLecture)

	// Review routes
	reviewsController := controllers.NewReviewsController(db, cfg)
	app.Get("/api/courses/:courseSlug/reviews", reviewsController.GetCourseReviews)
	app.Post("/api/courses/:courseSlug/reviews", authMiddleware, reviewsController.SubmitReview)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Admin routes
	adminTopics := app.Group("/api/admin/topics", adminMiddleware)
	adminTopics.Post("/", topicsController.CreateTopic)
	adminTopics.Put("/:id", topicsController.UpdateTopic)

	adminCourses := app.Group("/api/admin/courses", adminMiddleware)
	adminCourses.Post("/", coursesController.CreateCourse)
	adminCourses.Put("/:id", coursesController.UpdateCourse)
	adminCourses.Delete("/:id", coursesController.DeleteCourse)
	adminCourses.Post("/:id/lectures", lecturesController.AddLecture)
	adminCourses.Put("/:id/lectures/:lectureId", lecturesController.UpdateLecture)
	adminCourses.Delete("/:id/lectures/:lectureId", lecturesController.DeleteLecture)
}
