package controllers

import (
	"errors"

	"project/backend/config"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentsController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Enrollments *services.EnrollmentService
}

func NewEnrollmentsController(db *gorm.DB, cfg *config.Config) *EnrollmentsController {
	return &EnrollmentsController{
		DB:          db,
		Cfg:         cfg,
		Enrollments: services.NewEnrollmentService(db),
	}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Enrolls the authenticated user; a second attempt returns 409
// @Tags enrollments
// @Produce json
// @Param courseSlug path string true "Course slug"
// @Success 201 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{courseSlug}/enroll [post]
func (ec *EnrollmentsController) Enroll(c *fiber.Ctx) error {
	var course models.Course
	err := ec.DB.Select("id", "slug").
		Where("slug = ?", c.Params("courseSlug")).
		First(&course).Error
	if err != nil {
		return utils.NotFound(c, "Course not found")
	}

	enrollment, err := ec.Enrollments.Enroll(middleware.UserID(c), course.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return utils.ErrorWithRedirect(c, fiber.StatusConflict,
				"You are already enrolled in this course.", "/courses/"+course.Slug)
		case errors.Is(err, services.ErrNotFound):
			return utils.NotFound(c, "Course not found")
		default:
			return utils.InternalServerError(c, "Could not enroll")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "Successfully enrolled! Start learning now.",
		"enrollment": enrollment,
		"redirect":   "/courses/" + course.Slug + "/lecture",
	})
}

// GetMyCourses returns the user's enrolled courses with completion
// figures for the progress bars.
func (ec *EnrollmentsController) GetMyCourses(c *fiber.Ctx) error {
	summaries, err := ec.Enrollments.EnrolledCourses(middleware.UserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch enrolled courses")
	}
	return c.JSON(fiber.Map{"courses": summaries})
}

// GetRecentEnrollments returns the five newest enrollments for the
// sidebar.
func (ec *EnrollmentsController) GetRecentEnrollments(c *fiber.Ctx) error {
	enrollments, err := ec.Enrollments.RecentEnrollments(middleware.UserID(c), 5)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch enrollments")
	}
	return c.JSON(fiber.Map{"enrollments": enrollments})
}
