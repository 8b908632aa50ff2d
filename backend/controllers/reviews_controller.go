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

type ReviewsController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Enrollments *services.EnrollmentService
	Reviews     *services.ReviewService
}

func NewReviewsController(db *gorm.DB, cfg *config.Config) *ReviewsController {
	return &ReviewsController{
		DB:          db,
		Cfg:         cfg,
		Enrollments: services.NewEnrollmentService(db),
		Reviews:     services.NewReviewService(db),
	}
}

type SubmitReviewRequest struct {
	// Out-of-range or missing ratings are stored as 5, not rejected; the
	// response echoes the stored value. Number or string accepted.
	Rating  interface{} `json:"rating"`
	Comment string      `json:"comment" validate:"max=2000"`
}

// SubmitReview creates or updates the caller's review for the course.
// Requires an enrollment; unenrolled users are redirected to the course
// detail page.
func (rc *ReviewsController) SubmitReview(c *fiber.Ctx) error {
	var course models.Course
	err := rc.DB.Select("id", "slug").
		Where("slug = ?", c.Params("courseSlug")).
		First(&course).Error
	if err != nil {
		return utils.NotFound(c, "Course not found")
	}

	var input SubmitReviewRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	ticket, err := rc.Enrollments.Ticket(middleware.UserID(c), course.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return utils.ErrorWithRedirect(c, fiber.StatusForbidden,
				"You must be enrolled to leave a review.", "/courses/"+course.Slug)
		}
		return utils.InternalServerError(c, "Failed to check enrollment")
	}

	rating := services.ClampRating(input.Rating)
	review, created, err := rc.Reviews.SubmitReview(ticket, rating, input.Comment)
	if err != nil {
		return utils.InternalServerError(c, "Could not save review")
	}

	message := "Your review has been updated."
	status := fiber.StatusOK
	if created {
		message = "Thank you for your review!"
		status = fiber.StatusCreated
	}
	return utils.Success(c, status, message, review)
}

// GetCourseReviews returns a course's newest reviews with the rating
// summary.
func (rc *ReviewsController) GetCourseReviews(c *fiber.Ctx) error {
	var course models.Course
	err := rc.DB.Select("id").
		Where("slug = ?", c.Params("courseSlug")).
		First(&course).Error
	if err != nil {
		return utils.NotFound(c, "Course not found")
	}

	reviews, err := rc.Reviews.CourseReviews(course.ID, 10)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch reviews")
	}
	avg, count, err := rc.Reviews.RatingSummary(course.ID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch reviews")
	}

	return c.JSON(fiber.Map{
		"reviews":      reviews,
		"avg_rating":   avg,
		"review_count": count,
	})
}
