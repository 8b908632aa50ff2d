package controllers

import (
	"strconv"

	"project/backend/config"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Enrollments *services.EnrollmentService
	Progress    *services.ProgressService
	Reviews     *services.ReviewService
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{
		DB:          db,
		Cfg:         cfg,
		Enrollments: services.NewEnrollmentService(db),
		Progress:    services.NewProgressService(db),
		Reviews:     services.NewReviewService(db),
	}
}

func (cc *CoursesController) activeCourses() *gorm.DB {
	return cc.DB.Model(&models.Course{}).
		Where("is_active = true").
		Preload("Topics").
		Order("created_at DESC")
}

// GetCourses returns the active course catalog, newest first, paginated.
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	page, offset := pageParams(c, catalogPageSize)

	var courses []models.Course
	total, err := paginated(cc.activeCourses(), offset, catalogPageSize, &courses)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}
	return utils.Paginate(c, courses, total, page, catalogPageSize)
}

// GetFeaturedCourses returns the homepage selection of featured courses.
func (cc *CoursesController) GetFeaturedCourses(c *fiber.Ctx) error {
	page, offset := pageParams(c, featuredPageSize)

	var courses []models.Course
	query := cc.activeCourses().Where("is_featured = true")
	total, err := paginated(query, offset, featuredPageSize, &courses)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}
	return utils.Paginate(c, courses, total, page, featuredPageSize)
}

// GetTopicCourses returns the active courses tagged with a topic.
func (cc *CoursesController) GetTopicCourses(c *fiber.Ctx) error {
	var topic models.Topic
	if err := cc.DB.Where("slug = ?", c.Params("topicSlug")).First(&topic).Error; err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	page, offset := pageParams(c, catalogPageSize)

	query := cc.activeCourses().
		Joins("JOIN course_topics ON course_topics.course_id = courses.id").
		Where("course_topics.topic_id = ?", topic.ID)

	var courses []models.Course
	total, err := paginated(query, offset, catalogPageSize, &courses)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}
	return utils.Paginate(c, courses, total, page, catalogPageSize)
}

// SearchCourses searches active courses by keyword over title and
// description. An empty query returns an empty result, not the full
// catalog.
func (cc *CoursesController) SearchCourses(c *fiber.Ctx) error {
	keyword := c.Query("q")
	page, offset := pageParams(c, catalogPageSize)

	if keyword == "" {
		return utils.Paginate(c, []models.Course{}, 0, page, catalogPageSize)
	}

	query := cc.activeCourses().
		Where("title ILIKE ? OR description ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")

	var courses []models.Course
	total, err := paginated(query, offset, catalogPageSize, &courses)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}
	return utils.Paginate(c, courses, total, page, catalogPageSize)
}

// GetCourseDetail returns the course page payload: ordered lectures,
// recent reviews with rating summary, and, for an authenticated viewer,
// their enrollment, own review and completion figures. Anonymous viewers
// get the public fields with zeroed personal state.
func (cc *CoursesController) GetCourseDetail(c *fiber.Ctx) error {
	var course models.Course
	err := cc.DB.Preload("Topics").
		Where("slug = ?", c.Params("courseSlug")).
		First(&course).Error
	if err != nil {
		return utils.NotFound(c, "Course not found")
	}

	var lectures []models.Lecture
	if err := cc.DB.Where("course_id = ?", course.ID).Order("id").Find(&lectures).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch lectures")
	}

	reviews, err := cc.Reviews.CourseReviews(course.ID, 10)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch reviews")
	}
	avgRating, reviewCount, err := cc.Reviews.RatingSummary(course.ID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch reviews")
	}

	userID := middleware.UserID(c)
	enrolled := false
	var userReview *models.Review
	completedCount, progressPercent := 0, 0

	if userID != 0 {
		enrolled, err = cc.Enrollments.IsEnrolled(userID, course.ID)
		if err != nil {
			return utils.InternalServerError(c, "Failed to check enrollment")
		}
		userReview, err = cc.Reviews.UserReview(userID, course.ID)
		if err != nil {
			return utils.InternalServerError(c, "Failed to fetch review")
		}
		if enrolled {
			completedCount, _, progressPercent, err = cc.Progress.CourseCompletion(userID, course.ID)
			if err != nil {
				return utils.InternalServerError(c, "Failed to fetch progress")
			}
		}
	}

	return c.JSON(fiber.Map{
		"course":           course,
		"lectures":         lectures,
		"lecture_count":    len(lectures),
		"reviews":          reviews,
		"avg_rating":       avgRating,
		"review_count":     reviewCount,
		"enrolled":         enrolled,
		"user_review":      userReview,
		"completed_count":  completedCount,
		"progress_percent": progressPercent,
	})
}

type CourseRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url"`
	IsActive       *bool  `json:"is_active"`
	IsFeatured     *bool  `json:"is_featured"`
	TopicIDs       []uint `json:"topic_ids"`
	SEOTitle       string `json:"seo_title" validate:"omitempty,max=60"`
	SEOKeywords    string `json:"seo_keywords"`
	SEODescription string `json:"seo_description"`
}

// CreateCourse (admin) creates a course and tags its topics.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input CourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(input.Title)
	}

	course := models.Course{
		Title:          input.Title,
		Slug:           slug,
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		IsActive:       true,
		SEOTitle:       input.SEOTitle,
		SEOKeywords:    input.SEOKeywords,
		SEODescription: input.SEODescription,
	}
	if input.IsActive != nil {
		course.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		course.IsFeatured = *input.IsFeatured
	}

	if len(input.TopicIDs) > 0 {
		if err := cc.DB.Find(&course.Topics, input.TopicIDs).Error; err != nil {
			return utils.BadRequest(c, "Invalid topic IDs")
		}
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.Conflict(c, "Course slug already exists")
	}
	return utils.Created(c, "Course created", course)
}

// UpdateCourse (admin) updates course metadata and topic tags.
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	var input CourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	course.Title = input.Title
	if input.Slug != "" {
		course.Slug = input.Slug
	}
	course.Description = input.Description
	course.ImageURL = input.ImageURL
	if input.IsActive != nil {
		course.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		course.IsFeatured = *input.IsFeatured
	}
	course.SEOTitle = input.SEOTitle
	course.SEOKeywords = input.SEOKeywords
	course.SEODescription = input.SEODescription

	if err := cc.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	if input.TopicIDs != nil {
		var topics []models.Topic
		if err := cc.DB.Find(&topics, input.TopicIDs).Error; err != nil {
			return utils.BadRequest(c, "Invalid topic IDs")
		}
		if err := cc.DB.Model(&course).Association("Topics").Replace(topics); err != nil {
			return utils.InternalServerError(c, "Could not update topics")
		}
	}

	return utils.Success(c, fiber.StatusOK, "Course updated", course)
}

// DeleteCourse (admin) removes a course and, transitively, its lectures,
// enrollments, progress rows and reviews.
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	// Soft delete cascades are resolved in one transaction: gorm's soft
	// delete does not fire the DB-level ON DELETE, so dependents are
	// deleted explicitly.
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var lectureIDs []uint
		if err := tx.Model(&models.Lecture{}).
			Where("course_id = ?", course.ID).
			Pluck("id", &lectureIDs).Error; err != nil {
			return err
		}
		if len(lectureIDs) > 0 {
			if err := tx.Where("lecture_id IN ?", lectureIDs).
				Delete(&models.LectureProgress{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Lecture{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	return utils.Success(c, fiber.StatusOK, "Course deleted", nil)
}
