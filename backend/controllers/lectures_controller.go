package controllers

import (
	"errors"
	"strconv"

	"project/backend/config"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LecturesController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Enrollments *services.EnrollmentService
	Progress    *services.ProgressService
}

func NewLecturesController(db *gorm.DB, cfg *config.Config) *LecturesController {
	return &LecturesController{
		DB:          db,
		Cfg:         cfg,
		Enrollments: services.NewEnrollmentService(db),
		Progress:    services.NewProgressService(db),
	}
}

func (lc *LecturesController) courseBySlug(slug string) (*models.Course, error) {
	var course models.Course
	err := lc.DB.Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (lc *LecturesController) courseLectures(courseID uint) ([]models.Lecture, error) {
	var lectures []models.Lecture
	err := lc.DB.Where("course_id = ?", courseID).Order("id").Find(&lectures).Error
	return lectures, err
}

// GetFirstLecture opens the course at its first lecture: the enrollment
// gate, the visit record, and the navigation snapshot in one request.
// Unenrolled callers get a 403 pointing back at the course detail page.
func (lc *LecturesController) GetFirstLecture(c *fiber.Ctx) error {
	course, err := lc.courseBySlug(c.Params("courseSlug"))
	if err != nil {
		return utils.NotFound(c, "Course not found")
	}

	ticket, err := lc.Enrollments.Ticket(middleware.UserID(c), course.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return utils.ErrorWithRedirect(c, fiber.StatusForbidden,
				"Enroll Now to access this course.", "/courses/"+course.Slug)
		}
		return utils.InternalServerError(c, "Failed to check enrollment")
	}

	lectures, err := lc.courseLectures(course.ID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch lectures")
	}
	if len(lectures) == 0 {
		return c.JSON(fiber.Map{
			"course":     course,
			"lectures":   lectures,
			"lecture":    nil,
			"navigation": services.ComputeNavigation(lectures, nil, nil),
		})
	}

	return lc.renderLecture(c, course, lectures, &lectures[0], ticket)
}

// GetLecture opens a specific lecture. The lookup is always scoped by
// (course, slug): lecture slugs are only unique within their course.
func (lc *LecturesController) GetLecture(c *fiber.Ctx) error {
	course, err := lc.courseBySlug(c.Params("courseSlug"))
	if err != nil {
		return utils.NotFound(c, "Course not found")
	}

	var lecture models.Lecture
	err = lc.DB.Where("course_id = ? AND slug = ?", course.ID, c.Params("lectureSlug")).
		First(&lecture).Error
	if err != nil {
		return utils.NotFound(c, "Lecture not found")
	}

	ticket, err := lc.Enrollments.Ticket(middleware.UserID(c), course.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return utils.ErrorWithRedirect(c, fiber.StatusForbidden,
				"Enroll Now to access this course.", "/courses/"+course.Slug)
		}
		return utils.InternalServerError(c, "Failed to check enrollment")
	}

	lectures, err := lc.courseLectures(course.ID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch lectures")
	}

	return lc.renderLecture(c, course, lectures, &lecture, ticket)
}

func (lc *LecturesController) renderLecture(c *fiber.Ctx, course *models.Course, lectures []models.Lecture, current *models.Lecture, ticket services.EnrollmentTicket) error {
	progress, err := lc.Progress.RecordAccess(ticket, current.ID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to record progress")
	}

	nav, err := lc.Progress.Navigation(ticket, lectures, current)
	if err != nil {
		return utils.InternalServerError(c, "Failed to compute navigation")
	}

	return c.JSON(fiber.Map{
		"course":     course,
		"lectures":   lectures,
		"lecture":    current,
		"progress":   progress,
		"navigation": nav,
	})
}

type LectureRequest struct {
	Title          string `json:"title" validate:"required,max=255"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	FileURL        string `json:"file_url"`
	VideoID        string `json:"video_id" validate:"omitempty,max=150"`
	Previewable    *bool  `json:"previewable"`
	SEOTitle       string `json:"seo_title" validate:"omitempty,max=60"`
	SEOKeywords    string `json:"seo_keywords"`
	SEODescription string `json:"seo_description"`
}

// AddLecture (admin) appends a lecture to a course. Insertion order is the
// canonical sequence, so there is no explicit position field. A slug
// collision within the course gets a random suffix instead of failing.
func (lc *LecturesController) AddLecture(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := lc.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	var input LectureRequest
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

	lecture := models.Lecture{
		CourseID:       course.ID,
		Title:          input.Title,
		Slug:           slug,
		Description:    input.Description,
		FileURL:        input.FileURL,
		VideoID:        input.VideoID,
		Previewable:    true,
		SEOTitle:       input.SEOTitle,
		SEOKeywords:    input.SEOKeywords,
		SEODescription: input.SEODescription,
	}
	if input.Previewable != nil {
		lecture.Previewable = *input.Previewable
	}

	if err := lc.DB.Create(&lecture).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.InternalServerError(c, "Could not create lecture")
		}
		lecture.Slug = utils.DedupSlug(slug)
		if err := lc.DB.Create(&lecture).Error; err != nil {
			return utils.InternalServerError(c, "Could not create lecture")
		}
	}
	return utils.Created(c, "Lecture created", lecture)
}

// UpdateLecture (admin) updates a lecture; the lookup is scoped to the
// course in the path.
func (lc *LecturesController) UpdateLecture(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	lectureID, err := strconv.Atoi(c.Params("lectureId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lecture ID")
	}

	var lecture models.Lecture
	err = lc.DB.Where("id = ? AND course_id = ?", lectureID, courseID).First(&lecture).Error
	if err != nil {
		return utils.NotFound(c, "Lecture not found")
	}

	var input LectureRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	lecture.Title = input.Title
	if input.Slug != "" {
		lecture.Slug = input.Slug
	}
	lecture.Description = input.Description
	lecture.FileURL = input.FileURL
	lecture.VideoID = input.VideoID
	if input.Previewable != nil {
		lecture.Previewable = *input.Previewable
	}
	lecture.SEOTitle = input.SEOTitle
	lecture.SEOKeywords = input.SEOKeywords
	lecture.SEODescription = input.SEODescription

	if err := lc.DB.Save(&lecture).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Lecture slug already used in this course")
		}
		return utils.InternalServerError(c, "Could not update lecture")
	}
	return utils.Success(c, fiber.StatusOK, "Lecture updated", lecture)
}

// DeleteLecture (admin) removes a lecture and its progress rows.
func (lc *LecturesController) DeleteLecture(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	lectureID, err := strconv.Atoi(c.Params("lectureId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lecture ID")
	}

	var lecture models.Lecture
	err = lc.DB.Where("id = ? AND course_id = ?", lectureID, courseID).First(&lecture).Error
	if err != nil {
		return utils.NotFound(c, "Lecture not found")
	}

	err = lc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lecture_id = ?", lecture.ID).
			Delete(&models.LectureProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lecture).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete lecture")
	}
	return utils.Success(c, fiber.StatusOK, "Lecture deleted", nil)
}
