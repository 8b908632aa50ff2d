package services

import (
	"errors"

	"project/backend/models"

	"gorm.io/gorm"
)

// EnrollmentService is the ledger of who may access which course. It is
// the single authorization gate for lecture access and review submission.
type EnrollmentService struct {
	DB *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{DB: db}
}

// EnrollmentTicket proves that the ledger was consulted for a
// (user, course) pair. Progress and review operations require a ticket
// instead of a bare user id, so they cannot be reached without the
// enrollment check. Only this package can construct one.
type EnrollmentTicket struct {
	userID   uint
	courseID uint
}

func (t EnrollmentTicket) UserID() uint   { return t.userID }
func (t EnrollmentTicket) CourseID() uint { return t.courseID }

// Enroll creates an enrollment for the user in an active course. A second
// enrollment for the same pair is rejected with ErrAlreadyEnrolled; the
// uniqueness race between concurrent requests is settled by the database
// constraint, not by a prior existence check.
func (es *EnrollmentService) Enroll(userID, courseID uint) (*models.Enrollment, error) {
	var course models.Course
	err := es.DB.Select("id").Where("id = ? AND is_active = true", courseID).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	enrollment := models.Enrollment{UserID: userID, CourseID: courseID}
	if err := es.DB.Create(&enrollment).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}
	return &enrollment, nil
}

// IsEnrolled is the hot-path existence check, run on every lecture view.
// An anonymous caller (userID 0) is never enrolled.
func (es *EnrollmentService) IsEnrolled(userID, courseID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := es.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ticket consults the ledger and mints a proof of authorization for the
// pair, or ErrNotEnrolled.
func (es *EnrollmentService) Ticket(userID, courseID uint) (EnrollmentTicket, error) {
	enrolled, err := es.IsEnrolled(userID, courseID)
	if err != nil {
		return EnrollmentTicket{}, err
	}
	if !enrolled {
		return EnrollmentTicket{}, ErrNotEnrolled
	}
	return EnrollmentTicket{userID: userID, courseID: courseID}, nil
}

// CourseProgressSummary is one row of the "my courses" listing.
type CourseProgressSummary struct {
	Course          models.Course `json:"course"`
	TotalLectures   int           `json:"total_lectures"`
	CompletedCount  int           `json:"completed_count"`
	ProgressPercent int           `json:"progress_percent"`
}

// EnrolledCourses returns the user's courses with completed/total lecture
// counts, one aggregate query per listing rather than per course.
func (es *EnrollmentService) EnrolledCourses(userID uint) ([]CourseProgressSummary, error) {
	var courses []models.Course
	err := es.DB.
		Joins("JOIN enrollments ON enrollments.course_id = courses.id AND enrollments.deleted_at IS NULL").
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]CourseProgressSummary, 0, len(courses))
	for _, course := range courses {
		var total, completed int64
		if err := es.DB.Model(&models.Lecture{}).
			Where("course_id = ?", course.ID).
			Count(&total).Error; err != nil {
			return nil, err
		}
		if err := es.DB.Model(&models.LectureProgress{}).
			Joins("JOIN lectures ON lectures.id = lecture_progresses.lecture_id").
			Where("lecture_progresses.user_id = ? AND lectures.course_id = ? AND lecture_progresses.completed = true",
				userID, course.ID).
			Count(&completed).Error; err != nil {
			return nil, err
		}

		percent := 0
		if total > 0 {
			percent = int(completed * 100 / total)
		}
		summaries = append(summaries, CourseProgressSummary{
			Course:          course,
			TotalLectures:   int(total),
			CompletedCount:  int(completed),
			ProgressPercent: percent,
		})
	}
	return summaries, nil
}

// RecentEnrollments returns the user's newest enrollments with courses
// preloaded, for the sidebar.
func (es *EnrollmentService) RecentEnrollments(userID uint, limit int) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := es.DB.Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&enrollments).Error
	return enrollments, err
}
