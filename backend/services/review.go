package services

import (
	"errors"
	"strconv"

	"project/backend/models"

	"gorm.io/gorm"
)

// ReviewService handles star-rating reviews. One review per
// (user, course); a second submission updates the first.
type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

const defaultRating = 5

// ClampRating parses a submitted rating and clamps it into [1,5].
// Unparseable or out-of-range input falls back to 5, it is not rejected.
// Clients send the field as either a JSON number or a string.
func ClampRating(raw interface{}) int {
	var rating int
	switch v := raw.(type) {
	case float64:
		rating = int(v)
	case int:
		rating = v
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return defaultRating
		}
		rating = parsed
	default:
		return defaultRating
	}

	if rating < 1 || rating > 5 {
		return defaultRating
	}
	return rating
}

// SubmitReview upserts the ticket holder's review for the course. The
// returned bool reports whether the review was newly created, for
// user-facing messaging. Requiring a ticket keeps unenrolled users out.
// Update-then-insert is safe here because the unique (user_id, course_id)
// index backstops the race: a concurrent loser's insert fails with a
// duplicate key, which is retried as an update.
func (rs *ReviewService) SubmitReview(ticket EnrollmentTicket, rating int, comment string) (*models.Review, bool, error) {
	if rating < 1 || rating > 5 {
		rating = defaultRating
	}

	var review models.Review
	err := rs.DB.Where("user_id = ? AND course_id = ?", ticket.UserID(), ticket.CourseID()).
		First(&review).Error
	if err == nil {
		review.Rating = rating
		review.Comment = comment
		if err := rs.DB.Save(&review).Error; err != nil {
			return nil, false, err
		}
		return &review, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	review = models.Review{
		UserID:   ticket.UserID(),
		CourseID: ticket.CourseID(),
		Rating:   rating,
		Comment:  comment,
	}
	if err := rs.DB.Create(&review).Error; err != nil {
		if isDuplicateKey(err) {
			// lost the creation race; update the winner's row
			var existing models.Review
			if ferr := rs.DB.Where("user_id = ? AND course_id = ?", ticket.UserID(), ticket.CourseID()).
				First(&existing).Error; ferr != nil {
				return nil, false, ferr
			}
			existing.Rating = rating
			existing.Comment = comment
			if serr := rs.DB.Save(&existing).Error; serr != nil {
				return nil, false, serr
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &review, true, nil
}

// ReviewEntry is one row of a course's review listing.
type ReviewEntry struct {
	models.Review
	Username string `json:"username"`
}

// CourseReviews returns the newest reviews for a course with reviewer
// names resolved.
func (rs *ReviewService) CourseReviews(courseID uint, limit int) ([]ReviewEntry, error) {
	var entries []ReviewEntry
	err := rs.DB.Model(&models.Review{}).
		Select("reviews.*, users.username").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.course_id = ?", courseID).
		Order("reviews.created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// UserReview returns the user's own review of a course, or nil.
func (rs *ReviewService) UserReview(userID, courseID uint) (*models.Review, error) {
	if userID == 0 {
		return nil, nil
	}
	var review models.Review
	err := rs.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// RatingSummary returns the average rating and review count for a course.
// Average is 0 when there are no reviews.
func (rs *ReviewService) RatingSummary(courseID uint) (float64, int64, error) {
	var avg float64
	err := rs.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("course_id = ?", courseID).
		Scan(&avg).Error
	if err != nil {
		return 0, 0, err
	}

	var count int64
	err = rs.DB.Model(&models.Review{}).Where("course_id = ?", courseID).Count(&count).Error
	if err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}
