package models

import "gorm.io/gorm"

// Review is a star rating plus comment for a course. One row per
// (user, course); a second submission updates the existing row.
type Review struct {
	gorm.Model
	UserID   uint   `gorm:"not null;uniqueIndex:idx_user_course_review" json:"user_id"`
	CourseID uint   `gorm:"not null;uniqueIndex:idx_user_course_review;index:idx_course_rating" json:"course_id"`
	Rating   int    `gorm:"default:5;check:rating >= 1 AND rating <= 5;index:idx_course_rating" json:"rating"`
	Comment  string `json:"comment"`

	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
