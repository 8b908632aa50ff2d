package models

import "gorm.io/gorm"

// Enrollment is the authorization record granting a user access to a
// course's lectures. At most one per (user, course); enforced by the
// composite unique index so concurrent enrolls race at the database,
// not in application code. Rows are created once and never mutated.
type Enrollment struct {
	gorm.Model
	UserID   uint `gorm:"not null;uniqueIndex:idx_user_course_enrollment" json:"user_id"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_user_course_enrollment" json:"course_id"`

	User   User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
