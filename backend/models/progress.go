package models

import (
	"time"

	"gorm.io/gorm"
)

// LectureProgress tracks a user's visits to a single lecture. One row per
// (user, lecture). Completed only ever goes false->true; CompletedAt is
// stamped on that transition and never overwritten, LastAccessed is
// refreshed on every visit.
type LectureProgress struct {
	gorm.Model
	UserID       uint       `gorm:"not null;uniqueIndex:idx_user_lecture_progress;index:idx_user_completed" json:"user_id"`
	LectureID    uint       `gorm:"not null;uniqueIndex:idx_user_lecture_progress" json:"lecture_id"`
	Completed    bool       `gorm:"default:false;index:idx_user_completed" json:"completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	LastAccessed time.Time  `json:"last_accessed"`

	User    User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Lecture Lecture `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
