package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Domain errors. Controllers map these to HTTP responses; raw storage
// errors never cross the service boundary for the conditions below.
var (
	// ErrAlreadyEnrolled is returned when an enrollment for the
	// (user, course) pair already exists.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")

	// ErrNotEnrolled is returned when an operation requires an enrollment
	// the user does not have.
	ErrNotEnrolled = errors.New("not enrolled in this course")

	// ErrNotFound is returned when a referenced course, lecture or topic
	// does not exist or is inactive.
	ErrNotFound = errors.New("not found")
)

// isDuplicateKey reports whether err is a unique constraint violation.
// GORM's Postgres driver translates SQLSTATE 23505 into ErrDuplicatedKey;
// the string check backstops paths where translation is not applied.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
