package services

import (
	"errors"
	"time"

	"project/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService records lecture visits and derives navigation state from
// them. Authorization is the ledger's job: every mutating or user-scoped
// read takes an EnrollmentTicket.
type ProgressService struct {
	DB *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db}
}

// NavigationState is the read-only snapshot driving the lecture page:
// previous/next links, the progress bar, and the completion banner. It is
// recomputed on every view; the work is bounded by the course's lecture
// count.
type NavigationState struct {
	Previous            *models.Lecture `json:"previous"`
	Next                *models.Lecture `json:"next"`
	CurrentPosition     int             `json:"current_position"` // 1-based
	TotalLectures       int             `json:"total_lectures"`
	CompletedCount      int             `json:"completed_count"`
	CompletedIDs        map[uint]bool   `json:"completed_ids"`
	ProgressPercent     int             `json:"progress_percent"`
	JustCompletedCourse bool            `json:"just_completed_course"`
}

// RecordAccess gets or creates the (user, lecture) progress row for the
// ticket holder. First access counts as completion. The operation is
// idempotent: repeated calls refresh last_accessed but keep the original
// completed_at, and a completed row can never become incomplete again.
// Concurrent first accesses are settled by the ON CONFLICT clause against
// the unique (user_id, lecture_id) index, not by a check-then-insert.
func (ps *ProgressService) RecordAccess(ticket EnrollmentTicket, lectureID uint) (*models.LectureProgress, error) {
	var lecture models.Lecture
	err := ps.DB.Select("id").
		Where("id = ? AND course_id = ?", lectureID, ticket.CourseID()).
		First(&lecture).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	progress := models.LectureProgress{
		UserID:       ticket.UserID(),
		LectureID:    lectureID,
		Completed:    true,
		CompletedAt:  &now,
		LastAccessed: now,
	}
	err = ps.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lecture_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed": true,
			// keep the timestamp of the first completion
			"completed_at":  gorm.Expr("COALESCE(lecture_progresses.completed_at, excluded.completed_at)"),
			"last_accessed": now,
			"updated_at":    now,
		}),
	}).Create(&progress).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the stored row, not the insert candidate.
	var stored models.LectureProgress
	err = ps.DB.Where("user_id = ? AND lecture_id = ?", ticket.UserID(), lectureID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// CompletedLectureIDs returns the set of completed lecture ids for the
// user, scoped to one course.
func (ps *ProgressService) CompletedLectureIDs(userID, courseID uint) (map[uint]bool, error) {
	var ids []uint
	err := ps.DB.Model(&models.LectureProgress{}).
		Joins("JOIN lectures ON lectures.id = lecture_progresses.lecture_id").
		Where("lecture_progresses.user_id = ? AND lectures.course_id = ? AND lecture_progresses.completed = true",
			userID, courseID).
		Pluck("lecture_progresses.lecture_id", &ids).Error
	if err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

// Navigation loads the ticket holder's completed set and computes the
// navigation snapshot for the current lecture. Read-only.
func (ps *ProgressService) Navigation(ticket EnrollmentTicket, lectures []models.Lecture, current *models.Lecture) (NavigationState, error) {
	completed, err := ps.CompletedLectureIDs(ticket.UserID(), ticket.CourseID())
	if err != nil {
		return NavigationState{}, err
	}
	return ComputeNavigation(lectures, current, completed), nil
}

// ComputeNavigation derives the navigation snapshot from the course's
// lectures in canonical order, the lecture being viewed, and the viewer's
// completed set (nil for an anonymous viewer). Pure.
func ComputeNavigation(lectures []models.Lecture, current *models.Lecture, completed map[uint]bool) NavigationState {
	// Position defaults to the first lecture when current is missing from
	// the list; not expected in normal operation since current is drawn
	// from the same course.
	index := 0
	if current != nil {
		for i := range lectures {
			if lectures[i].ID == current.ID {
				index = i
				break
			}
		}
	}

	state := NavigationState{
		CurrentPosition: index + 1,
		TotalLectures:   len(lectures),
		CompletedIDs:    map[uint]bool{},
	}

	if index > 0 {
		state.Previous = &lectures[index-1]
	}
	if index < len(lectures)-1 {
		state.Next = &lectures[index+1]
	}

	for id, done := range completed {
		if done {
			state.CompletedIDs[id] = true
		}
	}
	state.CompletedCount = len(state.CompletedIDs)

	if state.TotalLectures > 0 {
		state.ProgressPercent = state.CompletedCount * 100 / state.TotalLectures
	}
	state.JustCompletedCourse = state.ProgressPercent == 100

	return state
}

// CourseCompletion returns the completed/total lecture counts and the
// floored percentage for one course, for the course detail page.
func (ps *ProgressService) CourseCompletion(userID, courseID uint) (completed, total, percent int, err error) {
	var totalCount int64
	err = ps.DB.Model(&models.Lecture{}).Where("course_id = ?", courseID).Count(&totalCount).Error
	if err != nil {
		return 0, 0, 0, err
	}

	ids, err := ps.CompletedLectureIDs(userID, courseID)
	if err != nil {
		return 0, 0, 0, err
	}

	completed = len(ids)
	total = int(totalCount)
	if total > 0 {
		percent = completed * 100 / total
	}
	return completed, total, percent, nil
}
