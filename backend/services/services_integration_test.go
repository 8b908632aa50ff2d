package services_test

import (
	"os"
	"testing"
	"time"

	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// These tests exercise the storage-backed invariants (unique constraints,
// upserts, monotonic completion) against a real Postgres. They are skipped
// unless TEST_DATABASE_DSN is set, e.g.
//
//	TEST_DATABASE_DSN="host=localhost user=postgres password=postgres dbname=courseplatform_test sslmode=disable" go test ./...
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping database tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := models.User{
		Username:     "user-" + suffix,
		Email:        "user-" + suffix + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCourse(t *testing.T, db *gorm.DB, lectureCount int) (*models.Course, []models.Lecture) {
	t.Helper()
	suffix := uuid.NewString()[:8]
	course := models.Course{
		Title:    "Course " + suffix,
		Slug:     "course-" + suffix,
		IsActive: true,
	}
	require.NoError(t, db.Create(&course).Error)

	lectures := make([]models.Lecture, 0, lectureCount)
	for i := 0; i < lectureCount; i++ {
		lecture := models.Lecture{
			CourseID: course.ID,
			Title:    "Lecture",
			Slug:     "lecture-" + uuid.NewString()[:8],
		}
		require.NoError(t, db.Create(&lecture).Error)
		lectures = append(lectures, lecture)
	}
	return &course, lectures
}

func TestEnrollTwiceYieldsOneRow(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	user := createUser(t, db)
	course, _ := createCourse(t, db, 0)

	_, err := es.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	_, err = es.Enroll(user.ID, course.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyEnrolled)

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnrollInactiveCourse(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	user := createUser(t, db)
	course, _ := createCourse(t, db, 0)
	require.NoError(t, db.Model(course).Update("is_active", false).Error)

	_, err := es.Enroll(user.ID, course.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestTicketRequiresEnrollment(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	user := createUser(t, db)
	course, _ := createCourse(t, db, 1)

	_, err := es.Ticket(user.ID, course.ID)
	assert.ErrorIs(t, err, services.ErrNotEnrolled)

	// anonymous callers are never enrolled
	enrolled, err := es.IsEnrolled(0, course.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	_, err = es.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	ticket, err := es.Ticket(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, ticket.UserID())
	assert.Equal(t, course.ID, ticket.CourseID())
}

func TestRecordAccessIdempotent(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	ps := services.NewProgressService(db)
	user := createUser(t, db)
	course, lectures := createCourse(t, db, 2)

	_, err := es.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	ticket, err := es.Ticket(user.ID, course.ID)
	require.NoError(t, err)

	first, err := ps.RecordAccess(ticket, lectures[0].ID)
	require.NoError(t, err)
	assert.True(t, first.Completed)
	require.NotNil(t, first.CompletedAt)

	time.Sleep(20 * time.Millisecond)

	again, err := ps.RecordAccess(ticket, lectures[0].ID)
	require.NoError(t, err)
	assert.True(t, again.Completed)
	require.NotNil(t, again.CompletedAt)

	// completed_at keeps the first visit's stamp; last_accessed moves
	assert.WithinDuration(t, *first.CompletedAt, *again.CompletedAt, time.Millisecond)
	assert.True(t, again.LastAccessed.After(first.LastAccessed))

	var count int64
	require.NoError(t, db.Model(&models.LectureProgress{}).
		Where("user_id = ? AND lecture_id = ?", user.ID, lectures[0].ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordAccessMonotonicCompletion(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	ps := services.NewProgressService(db)
	user := createUser(t, db)
	course, lectures := createCourse(t, db, 1)

	_, err := es.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	ticket, err := es.Ticket(user.ID, course.ID)
	require.NoError(t, err)

	// a pre-existing incomplete row is promoted, never the reverse
	seeded := models.LectureProgress{
		UserID:       user.ID,
		LectureID:    lectures[0].ID,
		Completed:    false,
		LastAccessed: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&seeded).Error)

	progress, err := ps.RecordAccess(ticket, lectures[0].ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	require.NotNil(t, progress.CompletedAt)

	progress, err = ps.RecordAccess(ticket, lectures[0].ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
}

func TestRecordAccessRejectsForeignLecture(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	ps := services.NewProgressService(db)
	user := createUser(t, db)
	course, _ := createCourse(t, db, 0)
	_, otherLectures := createCourse(t, db, 1)

	_, err := es.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	ticket, err := es.Ticket(user.ID, course.ID)
	require.NoError(t, err)

	_, err = ps.RecordAccess(ticket, otherLectures[0].ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCompletedIDsScopedToCourse(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	ps := services.NewProgressService(db)
	user := createUser(t, db)
	courseA, lecturesA := createCourse(t, db, 2)
	courseB, _ := createCourse(t, db, 2)

	_, err := es.Enroll(user.ID, courseA.ID)
	require.NoError(t, err)
	ticket, err := es.Ticket(user.ID, courseA.ID)
	require.NoError(t, err)

	_, err = ps.RecordAccess(ticket, lecturesA[0].ID)
	require.NoError(t, err)

	idsA, err := ps.CompletedLectureIDs(user.ID, courseA.ID)
	require.NoError(t, err)
	assert.Len(t, idsA, 1)
	assert.True(t, idsA[lecturesA[0].ID])

	idsB, err := ps.CompletedLectureIDs(user.ID, courseB.ID)
	require.NoError(t, err)
	assert.Empty(t, idsB)
}

func TestCourseCompletionPercent(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	ps := services.NewProgressService(db)
	user := createUser(t, db)
	course, lectures := createCourse(t, db, 4)

	_, err := es.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	ticket, err := es.Ticket(user.ID, course.ID)
	require.NoError(t, err)

	_, err = ps.RecordAccess(ticket, lectures[0].ID)
	require.NoError(t, err)

	completed, total, percent, err := ps.CourseCompletion(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 4, total)
	assert.Equal(t, 25, percent)
}

func TestReviewUpsert(t *testing.T) {
	db := testDB(t)
	es := services.NewEnrollmentService(db)
	rs := services.NewReviewService(db)
	user := createUser(t, db)
	course, _ := createCourse(t, db, 0)

	_, err := es.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	ticket, err := es.Ticket(user.ID, course.ID)
	require.NoError(t, err)

	review, created, err := rs.SubmitReview(ticket, 2, "rough start")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, review.Rating)

	review, created, err = rs.SubmitReview(ticket, 4, "it grew on me")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "it grew on me", review.Comment)

	var count int64
	require.NoError(t, db.Model(&models.Review{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// out-of-range submissions are stored as the default
	review, _, err = rs.SubmitReview(ticket, 7, "")
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
}
