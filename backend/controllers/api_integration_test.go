package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"project/backend/config"
	"project/backend/models"
	"project/backend/routes"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// End-to-end flow over the HTTP surface: enroll, view lectures, review.
// Skipped unless TEST_DATABASE_DSN points at a Postgres instance.
func setupAPI(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping API tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.AutoMigrate(db))

	cfg := &config.Config{JWTSecret: "testsecret", MenuCacheTTL: 0}
	app := fiber.New()
	routes.SetupRoutes(app, db, cfg)
	return app, db, cfg
}

func registerUser(t *testing.T, app *fiber.App) string {
	t.Helper()
	suffix := uuid.NewString()[:8]
	body, _ := json.Marshal(fiber.Map{
		"username": "student-" + suffix,
		"email":    "student-" + suffix + "@example.com",
		"password": "password123",
	})

	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func seedCourse(t *testing.T, db *gorm.DB, lectureSlugs ...string) *models.Course {
	t.Helper()
	course := models.Course{
		Title:    "Seeded Course",
		Slug:     "seeded-" + uuid.NewString()[:8],
		IsActive: true,
	}
	require.NoError(t, db.Create(&course).Error)
	for _, slug := range lectureSlugs {
		require.NoError(t, db.Create(&models.Lecture{
			CourseID: course.ID,
			Title:    slug,
			Slug:     slug,
		}).Error)
	}
	return &course
}

func doJSON(t *testing.T, app *fiber.App, method, url, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func TestLectureFlow(t *testing.T) {
	app, db, _ := setupAPI(t)
	token := registerUser(t, app)
	course := seedCourse(t, db, "one", "two", "three")
	base := "/api/courses/" + course.Slug

	// lecture access before enrolling is refused with a redirect target
	status, result := doJSON(t, app, "GET", base+"/lectures/two", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "/courses/"+course.Slug, result["redirect"])

	// enroll
	status, result = doJSON(t, app, "POST", base+"/enroll", token, nil)
	assert.Equal(t, fiber.StatusCreated, status)

	// enrolling twice is a conflict, not a failure
	status, result = doJSON(t, app, "POST", base+"/enroll", token, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "You are already enrolled in this course.", result["message"])

	// view the middle lecture directly
	status, result = doJSON(t, app, "GET", base+"/lectures/two", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	nav, ok := result["navigation"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), nav["current_position"])
	assert.Equal(t, float64(3), nav["total_lectures"])
	assert.Equal(t, float64(1), nav["completed_count"])
	assert.Equal(t, float64(33), nav["progress_percent"])
	assert.Equal(t, false, nav["just_completed_course"])

	previous, ok := nav["previous"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "one", previous["slug"])
	next, ok := nav["next"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "three", next["slug"])

	// the first-lecture entry point marks lecture one
	status, result = doJSON(t, app, "GET", base+"/lecture", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	nav = result["navigation"].(map[string]interface{})
	assert.Equal(t, float64(1), nav["current_position"])
	assert.Equal(t, float64(2), nav["completed_count"])

	// finish the course
	status, result = doJSON(t, app, "GET", base+"/lectures/three", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	nav = result["navigation"].(map[string]interface{})
	assert.Equal(t, float64(100), nav["progress_percent"])
	assert.Equal(t, true, nav["just_completed_course"])
	assert.Nil(t, nav["next"])
}

func TestReviewFlow(t *testing.T) {
	app, db, _ := setupAPI(t)
	token := registerUser(t, app)
	course := seedCourse(t, db, "only")
	base := "/api/courses/" + course.Slug

	// reviews require enrollment
	status, result := doJSON(t, app, "POST", base+"/reviews", token,
		fiber.Map{"rating": 4, "comment": "nice"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "You must be enrolled to leave a review.", result["message"])

	status, _ = doJSON(t, app, "POST", base+"/enroll", token, nil)
	require.Equal(t, fiber.StatusCreated, status)

	// an out-of-range rating is stored as the default, not rejected
	status, result = doJSON(t, app, "POST", base+"/reviews", token,
		fiber.Map{"rating": 7, "comment": "great"})
	assert.Equal(t, fiber.StatusCreated, status)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, float64(5), data["rating"])

	// a second submission updates in place
	status, result = doJSON(t, app, "POST", base+"/reviews", token,
		fiber.Map{"rating": 3, "comment": "on reflection"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Your review has been updated.", result["message"])

	status, result = doJSON(t, app, "GET", base+"/reviews", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["review_count"])
	assert.Equal(t, float64(3), result["avg_rating"])
}
