// Package testutil wires an in-memory database and the fixtures the handler tests share.
package testutil

import (
	"bytes"
	"eduhub/config"
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/utils"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	Password      = "password123"
	WebhookSecret = "whsec_test_secret"
)

// Setup installs a test configuration and a fresh in-memory database as the global handle
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:                "0",
		AppEnv:              "test",
		DBDriver:            "sqlite",
		JWTKey:              "test-secret",
		JWTExpiryHours:      1,
		SaltRound:           bcrypt.MinCost,
		StripeWebhookSecret: WebhookSecret,
		StripeSuccessURL:    "http://localhost:5173/payment/success",
		StripeCancelURL:     "http://localhost:5173/payment/cancel",
		StripeCurrency:      "usd",
		PlatformFeePercent:  20,
		EmailSender:         "noreply@eduhub.test",
		EmailSenderName:     "EduHub",
		UploadDir:           t.TempDir(),
		FrontendURL:         "http://localhost:5173",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.Database = database.DbInstance{Db: db}
	t.Cleanup(func() {
		utils.WaitForEmails()
		sqlDB.Close()
	})
	return db
}

// CreateUser stores a user with the given role whose password is Password
func CreateUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:     "Test " + role,
		Email:    fmt.Sprintf("%s-%s@eduhub.test", strings.ToLower(role), uuid.NewString()[:8]),
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Token issues a JWT for the user
func Token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(user)
	require.NoError(t, err)
	return token
}

// CreateCourse stores a course owned by the instructor. price 0 makes it free.
func CreateCourse(t *testing.T, db *gorm.DB, instructorID uint, price int64, published bool) courseModels.Course {
	t.Helper()
	status := courseModels.StatusDraft
	if published {
		status = courseModels.StatusPublished
	}
	course := courseModels.Course{
		InstructorID: instructorID,
		Title:        "Go for Testers",
		Slug:         "go-for-testers-" + uuid.NewString()[:8],
		Category:     "programming",
		Level:        courseModels.LevelBeginner,
		Price:        price,
		Currency:     "usd",
		Status:       status,
		IsPublished:  published,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func CreateModule(t *testing.T, db *gorm.DB, courseID uint) courseModels.Module {
	t.Helper()
	module := courseModels.Module{CourseID: courseID, Title: "Basics"}
	require.NoError(t, db.Create(&module).Error)
	return module
}

func CreateLesson(t *testing.T, db *gorm.DB, courseID, moduleID uint, published bool) courseModels.Lesson {
	t.Helper()
	lesson := courseModels.Lesson{
		CourseID:    courseID,
		ModuleID:    moduleID,
		Title:       "Lesson",
		ContentType: courseModels.ContentText,
		Content:     "Body of the lesson",
		IsPublished: published,
	}
	require.NoError(t, db.Create(&lesson).Error)
	return lesson
}

// CreateQuiz stores a published quiz
func CreateQuiz(t *testing.T, db *gorm.DB, courseID uint, passingScore, maxAttempts int, required bool) courseModels.Quiz {
	t.Helper()
	quiz := courseModels.Quiz{
		CourseID:     courseID,
		Title:        "Checkpoint",
		PassingScore: passingScore,
		MaxAttempts:  maxAttempts,
		IsRequired:   required,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}

// AddQuestion stores a question with one option per flag, the flag telling whether it is correct
func AddQuestion(t *testing.T, db *gorm.DB, quizID uint, points int, correct ...bool) courseModels.QuizQuestion {
	t.Helper()
	questionType := courseModels.QuestionSingle
	n := 0
	for _, c := range correct {
		if c {
			n++
		}
	}
	if n > 1 {
		questionType = courseModels.QuestionMultiple
	}

	question := courseModels.QuizQuestion{QuizID: quizID, Question: "Pick", QuestionType: questionType, Points: points}
	require.NoError(t, db.Create(&question).Error)
	for i, c := range correct {
		option := courseModels.QuizOption{QuestionID: question.ID, OptionText: fmt.Sprintf("Option %d", i+1), IsCorrect: c, OrderIndex: i}
		require.NoError(t, db.Create(&option).Error)
		question.Options = append(question.Options, option)
	}
	return question
}

// CreateEnrollment stores an active enrollment
func CreateEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint, source string) courseModels.Enrollment {
	t.Helper()
	enrollment := courseModels.Enrollment{UserID: userID, CourseID: courseID, Status: courseModels.EnrollmentActive, Source: source}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}

// Envelope is the decoded {status, message, data} response body
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DataAs decodes the envelope data into v
func (e Envelope) DataAs(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

// Do sends a JSON request through the app and decodes the envelope
func Do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, Envelope) {
	t.Helper()
	status, raw := DoRaw(t, app, method, path, token, body)

	var env Envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return status, env
}

// DoRaw sends a JSON request through the app and returns the status and raw body
func DoRaw(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return Send(t, app, req)
}

// Send runs a prepared request through the app
func Send(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}
