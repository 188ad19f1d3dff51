package middleware_test

import (
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/testutil"
	"eduhub/validators"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.JWTMiddleware, middleware.RequireRoles(roles...), func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "ok", user)
	})
	app.Get("/course/:id", middleware.JWTMiddleware, middleware.RequireRoles(),
		validators.IDParam("id", "courseID", "Course"), middleware.CourseManager(),
		func(c *fiber.Ctx) error {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "ok", middleware.CurrentCourse(c))
		})
	app.Get("/course/:id/content", middleware.JWTMiddleware, middleware.RequireRoles(),
		validators.IDParam("id", "courseID", "Course"), middleware.CourseAccess(),
		func(c *fiber.Ctx) error {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "ok", nil)
		})
	return app
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestGenerateAndParseJWT(t *testing.T) {
	db := testutil.Setup(t)
	user := testutil.CreateUser(t, db, models.RoleStudent)

	token, err := middleware.GenerateJWT(user)
	require.NoError(t, err)

	id, err := middleware.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = middleware.ParseJWT(token + "x")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID,
		"exp":    time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = middleware.ParseJWT(signed)
	assert.Error(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": user.ID})
	signed, err = foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = middleware.ParseJWT(signed)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	db := testutil.Setup(t)
	app := newApp()
	user := testutil.CreateUser(t, db, models.RoleStudent)

	status, body := testutil.Do(t, app, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, body.Status)

	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	status, _ = testutil.Send(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = testutil.Do(t, app, http.MethodGet, "/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = testutil.Do(t, app, http.MethodGet, "/me", testutil.Token(t, user), nil)
	assert.Equal(t, http.StatusOK, status)
	var me models.User
	body.DataAs(t, &me)
	assert.Equal(t, user.Email, me.Email)
}

func TestRequireRoles(t *testing.T) {
	db := testutil.Setup(t)
	app := newApp(models.RoleAdmin)

	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	student := testutil.CreateUser(t, db, models.RoleStudent)

	status, _ := testutil.Do(t, app, http.MethodGet, "/me", testutil.Token(t, admin), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = testutil.Do(t, app, http.MethodGet, "/me", testutil.Token(t, student), nil)
	assert.Equal(t, http.StatusForbidden, status)

	t.Run("blocked", func(t *testing.T) {
		require.NoError(t, db.Model(&admin).Update("is_blocked", true).Error)
		status, body := testutil.Do(t, app, http.MethodGet, "/me", testutil.Token(t, admin), nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Your account is blocked!", body.Message)
	})

	t.Run("lockout over", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		require.NoError(t, db.Model(&admin).Update("blocked_until", past).Error)
		status, _ := testutil.Do(t, app, http.MethodGet, "/me", testutil.Token(t, admin), nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("deleted", func(t *testing.T) {
		require.NoError(t, db.Model(&admin).Update("is_deleted", true).Error)
		status, _ := testutil.Do(t, app, http.MethodGet, "/me", testutil.Token(t, admin), nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestCourseManager(t *testing.T) {
	db := testutil.Setup(t)
	app := newApp()

	owner := testutil.CreateUser(t, db, models.RoleInstructor)
	other := testutil.CreateUser(t, db, models.RoleInstructor)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	course := testutil.CreateCourse(t, db, owner.ID, 0, false)
	path := "/course/" + itoa(course.ID)

	status, _ := testutil.Do(t, app, http.MethodGet, path, testutil.Token(t, owner), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = testutil.Do(t, app, http.MethodGet, path, testutil.Token(t, admin), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = testutil.Do(t, app, http.MethodGet, path, testutil.Token(t, other), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = testutil.Do(t, app, http.MethodGet, "/course/999999", testutil.Token(t, owner), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := testutil.Do(t, app, http.MethodGet, "/course/abc", testutil.Token(t, owner), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid Course ID!", body.Message)
}

func TestCourseAccess(t *testing.T) {
	db := testutil.Setup(t)
	app := newApp()

	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	published := testutil.CreateCourse(t, db, instructor.ID, 1500, true)
	draft := testutil.CreateCourse(t, db, instructor.ID, 0, false)

	status, _ := testutil.Do(t, app, http.MethodGet, "/course/"+itoa(published.ID)+"/content", testutil.Token(t, student), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = testutil.Do(t, app, http.MethodGet, "/course/"+itoa(draft.ID)+"/content", testutil.Token(t, student), nil)
	assert.Equal(t, http.StatusNotFound, status, "drafts are hidden from students")

	testutil.CreateEnrollment(t, db, student.ID, published.ID, "PURCHASE")
	status, _ = testutil.Do(t, app, http.MethodGet, "/course/"+itoa(published.ID)+"/content", testutil.Token(t, student), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = testutil.Do(t, app, http.MethodGet, "/course/"+itoa(draft.ID)+"/content", testutil.Token(t, instructor), nil)
	assert.Equal(t, http.StatusOK, status)
}
