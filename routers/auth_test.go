package routers_test

import (
	"eduhub/models"
	"eduhub/routers"
	"eduhub/testutil"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type authData struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.Setup(t)
	return routers.NewApp(), db
}

func login(t *testing.T, app *fiber.App, email, password string) (int, testutil.Envelope) {
	t.Helper()
	return testutil.Do(t, app, http.MethodPost, "/auth/login", "", fiber.Map{"email": email, "password": password})
}

func TestSignup(t *testing.T) {
	app, db := newApp(t)

	status, body := testutil.Do(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"name":     "Ada Lovelace",
		"email":    "Ada@EduHub.test",
		"password": "password123",
		"role":     "instructor",
	})
	require.Equal(t, http.StatusCreated, status, body.Message)

	var data authData
	body.DataAs(t, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "ada@eduhub.test", data.User.Email)
	assert.Equal(t, models.RoleInstructor, data.User.Role)

	var stored models.User
	require.NoError(t, db.Where("email = ?", "ada@eduhub.test").First(&stored).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))

	status, _ = testutil.Do(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "Ada", "email": "ada@eduhub.test", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = testutil.Do(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"name": "Root", "email": "root@eduhub.test", "password": "password123", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "admins cannot sign up")
}

func TestLogin(t *testing.T) {
	app, db := newApp(t)
	user := testutil.CreateUser(t, db, models.RoleStudent)

	status, body := login(t, app, user.Email, testutil.Password)
	require.Equal(t, http.StatusOK, status, body.Message)
	var data authData
	body.DataAs(t, &data)
	assert.NotEmpty(t, data.Token)

	status, _ = login(t, app, user.Email, "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = login(t, app, "nobody@eduhub.test", testutil.Password)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = testutil.Do(t, app, http.MethodGet, "/user/login/history", data.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var history struct {
		LoginTracking []models.LoginTracking `json:"loginTracking"`
	}
	body.DataAs(t, &history)
	assert.Len(t, history.LoginTracking, 2)
}

func TestLoginLockout(t *testing.T) {
	app, db := newApp(t)
	user := testutil.CreateUser(t, db, models.RoleStudent)

	for i := 1; i < 5; i++ {
		status, _ := login(t, app, user.Email, "wrong-password")
		require.Equal(t, http.StatusUnauthorized, status, "attempt %d", i)
	}
	status, body := login(t, app, user.Email, "wrong-password")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body.Message, "locked")

	status, _ = login(t, app, user.Email, testutil.Password)
	assert.Equal(t, http.StatusForbidden, status, "the right password does not lift a lockout")

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&user).Update("blocked_until", past).Error)
	status, _ = login(t, app, user.Email, testutil.Password)
	assert.Equal(t, http.StatusOK, status)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.False(t, stored.IsBlocked)
	assert.Zero(t, stored.FailedLoginAttempts)
}

func TestLoginBlockedByAdmin(t *testing.T) {
	app, db := newApp(t)
	user := testutil.CreateUser(t, db, models.RoleStudent)
	require.NoError(t, db.Model(&user).Update("is_blocked", true).Error)

	status, body := login(t, app, user.Email, testutil.Password)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Your account has been blocked. Contact support.", body.Message)
}

func storeResetCode(t *testing.T, db *gorm.DB, user models.User, code string, expiresAt time.Time) models.OTP {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	otp := models.OTP{
		UserID:    user.ID,
		Email:     user.Email,
		CodeHash:  string(hash),
		Purpose:   models.OTPPasswordReset,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, db.Create(&otp).Error)
	return otp
}

func TestForgotPassword(t *testing.T) {
	app, db := newApp(t)
	user := testutil.CreateUser(t, db, models.RoleStudent)

	status, known := testutil.Do(t, app, http.MethodPost, "/auth/forgot-password", "", fiber.Map{"email": user.Email})
	require.Equal(t, http.StatusOK, status)
	status, unknown := testutil.Do(t, app, http.MethodPost, "/auth/forgot-password", "", fiber.Map{"email": "nobody@eduhub.test"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, known.Message, unknown.Message, "the response does not tell whether the email exists")

	testutil.Do(t, app, http.MethodPost, "/auth/forgot-password", "", fiber.Map{"email": user.Email})

	var codes []models.OTP
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("id asc").Find(&codes).Error)
	require.Len(t, codes, 2)
	assert.True(t, codes[0].IsUsed, "a new code replaces the previous one")
	assert.False(t, codes[1].IsUsed)
}

func TestResetPassword(t *testing.T) {
	app, db := newApp(t)
	user := testutil.CreateUser(t, db, models.RoleStudent)
	lockedUntil := time.Now().Add(10 * time.Minute)
	require.NoError(t, db.Model(&user).Updates(map[string]interface{}{
		"is_blocked": true, "blocked_until": lockedUntil, "failed_login_attempts": 5,
	}).Error)

	storeResetCode(t, db, user, "123456", time.Now().Add(10*time.Minute))
	reset := func(code string) (int, testutil.Envelope) {
		return testutil.Do(t, app, http.MethodPost, "/auth/reset-password", "", fiber.Map{
			"email": user.Email, "code": code, "new_password": "new-password-1",
		})
	}

	status, body := reset("654321")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid or expired code!", body.Message)

	status, body = reset("12345")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = reset("123456")
	require.Equal(t, http.StatusOK, status, body.Message)

	status, _ = reset("123456")
	assert.Equal(t, http.StatusBadRequest, status, "codes are single use")

	status, _ = login(t, app, user.Email, testutil.Password)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = login(t, app, user.Email, "new-password-1")
	assert.Equal(t, http.StatusOK, status, "a reset lifts the lockout")
}

func TestResetPasswordLimits(t *testing.T) {
	app, db := newApp(t)
	user := testutil.CreateUser(t, db, models.RoleStudent)

	reset := func(code string) int {
		status, _ := testutil.Do(t, app, http.MethodPost, "/auth/reset-password", "", fiber.Map{
			"email": user.Email, "code": code, "new_password": "new-password-1",
		})
		return status
	}

	t.Run("expired", func(t *testing.T) {
		otp := storeResetCode(t, db, user, "111111", time.Now().Add(-time.Minute))
		assert.Equal(t, http.StatusBadRequest, reset("111111"))
		require.NoError(t, db.Model(&otp).Update("is_used", true).Error)
	})

	t.Run("too many attempts", func(t *testing.T) {
		otp := storeResetCode(t, db, user, "222222", time.Now().Add(10*time.Minute))
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusBadRequest, reset("999999"))
		}
		assert.Equal(t, http.StatusBadRequest, reset("222222"), "the code is burnt after five misses")

		var stored models.OTP
		require.NoError(t, db.First(&stored, otp.ID).Error)
		assert.True(t, stored.IsUsed)
		assert.Equal(t, 5, stored.Attempts)
	})
}
