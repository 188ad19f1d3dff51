package validators_test

import (
	"eduhub/middleware"
	"eduhub/validators"
	authValidator "eduhub/validators/auth"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return res.StatusCode, env
}

func TestValidateStruct(t *testing.T) {
	errs := validators.ValidateStruct(&authValidator.SignupRequest{
		Name:     "A",
		Email:    "not-an-email",
		Password: "short",
		Role:     "ADMIN",
	})
	assert.Equal(t, map[string]string{
		"name":     "Name must be at least 2 characters long!",
		"email":    "Invalid email!",
		"password": "Password must be at least 8 characters long!",
		"role":     "Role must be one of STUDENT, INSTRUCTOR!",
	}, errs)

	assert.Empty(t, validators.ValidateStruct(&authValidator.SignupRequest{
		Name: "Ada", Email: "ada@eduhub.test", Password: "password123",
	}))
}

func TestValidateStructRunsChecks(t *testing.T) {
	errs := validators.ValidateStruct(&authValidator.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "password123",
	})
	assert.Equal(t, "New password must differ from the current password!", errs["new_password"])

	errs = validators.ValidateStruct(&authValidator.UpdateProfileRequest{})
	assert.Equal(t, "Nothing to update!", errs["request"])
}

func TestBindBody(t *testing.T) {
	app := fiber.New()
	app.Post("/signup", validators.BindBody[authValidator.SignupRequest]("signup"), func(c *fiber.Ctx) error {
		req, ok := validators.Get[authValidator.SignupRequest](c, "signup")
		require.True(t, ok)
		return middleware.JsonResponse(c, fiber.StatusOK, true, req.Email+" "+req.Role, nil)
	})

	status, body := call(t, app, http.MethodPost, "/signup", `{"name":" Ada ","email":" ADA@EduHub.test ","password":"password123"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada@eduhub.test STUDENT", body.Message, "requests are normalized before validation")

	status, body = call(t, app, http.MethodPost, "/signup", `{"name":"Ada"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Validation failed!", body.Message)
	assert.Equal(t, "Email is required!", body.Data["email"])

	status, _ = call(t, app, http.MethodPost, "/signup", `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIDParam(t *testing.T) {
	app := fiber.New()
	app.Get("/course/:id", validators.IDParam("id", "courseID", "Course"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	status, _ := call(t, app, http.MethodGet, "/course/12", "")
	assert.Equal(t, http.StatusOK, status)

	for _, bad := range []string{"0", "-1", "abc", "1.5"} {
		status, body := call(t, app, http.MethodGet, "/course/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, status, bad)
		assert.Equal(t, "Invalid Course ID!", body.Message, bad)
	}
}

func TestPaginate(t *testing.T) {
	app := fiber.New()
	app.Get("/list", validators.Paginate(), func(c *fiber.Ctx) error {
		p := validators.GetPagination(c)
		return c.JSON(fiber.Map{"offset": p.Offset(), "limit": p.Limit})
	})

	tests := []struct {
		query      string
		wantStatus int
		wantField  string
	}{
		{"", http.StatusOK, ""},
		{"?page=3&limit=20", http.StatusOK, ""},
		{"?page=0", http.StatusUnprocessableEntity, "page"},
		{"?limit=101", http.StatusUnprocessableEntity, "limit"},
		{"?limit=x", http.StatusUnprocessableEntity, "limit"},
	}
	for _, tt := range tests {
		status, body := call(t, app, http.MethodGet, "/list"+tt.query, "")
		assert.Equal(t, tt.wantStatus, status, tt.query)
		if tt.wantField != "" {
			assert.Contains(t, body.Data, tt.wantField, tt.query)
		}
	}

	p := validators.Pagination{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, fiber.Map{"total": int64(45), "page": 3, "limit": 20}, p.Meta(45))
}

func TestDateRange(t *testing.T) {
	app := fiber.New()
	app.Get("/stats", validators.DateRange(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for query, want := range map[string]int{
		"":                               http.StatusOK,
		"?range=WEEK":                    http.StatusOK,
		"?from=2026-01-01&to=2026-01-31": http.StatusOK,
		"?range=decade":                  http.StatusUnprocessableEntity,
		"?from=2026-01-01":               http.StatusUnprocessableEntity,
		"?from=01/01/2026&to=2026-01-31": http.StatusUnprocessableEntity,
	} {
		status, _ := call(t, app, http.MethodGet, "/stats"+query, "")
		assert.Equal(t, want, status, query)
	}
}
