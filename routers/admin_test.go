package routers_test

import (
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/testutil"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserManagement(t *testing.T) {
	app, db := newApp(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	testutil.CreateUser(t, db, models.RoleInstructor)
	token := testutil.Token(t, admin)

	status, _ := testutil.Do(t, app, http.MethodGet, "/admin/users", testutil.Token(t, student), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := testutil.Do(t, app, http.MethodGet, "/admin/users?role=instructor", token, nil)
	require.Equal(t, http.StatusOK, status, body.Message)
	var list struct {
		Users []models.User `json:"users"`
	}
	body.DataAs(t, &list)
	require.Len(t, list.Users, 1)
	assert.Equal(t, models.RoleInstructor, list.Users[0].Role)

	t.Run("role changes", func(t *testing.T) {
		status, _ := testutil.Do(t, app, http.MethodPut, fmt.Sprintf("/admin/users/%d/role", admin.ID), token, fiber.Map{"role": "STUDENT"})
		assert.Equal(t, http.StatusBadRequest, status, "admins keep their own role")

		status, _ = testutil.Do(t, app, http.MethodPut, fmt.Sprintf("/admin/users/%d/role", student.ID), token, fiber.Map{"role": "OWNER"})
		assert.Equal(t, http.StatusUnprocessableEntity, status)

		status, body := testutil.Do(t, app, http.MethodPut, fmt.Sprintf("/admin/users/%d/role", student.ID), token, fiber.Map{"role": "instructor"})
		require.Equal(t, http.StatusOK, status, body.Message)
		var updated models.User
		body.DataAs(t, &updated)
		assert.Equal(t, models.RoleInstructor, updated.Role)

		status, _ = testutil.Do(t, app, http.MethodGet, "/instructor/courses", testutil.Token(t, updated), nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("blocking", func(t *testing.T) {
		userToken := testutil.Token(t, student)
		path := fmt.Sprintf("/admin/users/%d/block", student.ID)

		status, _ := testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/admin/users/%d/block", admin.ID), token, fiber.Map{"blocked": true})
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = testutil.Do(t, app, http.MethodPost, path, token, fiber.Map{})
		assert.Equal(t, http.StatusUnprocessableEntity, status)

		status, _ = testutil.Do(t, app, http.MethodPost, path, token, fiber.Map{"blocked": true})
		require.Equal(t, http.StatusOK, status)
		status, body := testutil.Do(t, app, http.MethodGet, "/user/profile", userToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Your account is blocked!", body.Message)

		status, _ = testutil.Do(t, app, http.MethodPost, path, token, fiber.Map{"blocked": false})
		require.Equal(t, http.StatusOK, status)
		status, _ = testutil.Do(t, app, http.MethodGet, "/user/profile", userToken, nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestAdminEnroll(t *testing.T) {
	app, db := newApp(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	course := testutil.CreateCourse(t, db, instructor.ID, 4900, true)
	path := fmt.Sprintf("/admin/course/%d/enroll", course.ID)
	token := testutil.Token(t, admin)

	status, _ := testutil.Do(t, app, http.MethodPost, path, token, fiber.Map{"user_id": 99999})
	assert.Equal(t, http.StatusNotFound, status)

	status, body := testutil.Do(t, app, http.MethodPost, path, token, fiber.Map{"user_id": student.ID})
	require.Equal(t, http.StatusCreated, status, body.Message)
	var enrollment courseModels.Enrollment
	body.DataAs(t, &enrollment)
	assert.Equal(t, courseModels.SourceAdmin, enrollment.Source)
	assert.Equal(t, courseModels.EnrollmentActive, enrollment.Status)

	status, _ = testutil.Do(t, app, http.MethodPost, path, token, fiber.Map{"user_id": student.ID})
	assert.Equal(t, http.StatusConflict, status)

	status, body = testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/admin/users/%d/progress", student.ID), token, nil)
	require.Equal(t, http.StatusOK, status, body.Message)
	assert.Contains(t, string(body.Data), course.Title)
}

func addPayment(t *testing.T, db *gorm.DB, p models.Payment) models.Payment {
	t.Helper()
	p.Kind = models.PaymentKindCourse
	p.Currency = "usd"
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestDashboards(t *testing.T) {
	app, db := newApp(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	course := testutil.CreateCourse(t, db, instructor.ID, 5000, true)
	testutil.CreateEnrollment(t, db, student.ID, course.ID, courseModels.SourcePurchase)

	now := time.Now()
	lastYear := now.AddDate(-1, 0, 0)
	addPayment(t, db, models.Payment{
		UserID: student.ID, CourseID: &course.ID, InstructorID: &instructor.ID,
		Amount: 5000, Status: models.PaymentSucceeded, PlatformFee: 1000, InstructorShare: 4000, PaidAt: &now,
	})
	addPayment(t, db, models.Payment{
		UserID: student.ID, CourseID: &course.ID, InstructorID: &instructor.ID,
		Amount: 3000, Status: models.PaymentRefunded, PlatformFee: 600, InstructorShare: 2400, PaidAt: &now, RefundedAt: &now,
	})
	addPayment(t, db, models.Payment{
		UserID: student.ID, CourseID: &course.ID, InstructorID: &instructor.ID,
		Amount: 2000, Status: models.PaymentSucceeded, PlatformFee: 400, InstructorShare: 1600, PaidAt: &lastYear,
	})

	t.Run("admin", func(t *testing.T) {
		status, _ := testutil.Do(t, app, http.MethodGet, "/admin/dashboard/stats", testutil.Token(t, instructor), nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, body := testutil.Do(t, app, http.MethodGet, "/admin/dashboard/stats?range=month", testutil.Token(t, admin), nil)
		require.Equal(t, http.StatusOK, status, body.Message)
		var stats struct {
			Revenue struct {
				Gross           int64 `json:"gross"`
				Refunded        int64 `json:"refunded"`
				Net             int64 `json:"net"`
				PlatformFee     int64 `json:"platform_fee"`
				InstructorShare int64 `json:"instructor_share"`
			} `json:"revenue"`
			Totals struct {
				UsersByRole map[string]int64 `json:"users_by_role"`
				Enrollments int64            `json:"enrollments"`
			} `json:"totals"`
		}
		body.DataAs(t, &stats)
		assert.Equal(t, int64(8000), stats.Revenue.Gross)
		assert.Equal(t, int64(3000), stats.Revenue.Refunded)
		assert.Equal(t, int64(5000), stats.Revenue.Net)
		assert.Equal(t, int64(1000), stats.Revenue.PlatformFee)
		assert.Equal(t, int64(4000), stats.Revenue.InstructorShare)
		assert.Equal(t, int64(1), stats.Totals.Enrollments)
		assert.Equal(t, int64(1), stats.Totals.UsersByRole[models.RoleAdmin])

		status, body = testutil.Do(t, app, http.MethodGet, "/admin/dashboard/stats?range=all", testutil.Token(t, admin), nil)
		require.Equal(t, http.StatusOK, status)
		body.DataAs(t, &stats)
		assert.Equal(t, int64(10000), stats.Revenue.Gross)

		status, _ = testutil.Do(t, app, http.MethodGet, "/admin/dashboard/stats?range=decade", testutil.Token(t, admin), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("instructor", func(t *testing.T) {
		status, body := testutil.Do(t, app, http.MethodGet, "/instructor/dashboard", testutil.Token(t, instructor), nil)
		require.Equal(t, http.StatusOK, status, body.Message)
		var stats struct {
			Totals struct {
				Courses  int   `json:"courses"`
				Students int64 `json:"students"`
			} `json:"totals"`
			Earnings struct {
				Range   int64 `json:"range"`
				AllTime int64 `json:"all_time"`
			} `json:"earnings"`
		}
		body.DataAs(t, &stats)
		assert.Equal(t, 1, stats.Totals.Courses)
		assert.Equal(t, int64(1), stats.Totals.Students)
		assert.Equal(t, int64(4000), stats.Earnings.Range)
		assert.Equal(t, int64(5600), stats.Earnings.AllTime)
	})

	t.Run("student", func(t *testing.T) {
		status, body := testutil.Do(t, app, http.MethodGet, "/user/dashboard", testutil.Token(t, student), nil)
		require.Equal(t, http.StatusOK, status, body.Message)
		var stats struct {
			Counts map[string]int `json:"counts"`
		}
		body.DataAs(t, &stats)
		assert.Equal(t, 1, stats.Counts[courseModels.EnrollmentActive])
	})
}
