package services_test

import (
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/testutil"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func subscribe(t *testing.T, db *gorm.DB, userID uint, status string, periodEnd time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_" + uuid.NewString(),
		Status:               status,
		CurrentPeriodEnd:     &periodEnd,
	}).Error)
}

func TestHasCourseAccess(t *testing.T) {
	db := testutil.Setup(t)
	now := time.Now()

	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	other := testutil.CreateUser(t, db, models.RoleInstructor)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	paid := testutil.CreateCourse(t, db, instructor.ID, 4900, true)
	draft := testutil.CreateCourse(t, db, instructor.ID, 4900, false)

	check := func(user models.User, course courseModels.Course) bool {
		ok, err := services.HasCourseAccess(db, user, course, now)
		require.NoError(t, err)
		return ok
	}

	t.Run("managers", func(t *testing.T) {
		assert.True(t, check(instructor, draft))
		assert.True(t, check(admin, paid))
		assert.False(t, check(other, paid))
	})

	t.Run("enrollment", func(t *testing.T) {
		student := testutil.CreateUser(t, db, models.RoleStudent)
		assert.False(t, check(student, paid))

		enrollment := testutil.CreateEnrollment(t, db, student.ID, paid.ID, courseModels.SourcePurchase)
		assert.True(t, check(student, paid))

		require.NoError(t, db.Model(&enrollment).Update("status", courseModels.EnrollmentCancelled).Error)
		assert.False(t, check(student, paid))
	})

	t.Run("subscription", func(t *testing.T) {
		student := testutil.CreateUser(t, db, models.RoleStudent)
		subscribe(t, db, student.ID, models.SubscriptionActive, now.Add(24*time.Hour))
		assert.True(t, check(student, paid))
		assert.False(t, check(student, draft), "a subscription does not open unpublished courses")
	})

	t.Run("lapsed subscription", func(t *testing.T) {
		student := testutil.CreateUser(t, db, models.RoleStudent)
		subscribe(t, db, student.ID, models.SubscriptionActive, now.Add(-time.Hour))
		subscribe(t, db, student.ID, models.SubscriptionPastDue, now.Add(24*time.Hour))
		assert.False(t, check(student, paid))
	})
}

func TestEnroll(t *testing.T) {
	db := testutil.Setup(t)
	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	course := testutil.CreateCourse(t, db, instructor.ID, 0, true)
	module := testutil.CreateModule(t, db, course.ID)
	testutil.CreateLesson(t, db, course.ID, module.ID, true)
	testutil.CreateLesson(t, db, course.ID, module.ID, true)

	enrollment, err := services.Enroll(db, student.ID, course.ID, courseModels.SourceFree, nil)
	require.NoError(t, err)
	assert.Equal(t, courseModels.EnrollmentActive, enrollment.Status)
	assert.Equal(t, 2, enrollment.TotalLessons)

	again, err := services.Enroll(db, student.ID, course.ID, courseModels.SourceFree, nil)
	assert.ErrorIs(t, err, services.ErrAlreadyEnrolled)
	assert.Equal(t, enrollment.ID, again.ID)

	cancelled, err := services.CancelEnrollment(db, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.EnrollmentCancelled, cancelled.Status)

	_, err = services.CancelEnrollment(db, student.ID, course.ID)
	assert.ErrorIs(t, err, services.ErrNotEnrolled)

	paymentID := uint(7)
	revived, err := services.Enroll(db, student.ID, course.ID, courseModels.SourcePurchase, &paymentID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, revived.ID, "a cancelled enrollment is reactivated")
	assert.Equal(t, courseModels.EnrollmentActive, revived.Status)
	assert.Equal(t, courseModels.SourcePurchase, revived.Source)
	require.NotNil(t, revived.PaymentID)
	assert.Equal(t, paymentID, *revived.PaymentID)
}
