package services_test

import (
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRange(t *testing.T) {
	// Wednesday
	at := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from, to string
		wantName string
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"today", "", "", "today", time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)},
		{"week", "", "", "week", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC)},
		{"month", "", "", "month", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"", "", "", "month", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"year", "", "", "year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"week", "2026-02-01", "2026-02-10", "custom", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.wantName+"/"+tt.name, func(t *testing.T) {
			r, err := services.ResolveRange(tt.name, tt.from, tt.to, at)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, r.Name)
			assert.False(t, r.All)
			assert.True(t, tt.wantFrom.Equal(r.From), "from %s", r.From)
			assert.True(t, tt.wantTo.Equal(r.To), "to %s", r.To)
		})
	}

	all, err := services.ResolveRange("all", "", "", at)
	require.NoError(t, err)
	assert.True(t, all.All)
}

func TestResolveRangeErrors(t *testing.T) {
	at := time.Now()
	for _, tc := range [][3]string{
		{"decade", "", ""},
		{"", "2026-02-01", ""},
		{"", "01/02/2026", "2026-02-03"},
		{"", "2026-02-05", "2026-02-01"},
	} {
		_, err := services.ResolveRange(tc[0], tc[1], tc[2], at)
		assert.Error(t, err, "%v", tc)
	}
}

func TestSplitAmount(t *testing.T) {
	tests := []struct {
		amount       int64
		fee          float64
		wantPlatform int64
		wantShare    int64
	}{
		{10000, 20, 2000, 8000},
		{999, 20, 200, 799},
		{999, 0, 0, 999},
		{999, 150, 999, 0},
		{999, -5, 0, 999},
		{0, 20, 0, 0},
	}
	for _, tt := range tests {
		platform, share := services.SplitAmount(tt.amount, tt.fee)
		assert.Equal(t, tt.wantPlatform, platform, "%d at %.0f%%", tt.amount, tt.fee)
		assert.Equal(t, tt.wantShare, share, "%d at %.0f%%", tt.amount, tt.fee)
		assert.Equal(t, tt.amount, platform+share)
	}
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, services.CompletionRate(0, 0))
	assert.Equal(t, 50.0, services.CompletionRate(1, 2))
	assert.Equal(t, 33.33, services.CompletionRate(1, 3))
}

func TestEnrollmentStats(t *testing.T) {
	db := testutil.Setup(t)
	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	course := testutil.CreateCourse(t, db, instructor.ID, 0, true)
	empty := testutil.CreateCourse(t, db, instructor.ID, 0, true)

	for _, e := range []courseModels.Enrollment{
		{Status: courseModels.EnrollmentActive, Progress: 50},
		{Status: courseModels.EnrollmentCompleted, Progress: 100},
		{Status: courseModels.EnrollmentActive, Progress: 0},
		{Status: courseModels.EnrollmentCancelled, Progress: 90},
	} {
		student := testutil.CreateUser(t, db, models.RoleStudent)
		e.UserID = student.ID
		e.CourseID = course.ID
		require.NoError(t, db.Create(&e).Error)
	}

	stats, err := services.EnrollmentStats(db, []uint{course.ID, empty.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats[course.ID].Enrollments, "cancelled enrollments are left out")
	assert.Equal(t, int64(1), stats[course.ID].Completed)
	assert.Equal(t, 50.0, stats[course.ID].AverageProgress)
	assert.Equal(t, 33.33, stats[course.ID].CompletionRate)
	assert.Equal(t, services.CourseEnrollmentStats{CourseID: empty.ID}, stats[empty.ID])
}
