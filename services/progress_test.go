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

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		completed, total int64
		want             float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{5, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, services.ProgressPercent(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestCourseCountsComplete(t *testing.T) {
	assert.False(t, services.CourseCounts{}.Complete(), "a course without lessons is never complete")
	assert.False(t, services.CourseCounts{TotalLessons: 2, CompletedLessons: 1}.Complete())
	assert.True(t, services.CourseCounts{TotalLessons: 2, CompletedLessons: 2}.Complete())
	assert.False(t, services.CourseCounts{TotalLessons: 2, CompletedLessons: 2, RequiredQuizzes: 1}.Complete())
	assert.True(t, services.CourseCounts{TotalLessons: 2, CompletedLessons: 2, RequiredQuizzes: 1, PassedRequiredQuizzes: 1}.Complete())
}

func TestRecalculateProgress(t *testing.T) {
	db := testutil.Setup(t)
	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	course := testutil.CreateCourse(t, db, instructor.ID, 0, true)
	module := testutil.CreateModule(t, db, course.ID)

	first := testutil.CreateLesson(t, db, course.ID, module.ID, true)
	second := testutil.CreateLesson(t, db, course.ID, module.ID, true)
	testutil.CreateLesson(t, db, course.ID, module.ID, false)
	quiz := testutil.CreateQuiz(t, db, course.ID, 50, 0, true)
	testutil.CreateEnrollment(t, db, student.ID, course.ID, courseModels.SourceFree)

	now := time.Now()
	done := func(lesson courseModels.Lesson) {
		require.NoError(t, db.Create(&courseModels.LessonProgress{
			UserID: student.ID, LessonID: lesson.ID, CourseID: course.ID, CompletedAt: now,
		}).Error)
	}

	done(first)
	enrollment, err := services.RecalculateProgress(db, student.ID, course.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 50.0, enrollment.Progress)
	assert.Equal(t, 1, enrollment.CompletedLessons)
	assert.Equal(t, 2, enrollment.TotalLessons, "unpublished lessons are not counted")
	assert.Equal(t, courseModels.EnrollmentActive, enrollment.Status)

	done(second)
	enrollment, err = services.RecalculateProgress(db, student.ID, course.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentActive, enrollment.Status, "the required quiz is not passed yet")

	require.NoError(t, db.Create(&courseModels.QuizAttempt{
		UserID: student.ID, QuizID: quiz.ID, CourseID: course.ID, Passed: true,
		Score: 1, MaxScore: 1, Percentage: 100, StartedAt: now, SubmittedAt: now,
	}).Error)
	enrollment, err = services.RecalculateProgress(db, student.ID, course.ID, now)
	require.NoError(t, err)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status)
	require.NotNil(t, enrollment.CompletedAt)

	testutil.CreateLesson(t, db, course.ID, module.ID, true)
	enrollment, err = services.RecalculateProgress(db, student.ID, course.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 66.67, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status, "completion is kept when content is added")
}

func TestRecalculateProgressWithoutEnrollment(t *testing.T) {
	db := testutil.Setup(t)
	_, err := services.RecalculateProgress(db, 42, 7, time.Now())
	assert.ErrorIs(t, err, services.ErrNotEnrolled)
}
