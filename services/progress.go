package services

import (
	courseModels "eduhub/models/course"
	"math"
	"time"

	"gorm.io/gorm"
)

// CourseCounts are the figures progress is computed from
type CourseCounts struct {
	TotalLessons          int64
	CompletedLessons      int64
	RequiredQuizzes       int64
	PassedRequiredQuizzes int64
}

// Complete reports whether every published lesson is done and every required quiz passed.
// A course without lessons is never complete.
func (c CourseCounts) Complete() bool {
	return c.TotalLessons > 0 &&
		c.CompletedLessons >= c.TotalLessons &&
		c.PassedRequiredQuizzes >= c.RequiredQuizzes
}

// Round2 rounds to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ProgressPercent returns completed/total as a percentage in [0, 100]
func ProgressPercent(completed, total int64) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return Round2(float64(completed) / float64(total) * 100)
}

// CountProgress gathers the user's lesson and required quiz figures for a course
func CountProgress(db *gorm.DB, userID, courseID uint) (CourseCounts, error) {
	var counts CourseCounts

	if err := db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_published = ? AND is_deleted = ?", courseID, true, false).
		Count(&counts.TotalLessons).Error; err != nil {
		return counts, err
	}

	if err := db.Model(&courseModels.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lessons.course_id = ? AND lessons.is_published = ? AND lessons.is_deleted = ?",
			userID, courseID, true, false).
		Count(&counts.CompletedLessons).Error; err != nil {
		return counts, err
	}

	if err := db.Model(&courseModels.Quiz{}).
		Where("course_id = ? AND is_required = ? AND is_published = ? AND is_deleted = ?", courseID, true, true, false).
		Count(&counts.RequiredQuizzes).Error; err != nil {
		return counts, err
	}

	if counts.RequiredQuizzes > 0 {
		if err := db.Model(&courseModels.QuizAttempt{}).
			Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
			Where("quiz_attempts.user_id = ? AND quiz_attempts.passed = ? AND quiz_attempts.is_deleted = ?", userID, true, false).
			Where("quizzes.course_id = ? AND quizzes.is_required = ? AND quizzes.is_published = ? AND quizzes.is_deleted = ?",
				courseID, true, true, false).
			Distinct("quiz_attempts.quiz_id").
			Count(&counts.PassedRequiredQuizzes).Error; err != nil {
			return counts, err
		}
	}

	return counts, nil
}

// RecalculateProgress refreshes the stored progress of an enrollment.
// COMPLETED is sticky: content added later does not take a finished course away.
func RecalculateProgress(db *gorm.DB, userID, courseID uint, at time.Time) (courseModels.Enrollment, error) {
	enrollment, err := FindEnrollment(db, userID, courseID)
	if err != nil {
		return enrollment, err
	}

	counts, err := CountProgress(db, userID, courseID)
	if err != nil {
		return enrollment, err
	}

	enrollment.TotalLessons = int(counts.TotalLessons)
	enrollment.CompletedLessons = int(counts.CompletedLessons)
	enrollment.Progress = ProgressPercent(counts.CompletedLessons, counts.TotalLessons)

	if enrollment.Status == courseModels.EnrollmentActive && counts.Complete() {
		enrollment.Status = courseModels.EnrollmentCompleted
		completedAt := at
		enrollment.CompletedAt = &completedAt
	}

	if err := db.Save(&enrollment).Error; err != nil {
		return enrollment, err
	}
	return enrollment, nil
}
