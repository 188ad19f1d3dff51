package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/validators"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeEnrollment returns the caller's enrollment when it grants access
func activeEnrollment(db *gorm.DB, userID, courseID uint) (courseModels.Enrollment, error) {
	enrollment, err := services.FindEnrollment(db, userID, courseID)
	if err != nil {
		return enrollment, err
	}
	if !enrollment.GrantsAccess() {
		return enrollment, services.ErrNotEnrolled
	}
	return enrollment, nil
}

// MarkLessonComplete records a completed lesson and refreshes the enrollment progress.
// Marking the same lesson twice is a no-op.
func MarkLessonComplete(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	if _, err := activeEnrollment(db, user.ID, course.ID); err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in this course to track your progress!", nil)
		}
		return middleware.InternalError(c, err, "Failed to update progress!", map[string]interface{}{"course_id": course.ID})
	}

	lesson, err := findLesson(db, course.ID, validators.ID(c, "lessonID"))
	if err != nil || !lesson.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	now := time.Now()
	progress := courseModels.LessonProgress{
		UserID:      user.ID,
		LessonID:    lesson.ID,
		CourseID:    course.ID,
		CompletedAt: now,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&progress).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update progress!", map[string]interface{}{"lesson_id": lesson.ID})
	}

	enrollment, err := services.RecalculateProgress(db, user.ID, course.ID, now)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to update progress!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as complete!", fiber.Map{
		"lesson_id":  lesson.ID,
		"enrollment": enrollment,
	})
}

type moduleProgress struct {
	ModuleID         uint    `json:"module_id"`
	Title            string  `json:"title"`
	TotalLessons     int     `json:"total_lessons"`
	CompletedLessons int     `json:"completed_lessons"`
	Progress         float64 `json:"progress"`
}

// GetUserProgress returns the caller's progress through a course
func GetUserProgress(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	enrollment, err := services.FindEnrollment(db, user.ID, course.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this course!", nil)
		}
		return middleware.InternalError(c, err, "Failed to fetch progress!", map[string]interface{}{"course_id": course.ID})
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_published = ? AND is_deleted = ?", course.ID, true, false).
		Find(&lessons).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch progress!", map[string]interface{}{"course_id": course.ID})
	}

	var completedIDs []uint
	if err := db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Pluck("lesson_id", &completedIDs).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch progress!", map[string]interface{}{"course_id": course.ID})
	}
	done := make(map[uint]bool, len(completedIDs))
	for _, id := range completedIDs {
		done[id] = true
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch progress!", map[string]interface{}{"course_id": course.ID})
	}

	perModule := make(map[uint]*moduleProgress, len(modules))
	result := make([]*moduleProgress, 0, len(modules))
	for _, m := range modules {
		mp := &moduleProgress{ModuleID: m.ID, Title: m.Title}
		perModule[m.ID] = mp
		result = append(result, mp)
	}

	// only published lessons count, so stale rows for removed lessons are left out
	completed := make([]uint, 0, len(lessons))
	for _, l := range lessons {
		mp, ok := perModule[l.ModuleID]
		if ok {
			mp.TotalLessons++
		}
		if done[l.ID] {
			completed = append(completed, l.ID)
			if ok {
				mp.CompletedLessons++
			}
		}
	}
	for _, mp := range result {
		mp.Progress = services.ProgressPercent(int64(mp.CompletedLessons), int64(mp.TotalLessons))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":           enrollment,
		"completed_lesson_ids": completed,
		"modules":              result,
	})
}
