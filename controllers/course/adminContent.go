package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	courseModels "eduhub/models/course"
	"eduhub/utils"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func findLesson(db *gorm.DB, courseID, lessonID uint) (courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error
	return lesson, err
}

func reportProgressError(err error, courseID, userID uint) {
	utils.ReportError(err, map[string]interface{}{"area": "progress", "course_id": courseID, "user_id": userID})
}

// CreateLesson adds a draft lesson to one of the course's modules
func CreateLesson(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	reqData, ok := validators.Get[courseValidator.LessonRequest](c, "validatedLesson")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, err := findModule(db, course.ID, reqData.ModuleID); err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"module_id": "Module does not belong to this course!"})
	}

	lesson := courseModels.Lesson{
		CourseID:        course.ID,
		ModuleID:        reqData.ModuleID,
		Title:           reqData.Title,
		ContentType:     reqData.ContentType,
		Content:         reqData.Content,
		VideoURL:        reqData.VideoURL,
		FileURL:         reqData.FileURL,
		DurationMinutes: reqData.DurationMinutes,
		OrderIndex:      reqData.OrderIndex,
		IsPreview:       reqData.IsPreview,
		IsPublished:     false,
	}

	if err := db.Create(&lesson).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to create lesson!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// UpdateLesson updates the provided fields of a lesson
func UpdateLesson(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	lesson, err := findLesson(db, course.ID, validators.ID(c, "lessonID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := validators.Get[courseValidator.UpdateLessonRequest](c, "validatedLessonUpdate")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.ModuleID != nil {
		if _, err := findModule(db, course.ID, *reqData.ModuleID); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"module_id": "Module does not belong to this course!"})
		}
		lesson.ModuleID = *reqData.ModuleID
	}
	if reqData.Title != nil {
		lesson.Title = *reqData.Title
	}
	if reqData.ContentType != nil {
		lesson.ContentType = *reqData.ContentType
	}
	if reqData.Content != nil {
		lesson.Content = *reqData.Content
	}
	if reqData.VideoURL != nil {
		lesson.VideoURL = *reqData.VideoURL
	}
	if reqData.FileURL != nil {
		lesson.FileURL = *reqData.FileURL
	}
	if reqData.DurationMinutes != nil {
		lesson.DurationMinutes = *reqData.DurationMinutes
	}
	if reqData.OrderIndex != nil {
		lesson.OrderIndex = *reqData.OrderIndex
	}
	if reqData.IsPreview != nil {
		lesson.IsPreview = *reqData.IsPreview
	}

	// The merged lesson must still carry the body its type needs
	if errs := courseValidator.CheckLessonBody(lesson.ContentType, lesson.Content, lesson.VideoURL, lesson.FileURL); len(errs) > 0 {
		return middleware.ValidationErrorResponse(c, errs)
	}

	if err := db.Save(&lesson).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update lesson!", map[string]interface{}{"lesson_id": lesson.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// DeleteLesson soft deletes a lesson and refreshes the progress of the course's enrollments
func DeleteLesson(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	lesson, err := findLesson(db, course.ID, validators.ID(c, "lessonID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if err := db.Model(&lesson).Updates(map[string]interface{}{"is_deleted": true, "is_published": false}).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to delete lesson!", map[string]interface{}{"lesson_id": lesson.ID})
	}

	if lesson.IsPublished {
		refreshCourseProgress(db, course.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// PublishLesson publishes or unpublishes a lesson. Either way the lesson total of every enrollment changes.
func PublishLesson(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	lesson, err := findLesson(db, course.ID, validators.ID(c, "lessonID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := validators.Get[courseValidator.PublishRequest](c, "validatedPublish")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	changed := lesson.IsPublished != *reqData.IsPublished
	lesson.IsPublished = *reqData.IsPublished

	if err := db.Model(&lesson).Update("is_published", lesson.IsPublished).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to publish lesson!", map[string]interface{}{"lesson_id": lesson.ID})
	}

	if changed {
		refreshCourseProgress(db, course.ID)
	}

	message := "Lesson unpublished successfully!"
	if lesson.IsPublished {
		message = "Lesson published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, lesson)
}
