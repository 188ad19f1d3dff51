package controllers

import (
	"eduhub/config"
	"eduhub/database"
	"eduhub/middleware"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/utils"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"
	"log"

	"github.com/gofiber/fiber/v2"
)

const maxThumbnailSize = 5 * 1024 * 1024

// CreateCourse creates a draft course owned by the caller
func CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := validators.Get[courseValidator.CreateCourseRequest](c, "validatedCourse")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		InstructorID: user.ID,
		Title:        reqData.Title,
		Slug:         utils.UniqueSlug(reqData.Title),
		Description:  reqData.Description,
		Category:     reqData.Category,
		Level:        reqData.Level,
		Price:        reqData.Price,
		Currency:     reqData.Currency,
		ThumbnailURL: reqData.ThumbnailURL,
		Status:       courseModels.StatusDraft,
		IsPublished:  false,
	}
	if course.Level == "" {
		course.Level = courseModels.LevelBeginner
	}
	if course.Currency == "" {
		course.Currency = config.AppConfig.StripeCurrency
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to create course!", map[string]interface{}{"user_id": user.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse updates the provided fields of a course
func UpdateCourse(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)

	reqData, ok := validators.Get[courseValidator.UpdateCourseRequest](c, "validatedCourseUpdate")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != nil {
		course.Title = *reqData.Title
	}
	if reqData.Description != nil {
		course.Description = *reqData.Description
	}
	if reqData.Category != nil {
		course.Category = *reqData.Category
	}
	if reqData.Level != nil {
		course.Level = *reqData.Level
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}
	if reqData.Currency != nil {
		course.Currency = *reqData.Currency
	}
	if reqData.ThumbnailURL != nil {
		course.ThumbnailURL = *reqData.ThumbnailURL
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update course!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse soft deletes a course and takes it out of the catalogue
func DeleteCourse(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)

	updates := map[string]interface{}{
		"is_deleted":   true,
		"is_published": false,
		"status":       courseModels.StatusArchived,
	}
	if err := database.Database.Db.Model(&course).Updates(updates).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to delete course!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// PublishCourse publishes or unpublishes a course. Publishing needs at least one published lesson.
func PublishCourse(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)

	reqData, ok := validators.Get[courseValidator.PublishRequest](c, "validatedPublish")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	publish := *reqData.IsPublished

	if publish {
		var lessonCount int64
		if err := db.Model(&courseModels.Lesson{}).
			Where("course_id = ? AND is_published = ? AND is_deleted = ?", course.ID, true, false).
			Count(&lessonCount).Error; err != nil {
			return middleware.InternalError(c, err, "Failed to publish course!", map[string]interface{}{"course_id": course.ID})
		}
		if lessonCount == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Add at least one published lesson before publishing the course!", nil)
		}
	}

	course.IsPublished = publish
	course.Status = courseModels.StatusDraft
	if publish {
		course.Status = courseModels.StatusPublished
	}

	if err := db.Model(&course).Updates(map[string]interface{}{
		"is_published": course.IsPublished,
		"status":       course.Status,
	}).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to publish course!", map[string]interface{}{"course_id": course.ID})
	}

	message := "Course unpublished successfully!"
	if publish {
		message = "Course published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

// UploadThumbnail stores a multipart "thumbnail" image and points the course at it
func UploadThumbnail(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"thumbnail": "Thumbnail is required!"})
	}
	if file.Size > maxThumbnailSize {
		return middleware.ValidationErrorResponse(c, map[string]string{"thumbnail": "Thumbnail must be at most 5MB!"})
	}

	fileName, err := utils.SaveUploadedImage(file, config.AppConfig.UploadDir)
	if err != nil {
		log.Printf("Error saving thumbnail for course %d: %v", course.ID, err)
		return middleware.ValidationErrorResponse(c, map[string]string{"thumbnail": "Thumbnail must be a jpg, png, webp or gif image!"})
	}

	course.ThumbnailURL = utils.GetFileURL(fileName)
	if err := database.Database.Db.Model(&course).Update("thumbnail_url", course.ThumbnailURL).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update thumbnail!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", course)
}

type courseWithStats struct {
	courseModels.Course
	Stats services.CourseEnrollmentStats `json:"stats"`
}

// InstructorCourses lists the caller's courses with their enrollment figures
func InstructorCourses(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var courses []courseModels.Course
	if err := db.Where("instructor_id = ? AND is_deleted = ?", user.ID, false).
		Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch courses!", nil)
	}

	ids := make([]uint, len(courses))
	for i, course := range courses {
		ids[i] = course.ID
	}
	stats, err := services.EnrollmentStats(db, ids)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch course statistics!", nil)
	}

	result := make([]courseWithStats, len(courses))
	for i, course := range courses {
		result[i] = courseWithStats{Course: course, Stats: stats[course.ID]}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": result,
		"total":   len(result),
	})
}
