package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// findModule loads a module of the course
func findModule(db *gorm.DB, courseID, moduleID uint) (courseModels.Module, error) {
	var module courseModels.Module
	err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error
	return module, err
}

// CreateModule adds a module to the course
func CreateModule(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)

	reqData, ok := validators.Get[courseValidator.ModuleRequest](c, "validatedModule")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module := courseModels.Module{
		CourseID:    course.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to create module!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// UpdateModule updates a module of the course
func UpdateModule(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	module, err := findModule(db, course.ID, validators.ID(c, "moduleID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := validators.Get[courseValidator.UpdateModuleRequest](c, "validatedModuleUpdate")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != nil {
		module.Title = *reqData.Title
	}
	if reqData.Description != nil {
		module.Description = *reqData.Description
	}
	if reqData.OrderIndex != nil {
		module.OrderIndex = *reqData.OrderIndex
	}

	if err := db.Save(&module).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update module!", map[string]interface{}{"module_id": module.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule soft deletes a module together with its lessons and quizzes,
// then refreshes the progress of every enrollment of the course
func DeleteModule(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	module, err := findModule(db, course.ID, validators.ID(c, "moduleID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&module).Update("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&courseModels.Lesson{}).Where("module_id = ?", module.ID).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&courseModels.Quiz{}).Where("module_id = ?", module.ID).Update("is_deleted", true).Error
	})
	if err != nil {
		return middleware.InternalError(c, err, "Failed to delete module!", map[string]interface{}{"module_id": module.ID})
	}

	refreshCourseProgress(db, course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// ListModules lists the modules of a course with all their lessons, drafts included
func ListModules(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch modules!", nil)
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch lessons!", nil)
	}

	byModule := make(map[uint][]courseModels.Lesson)
	for _, lesson := range lessons {
		byModule[lesson.ModuleID] = append(byModule[lesson.ModuleID], lesson)
	}

	outline := make([]moduleOutline, len(modules))
	for i, m := range modules {
		outline[i] = moduleOutline{Module: m, Lessons: byModule[m.ID]}
		if outline[i].Lessons == nil {
			outline[i].Lessons = []courseModels.Lesson{}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", fiber.Map{
		"modules": outline,
		"total":   len(outline),
	})
}

// refreshCourseProgress recomputes every live enrollment of the course after its content changed.
// Failures are reported and do not fail the request.
func refreshCourseProgress(db *gorm.DB, courseID uint) {
	var userIDs []uint
	if err := db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ? AND status <> ?", courseID, false, courseModels.EnrollmentCancelled).
		Pluck("user_id", &userIDs).Error; err != nil {
		reportProgressError(err, courseID, 0)
		return
	}

	at := time.Now()
	for _, userID := range userIDs {
		if _, err := services.RecalculateProgress(db, userID, courseID, at); err != nil && !errors.Is(err, services.ErrNotEnrolled) {
			reportProgressError(err, courseID, userID)
		}
	}
}
