package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/utils"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse enrolls the caller. Free courses are joined directly, paid
// courses need an active subscription or a completed checkout.
func EnrollInCourse(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := services.FindCourse(db, validators.ID(c, "courseID"))
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.InternalError(c, err, "Failed to enroll!", nil)
	}
	if !course.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	existing, err := services.FindEnrollment(db, user.ID, course.ID)
	if err != nil && !errors.Is(err, services.ErrNotEnrolled) {
		return middleware.InternalError(c, err, "Failed to enroll!", map[string]interface{}{"course_id": course.ID, "user_id": user.ID})
	}
	if err == nil && existing.GrantsAccess() {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", existing)
	}

	source := courseModels.SourceFree
	if !course.IsFree() {
		sub, err := services.ActiveSubscription(db, user.ID, time.Now())
		if err != nil {
			return middleware.InternalError(c, err, "Failed to enroll!", map[string]interface{}{"course_id": course.ID})
		}
		if sub == nil {
			return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "This course requires a purchase or an active subscription!", fiber.Map{
				"price":    course.Price,
				"currency": course.Currency,
				"checkout": "/payment/checkout/course/" + strconv.FormatUint(uint64(course.ID), 10),
			})
		}
		source = courseModels.SourceSubscription
	}

	enrollment, err := services.Enroll(db, user.ID, course.ID, source, nil)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyEnrolled) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", enrollment)
		}
		return middleware.InternalError(c, err, "Failed to enroll!", map[string]interface{}{"course_id": course.ID, "user_id": user.ID})
	}

	utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", enrollment)
}

// CancelEnrollment cancels the caller's enrollment
func CancelEnrollment(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	courseID := validators.ID(c, "courseID")

	enrollment, err := services.CancelEnrollment(database.Database.Db, user.ID, courseID)
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this course!", nil)
		}
		return middleware.InternalError(c, err, "Failed to cancel enrollment!", map[string]interface{}{"course_id": courseID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment cancelled successfully!", enrollment)
}

// GetUserEnrollments lists the caller's enrollments with their courses
func GetUserEnrollments(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := validators.Get[courseValidator.EnrollmentListQuery](c, "validatedEnrollmentList")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	p := validators.GetPagination(c)

	db := database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND is_deleted = ?", user.ID, false)
	if reqData.Status != "" {
		db = db.Where("status = ?", reqData.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch enrollments!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := db.Preload("Course").Offset(p.Offset()).Limit(p.Limit).Order("created_at desc").
		Find(&enrollments).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination":  p.Meta(total),
	})
}

type enrollmentWithUser struct {
	courseModels.Enrollment
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// CourseEnrollments lists the students of a course for its instructor
func CourseEnrollments(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	reqData, ok := validators.Get[courseValidator.EnrollmentListQuery](c, "validatedEnrollmentList")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	p := validators.GetPagination(c)

	db := database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false)
	if reqData.Status != "" {
		db = db.Where("status = ?", reqData.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch enrollments!", map[string]interface{}{"course_id": course.ID})
	}

	var enrollments []courseModels.Enrollment
	if err := db.Offset(p.Offset()).Limit(p.Limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch enrollments!", map[string]interface{}{"course_id": course.ID})
	}

	userIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		userIDs = append(userIDs, e.UserID)
	}
	users := make(map[uint]models.User, len(userIDs))
	if len(userIDs) > 0 {
		var rows []models.User
		if err := database.Database.Db.Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
			return middleware.InternalError(c, err, "Failed to fetch enrollments!", map[string]interface{}{"course_id": course.ID})
		}
		for _, u := range rows {
			users[u.ID] = u
		}
	}

	result := make([]enrollmentWithUser, 0, len(enrollments))
	for _, e := range enrollments {
		u := users[e.UserID]
		result = append(result, enrollmentWithUser{Enrollment: e, UserName: u.Name, UserEmail: u.Email})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"pagination":  p.Meta(total),
	})
}
