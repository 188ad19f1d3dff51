package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists published courses
func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := validators.Get[courseValidator.CourseListQuery](c, "validatedCourseList")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	p := validators.GetPagination(c)

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("is_published = ? AND is_deleted = ?", true, false)
	if reqData.Category != "" {
		db = db.Where("category = ?", reqData.Category)
	}
	if reqData.Level != "" {
		db = db.Where("level = ?", reqData.Level)
	}
	if reqData.Search != "" {
		like := "%" + strings.ToLower(reqData.Search) + "%"
		db = db.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch courses!", nil)
	}

	var courses []courseModels.Course
	if err := db.Offset(p.Offset()).Limit(p.Limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"pagination": p.Meta(total),
	})
}

type moduleOutline struct {
	courseModels.Module
	Lessons []courseModels.Lesson `json:"lessons"`
}

type quizOutline struct {
	ID           uint   `json:"id"`
	ModuleID     *uint  `json:"module_id"`
	Title        string `json:"title"`
	PassingScore int    `json:"passing_score"`
	MaxAttempts  int    `json:"max_attempts"`
	IsRequired   bool   `json:"is_required"`
}

// GetCourseDetails returns the course outline. Lesson bodies are included for
// preview lessons and for users with access to the course.
func GetCourseDetails(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db
	course, err := services.FindCourse(db, validators.ID(c, "courseID"))
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.InternalError(c, err, "Failed to fetch course!", nil)
	}

	manager := services.CanManageCourse(user, course)
	if !course.IsPublished && !manager {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	hasAccess, err := services.HasCourseAccess(db, user, course, time.Now())
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch course!", nil)
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch modules!", nil)
	}

	lessonQuery := db.Where("course_id = ? AND is_deleted = ?", course.ID, false)
	if !manager {
		lessonQuery = lessonQuery.Where("is_published = ?", true)
	}
	var lessons []courseModels.Lesson
	if err := lessonQuery.Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch lessons!", nil)
	}

	byModule := make(map[uint][]courseModels.Lesson)
	for _, lesson := range lessons {
		if !hasAccess && !lesson.IsPreview {
			lesson.StripContent()
		}
		byModule[lesson.ModuleID] = append(byModule[lesson.ModuleID], lesson)
	}

	outline := make([]moduleOutline, len(modules))
	for i, m := range modules {
		outline[i] = moduleOutline{Module: m, Lessons: byModule[m.ID]}
		if outline[i].Lessons == nil {
			outline[i].Lessons = []courseModels.Lesson{}
		}
	}

	quizQuery := db.Model(&courseModels.Quiz{}).Where("course_id = ? AND is_deleted = ?", course.ID, false)
	if !manager {
		quizQuery = quizQuery.Where("is_published = ?", true)
	}
	var quizzes []quizOutline
	if err := quizQuery.Select("id, module_id, title, passing_score, max_attempts, is_required").
		Order("id asc").Scan(&quizzes).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch quizzes!", nil)
	}
	if quizzes == nil {
		quizzes = []quizOutline{}
	}

	var instructor models.User
	db.Select("id, name, bio, avatar_url").Where("id = ?", course.InstructorID).First(&instructor)

	var enrollment *courseModels.Enrollment
	if e, err := services.FindEnrollment(db, user.ID, course.ID); err == nil {
		enrollment = &e
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":     course,
		"instructor": fiber.Map{"id": instructor.ID, "name": instructor.Name, "bio": instructor.Bio, "avatar_url": instructor.AvatarURL},
		"modules":    outline,
		"quizzes":    quizzes,
		"has_access": hasAccess,
		"enrollment": enrollment,
	})
}
