package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/validators"
	"time"

	"github.com/gofiber/fiber/v2"
)

type studentCourseProgress struct {
	CourseID         uint       `json:"course_id"`
	CourseTitle      string     `json:"course_title"`
	Status           string     `json:"status"`
	Source           string     `json:"source"`
	Progress         float64    `json:"progress"`
	CompletedLessons int        `json:"completed_lessons"`
	TotalLessons     int        `json:"total_lessons"`
	EnrolledAt       time.Time  `json:"enrolled_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// AdminStudentProgress reports a student's progress in every course and a summary of their quiz attempts
func AdminStudentProgress(c *fiber.Ctx) error {
	db := database.Database.Db

	var student models.User
	if err := db.Where("id = ? AND is_deleted = ?", validators.ID(c, "targetUserID"), false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := db.Preload("Course").Where("user_id = ? AND is_deleted = ?", student.ID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch enrollments!", map[string]interface{}{"user_id": student.ID})
	}

	courses := make([]studentCourseProgress, len(enrollments))
	for i, e := range enrollments {
		title := ""
		if e.Course != nil {
			title = e.Course.Title
		}
		courses[i] = studentCourseProgress{
			CourseID:         e.CourseID,
			CourseTitle:      title,
			Status:           e.Status,
			Source:           e.Source,
			Progress:         e.Progress,
			CompletedLessons: e.CompletedLessons,
			TotalLessons:     e.TotalLessons,
			EnrolledAt:       e.CreatedAt,
			CompletedAt:      e.CompletedAt,
		}
	}

	var summary struct {
		TotalAttempts  int64
		PassedAttempts int64
		AvgPercentage  float64
	}
	if err := db.Model(&courseModels.QuizAttempt{}).
		Select("COUNT(*) AS total_attempts, "+
			"COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0) AS passed_attempts, "+
			"COALESCE(AVG(percentage), 0) AS avg_percentage").
		Where("user_id = ? AND is_deleted = ?", student.ID, false).
		Scan(&summary).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch quiz attempts!", map[string]interface{}{"user_id": student.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student progress fetched successfully!", fiber.Map{
		"student": fiber.Map{
			"id":    student.ID,
			"name":  student.Name,
			"email": student.Email,
			"role":  student.Role,
		},
		"course_progress": courses,
		"quiz_summary": fiber.Map{
			"total_attempts":     summary.TotalAttempts,
			"passed_attempts":    summary.PassedAttempts,
			"average_percentage": services.Round2(summary.AvgPercentage),
			"pass_rate":          services.CompletionRate(summary.PassedAttempts, summary.TotalAttempts),
		},
	})
}
