package middleware

import (
	"eduhub/database"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CourseManager loads the course stored under c.Locals("courseID") and lets
// only its instructor or an admin through. The course is stored in c.Locals("course").
func CourseManager() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		course, err := services.FindCourse(database.Database.Db, courseIDLocal(c))
		if err != nil {
			if errors.Is(err, services.ErrCourseNotFound) {
				return JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
			}
			return InternalError(c, err, "Failed to load course!", map[string]interface{}{"area": "course-manager"})
		}

		if !services.CanManageCourse(user, course) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You can only manage your own courses!", nil)
		}

		c.Locals("course", course)
		return c.Next()
	}
}

// CourseAccess loads the course and requires the user to have access to its content
func CourseAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		db := database.Database.Db
		course, err := services.FindCourse(db, courseIDLocal(c))
		if err != nil {
			if errors.Is(err, services.ErrCourseNotFound) {
				return JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
			}
			return InternalError(c, err, "Failed to load course!", map[string]interface{}{"area": "course-access"})
		}

		if !course.IsPublished && !services.CanManageCourse(user, course) {
			return JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}

		hasAccess, err := services.HasCourseAccess(db, user, course, time.Now())
		if err != nil {
			return InternalError(c, err, "Failed to check course access!", map[string]interface{}{"area": "course-access"})
		}
		if !hasAccess {
			return JsonResponse(c, fiber.StatusForbidden, false, "Enroll in this course to access its content!", nil)
		}

		c.Locals("course", course)
		return c.Next()
	}
}

// CurrentCourse returns the course stored by CourseManager or CourseAccess
func CurrentCourse(c *fiber.Ctx) courseModels.Course {
	course, _ := c.Locals("course").(courseModels.Course)
	return course
}

func courseIDLocal(c *fiber.Ctx) uint {
	id, _ := c.Locals("courseID").(uint)
	return id
}
