package superAdminController

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/utils"
	"eduhub/validators"
	authValidator "eduhub/validators/auth"
	courseValidator "eduhub/validators/course"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func UserList(c *fiber.Ctx) error {
	reqData, ok := validators.Get[authValidator.UserListQuery](c, "validatedUserList")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	p := validators.GetPagination(c)

	db := database.Database.Db.Model(&models.User{}).Where("is_deleted = ?", false)
	if reqData.Role != "" {
		db = db.Where("role = ?", reqData.Role)
	}
	if reqData.Search != "" {
		like := "%" + strings.ToLower(reqData.Search) + "%"
		db = db.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}

	var users []models.User
	if err := db.Order("created_at desc").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User list.", fiber.Map{
		"users":      users,
		"pagination": p.Meta(total),
	})
}

// loadTarget fetches the user addressed by the :id parameter
func loadTarget(c *fiber.Ctx) (models.User, error) {
	var target models.User
	err := database.Database.Db.Where("id = ? AND is_deleted = ?", validators.ID(c, "targetUserID"), false).First(&target).Error
	return target, err
}

func UpdateUserRole(c *fiber.Ctx) error {
	admin, _ := middleware.CurrentUser(c)

	reqData, ok := validators.Get[authValidator.UpdateRoleRequest](c, "validatedRole")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	target, err := loadTarget(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if target.ID == admin.ID && reqData.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot remove your own admin role!", nil)
	}

	if err := database.Database.Db.Model(&target).Update("role", reqData.Role).Error; err != nil {
		log.Printf("Error updating role of user %d: %v", target.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update role!", nil)
	}
	target.Role = reqData.Role

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully.", target)
}

func BlockUser(c *fiber.Ctx) error {
	admin, _ := middleware.CurrentUser(c)

	reqData, ok := validators.Get[authValidator.BlockUserRequest](c, "validatedBlock")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	target, err := loadTarget(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if target.ID == admin.ID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot block yourself!", nil)
	}

	// An admin block has no end date; unblocking also clears a login lockout
	updates := map[string]interface{}{
		"is_blocked":            *reqData.Blocked,
		"blocked_until":         nil,
		"failed_login_attempts": 0,
		"last_failed_login":     nil,
	}
	if err := database.Database.Db.Model(&target).Updates(updates).Error; err != nil {
		log.Printf("Error blocking user %d: %v", target.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}
	target.IsBlocked = *reqData.Blocked
	target.BlockedUntil = nil

	message := "User unblocked successfully."
	if target.IsBlocked {
		message = "User blocked successfully."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, target)
}

// EnrollUser enrolls a user in a course on the admin's behalf
func EnrollUser(c *fiber.Ctx) error {
	reqData, ok := validators.Get[courseValidator.AdminEnrollRequest](c, "validatedAdminEnroll")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	course, err := services.FindCourse(db, validators.ID(c, "courseID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var student models.User
	if err := db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	enrollment, err := services.Enroll(db, student.ID, course.ID, courseModels.SourceAdmin, nil)
	if errors.Is(err, services.ErrAlreadyEnrolled) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", enrollment)
	}
	if err != nil {
		utils.ReportError(err, map[string]interface{}{"area": "admin-enroll", "course_id": course.ID, "user_id": student.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll user!", nil)
	}

	utils.SendEnrollmentEmail(student.Email, student.Name, course.Title)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User enrolled successfully!", enrollment)
}
