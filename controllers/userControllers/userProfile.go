package userController

import (
	"eduhub/config"
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/validators"
	authValidator "eduhub/validators/auth"
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := validators.Get[authValidator.UpdateProfileRequest](c, "validatedProfile")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Name != nil {
		updates["name"] = *reqData.Name
	}
	if reqData.Bio != nil {
		updates["bio"] = *reqData.Bio
	}
	if reqData.AvatarURL != nil {
		updates["avatar_url"] = *reqData.AvatarURL
	}

	db := database.Database.Db
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Error updating profile of user %d: %v", user.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	if err := db.First(&user, user.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load profile!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

func ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := validators.Get[authValidator.ChangePasswordRequest](c, "validatedPassword")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Current password is incorrect!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := database.Database.Db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		log.Printf("Error updating password of user %d: %v", user.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to change password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}

func LoginHistoryList(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	p := validators.GetPagination(c)
	db := database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", user.ID, false)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	var loginTracking []models.LoginTracking
	if err := db.Order("timestamp desc").Offset(p.Offset()).Limit(p.Limit).Find(&loginTracking).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": loginTracking,
		"pagination":    p.Meta(total),
	})
}
