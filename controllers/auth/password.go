package authController

import (
	"eduhub/config"
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/utils"
	"eduhub/validators"
	authValidator "eduhub/validators/auth"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	otpValidity    = 10 * time.Minute
	maxOTPAttempts = 5
)

// ForgotPassword mails a reset code. The answer is the same whether or not the
// email is registered.
func ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := validators.Get[authValidator.ForgotPasswordRequest](c, "validatedForgotPassword")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	const sent = "If the email is registered, a reset code has been sent."
	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, sent, nil)
	}
	if user.IsBlocked && user.BlockedUntil == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, sent, nil)
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return middleware.InternalError(c, err, "Failed to send reset code!", map[string]interface{}{"area": "password-reset"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to send reset code!", map[string]interface{}{"area": "password-reset"})
	}

	otp := models.OTP{
		UserID:    user.ID,
		Email:     user.Email,
		CodeHash:  string(hash),
		Purpose:   models.OTPPasswordReset,
		ExpiresAt: time.Now().Add(otpValidity),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		// a new code replaces the ones sent before
		if err := tx.Model(&models.OTP{}).
			Where("user_id = ? AND purpose = ? AND is_used = ?", user.ID, models.OTPPasswordReset, false).
			Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Create(&otp).Error
	})
	if err != nil {
		return middleware.InternalError(c, err, "Failed to send reset code!", map[string]interface{}{"area": "password-reset", "user_id": user.ID})
	}

	utils.SendPasswordResetEmail(user.Email, user.Name, code, otpValidity)
	return middleware.JsonResponse(c, fiber.StatusOK, true, sent, nil)
}

// ResetPassword checks the mailed code and sets the new password. A successful
// reset also clears a failed login lockout.
func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := validators.Get[authValidator.ResetPasswordRequest](c, "validatedResetPassword")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	const invalid = "Invalid or expired code!"
	db := database.Database.Db
	now := time.Now()

	var otp models.OTP
	if err := db.Where("email = ? AND purpose = ? AND is_used = ? AND is_deleted = ?",
		reqData.Email, models.OTPPasswordReset, false, false).
		Order("created_at desc").First(&otp).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, invalid, nil)
	}
	if !otp.ExpiresAt.After(now) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, invalid, nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(reqData.Code)); err != nil {
		otp.Attempts++
		updates := map[string]interface{}{"attempts": otp.Attempts}
		if otp.Attempts >= maxOTPAttempts {
			updates["is_used"] = true
		}
		if err := db.Model(&otp).Updates(updates).Error; err != nil {
			log.Printf("Error saving reset code attempt: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, invalid, nil)
	}

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", otp.UserID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, invalid, nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to reset password!", map[string]interface{}{"area": "password-reset"})
	}

	updates := map[string]interface{}{
		"password":              string(hashedPassword),
		"failed_login_attempts": 0,
		"last_failed_login":     nil,
	}
	if user.IsBlocked && user.BlockedUntil != nil {
		updates["is_blocked"] = false
		updates["blocked_until"] = nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&otp).Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(updates).Error
	})
	if err != nil {
		return middleware.InternalError(c, err, "Failed to reset password!", map[string]interface{}{"area": "password-reset", "user_id": user.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully. You can log in now.", nil)
}
