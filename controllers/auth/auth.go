package authController

import (
	"eduhub/config"
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/utils"
	"eduhub/validators"
	authValidator "eduhub/validators/auth"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := validators.Get[authValidator.SignupRequest](c, "validatedSignup")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists, soft deleted accounts included
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", reqData.Email).Count(&count).Error; err != nil {
		log.Printf("Error checking email: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}
	if count > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashedPassword),
		Role:     reqData.Role,
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	utils.SendWelcomeEmail(newUser.Email, newUser.Name)

	token, err := middleware.GenerateJWT(newUser)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", fiber.Map{
		"user":  newUser,
		"token": token,
	})
}

func Login(c *fiber.Ctx) error {
	reqData, ok := validators.Get[authValidator.LoginRequest](c, "validatedLogin")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
		}
		log.Printf("Error loading user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	now := time.Now()

	if user.IsLocked(now) {
		trackLogin(c, db, user.ID, false)
		if user.BlockedUntil == nil {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account has been blocked. Contact support.", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account is temporarily locked. Try again later.", nil)
	}

	// An expired lockout or an old failure streak starts over
	if user.IsBlocked && user.BlockedUntil != nil {
		user.IsBlocked = false
		user.BlockedUntil = nil
		user.FailedLoginAttempts = 0
	}
	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > lockoutDuration {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		locked := user.FailedLoginAttempts >= maxFailedLogins
		if locked {
			unblockTime := now.Add(lockoutDuration)
			user.IsBlocked = true
			user.BlockedUntil = &unblockTime
		}

		if err := db.Save(&user).Error; err != nil {
			log.Printf("Error saving failed login: %v", err)
		}
		trackLogin(c, db, user.ID, false)

		if locked {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Too many failed attempts. Your account is locked for 15 minutes.", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}
	trackLogin(c, db, user.ID, true)

	token, err := middleware.GenerateJWT(user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// trackLogin records the login attempt with the caller's ip and user agent
func trackLogin(c *fiber.Ctx, db *gorm.DB, userID uint, success bool) {
	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}

	loginTracking := models.LoginTracking{
		UserID:    userID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Success:   success,
		Timestamp: time.Now(),
	}
	if err := db.Create(&loginTracking).Error; err != nil {
		log.Printf("Error saving login tracking details: %v", err)
	}
}
