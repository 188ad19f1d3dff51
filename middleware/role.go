package middleware

import (
	"eduhub/database"
	"eduhub/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequireRoles loads the authenticated user and rejects it unless it has one of the roles.
// With no roles any active user passes. The user is stored in c.Locals("user").
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		var user models.User
		err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		if user.IsLocked(time.Now()) {
			return JsonResponse(c, fiber.StatusForbidden, false, "Your account is blocked!", nil)
		}

		if len(roles) > 0 && !hasRole(user.Role, roles) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireRoles
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals("user").(models.User)
	return user, ok
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
