package paymentController

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/services"
	"eduhub/utils"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetMySubscription returns the caller's latest subscription and whether it unlocks paid courses
func GetMySubscription(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db
	now := time.Now()

	var sub models.Subscription
	err := db.Where("user_id = ? AND is_deleted = ?", user.ID, false).Order("created_at desc").First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "No subscription found!", fiber.Map{
			"subscription": nil,
			"has_access":   false,
		})
	}
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch subscription!", nil)
	}

	active, err := services.ActiveSubscription(db, user.ID, now)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch subscription!", nil)
	}
	if active != nil {
		sub = *active
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription fetched successfully!", fiber.Map{
		"subscription": sub,
		"has_access":   active != nil,
	})
}

// CancelSubscription stops the caller's subscription from renewing. Access
// lasts until the end of the paid period.
func CancelSubscription(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	sub, err := services.ActiveSubscription(db, user.ID, time.Now())
	if err != nil {
		return middleware.InternalError(c, err, "Failed to cancel subscription!", nil)
	}
	if sub == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active subscription found!", nil)
	}
	if sub.CancelAtPeriodEnd {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Subscription is already set to cancel!", sub)
	}

	if _, err := utils.CancelSubscriptionAtPeriodEnd(sub.StripeSubscriptionID); err != nil {
		return middleware.InternalError(c, err, "Failed to cancel subscription!", map[string]interface{}{"area": "stripe", "subscription_id": sub.StripeSubscriptionID})
	}

	sub.CancelAtPeriodEnd = true
	if err := db.Model(sub).Update("cancel_at_period_end", true).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to cancel subscription!", map[string]interface{}{"subscription_id": sub.StripeSubscriptionID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription will be cancelled at the end of the current period!", sub)
}
