package paymentController

import (
	"eduhub/config"
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/services"
	"eduhub/utils"
	"eduhub/validators"
	paymentValidator "eduhub/validators/payment"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
)

// metadata keys written on every checkout session
const (
	metaUserID   = "user_id"
	metaCourseID = "course_id"
	metaPlanName = "plan_name"
)

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// customerParams points the session at the user's Stripe customer, or pre-fills the email
func customerParams(params *stripe.CheckoutSessionParams, user models.User) {
	if user.StripeCustomerID != "" {
		params.Customer = stripe.String(user.StripeCustomerID)
		return
	}
	params.CustomerEmail = stripe.String(user.Email)
}

// CheckoutCourse opens a Stripe Checkout session for a one-off course purchase
func CheckoutCourse(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	course, err := services.FindCourse(db, validators.ID(c, "courseID"))
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.InternalError(c, err, "Failed to start checkout!", nil)
	}
	if !course.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if course.IsFree() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This course is free, enroll directly!", nil)
	}

	enrollment, err := services.FindEnrollment(db, user.ID, course.ID)
	if err == nil && enrollment.GrantsAccess() {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
	}
	if err != nil && !errors.Is(err, services.ErrNotEnrolled) {
		return middleware.InternalError(c, err, "Failed to start checkout!", map[string]interface{}{"course_id": course.ID})
	}

	currency := course.Currency
	if currency == "" {
		currency = config.AppConfig.StripeCurrency
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(config.AppConfig.StripeSuccessURL),
		CancelURL:         stripe.String(config.AppConfig.StripeCancelURL),
		ClientReferenceID: stripe.String(formatID(user.ID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(course.Price),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(course.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	customerParams(params, user)
	params.AddMetadata(metaUserID, formatID(user.ID))
	params.AddMetadata(metaCourseID, formatID(course.ID))

	session, err := utils.NewCheckoutSession(params)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to start checkout!", map[string]interface{}{"area": "stripe", "course_id": course.ID})
	}

	courseID := course.ID
	instructorID := course.InstructorID
	sessionID := session.ID
	payment := models.Payment{
		UserID:          user.ID,
		CourseID:        &courseID,
		InstructorID:    &instructorID,
		Kind:            models.PaymentKindCourse,
		StripeSessionID: &sessionID,
		Amount:          course.Price,
		Currency:        currency,
		Status:          models.PaymentPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to start checkout!", map[string]interface{}{"session_id": session.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Checkout session created!", fiber.Map{
		"session_id": session.ID,
		"url":        session.URL,
		"payment_id": payment.ID,
	})
}

// CheckoutSubscription opens a Stripe Checkout session for a subscription plan
func CheckoutSubscription(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	reqData, ok := validators.Get[paymentValidator.SubscriptionCheckoutRequest](c, "validatedSubscriptionCheckout")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	sub, err := services.ActiveSubscription(db, user.ID, time.Now())
	if err != nil {
		return middleware.InternalError(c, err, "Failed to start checkout!", nil)
	}
	if sub != nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have an active subscription!", sub)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(config.AppConfig.StripeSuccessURL),
		CancelURL:         stripe.String(config.AppConfig.StripeCancelURL),
		ClientReferenceID: stripe.String(formatID(user.ID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(reqData.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				metaUserID:   formatID(user.ID),
				metaPlanName: reqData.PlanName,
			},
		},
	}
	customerParams(params, user)
	params.AddMetadata(metaUserID, formatID(user.ID))
	params.AddMetadata(metaPlanName, reqData.PlanName)

	session, err := utils.NewCheckoutSession(params)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to start checkout!", map[string]interface{}{"area": "stripe", "price_id": reqData.PriceID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Checkout session created!", fiber.Map{
		"session_id": session.ID,
		"url":        session.URL,
	})
}

// PaymentHistory lists the caller's payments
func PaymentHistory(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := validators.Get[paymentValidator.PaymentHistoryQuery](c, "validatedPaymentHistory")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	p := validators.GetPagination(c)

	db := database.Database.Db.Model(&models.Payment{}).
		Where("user_id = ? AND is_deleted = ?", user.ID, false)
	if reqData.Status != "" {
		db = db.Where("status = ?", reqData.Status)
	}
	if reqData.Kind != "" {
		db = db.Where("kind = ?", reqData.Kind)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch payments!", nil)
	}

	var payments []models.Payment
	if err := db.Order("created_at desc").Offset(p.Offset()).Limit(p.Limit).Find(&payments).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{
		"payments":   payments,
		"pagination": p.Meta(total),
	})
}
