package paymentRoutes

import (
	paymentController "eduhub/controllers/payment"
	"eduhub/middleware"
	"eduhub/validators"
	courseValidators "eduhub/validators/course"
	paymentValidators "eduhub/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	anyUser := middleware.RequireRoles()

	payment := app.Group("/payment")
	payment.Post("/checkout/course/:id", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), paymentController.CheckoutCourse)
	payment.Post("/checkout/subscription", middleware.JWTMiddleware, anyUser, paymentValidators.SubscriptionCheckout(), paymentController.CheckoutSubscription)
	payment.Get("/history", middleware.JWTMiddleware, anyUser, paymentValidators.PaymentHistory(), validators.Paginate(), paymentController.PaymentHistory)

	subscription := app.Group("/subscription")
	subscription.Get("/me", middleware.JWTMiddleware, anyUser, paymentController.GetMySubscription)
	subscription.Post("/cancel", middleware.JWTMiddleware, anyUser, paymentController.CancelSubscription)

	// Stripe authenticates itself with the signature header
	app.Post("/webhooks/stripe", paymentController.StripeWebhook)
}
