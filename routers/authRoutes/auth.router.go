package authRoutes

import (
	authControllers "eduhub/controllers/auth"
	authValidators "eduhub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/forgot-password", authValidators.ForgotPassword(), authControllers.ForgotPassword)
	authGroup.Post("/reset-password", authValidators.ResetPassword(), authControllers.ResetPassword)
}
