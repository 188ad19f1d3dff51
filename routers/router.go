package routers

import (
	"eduhub/config"
	"eduhub/routers/announcementRoutes"
	"eduhub/routers/authRoutes"
	"eduhub/routers/courseRoutes"
	"eduhub/routers/paymentRoutes"
	"eduhub/routers/superAdmin"
	"eduhub/routers/supportRoutes"
	"eduhub/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// NewApp builds the fiber app with every route registered. config.AppConfig
// and database.Database must be set up first.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 6 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization,Stripe-Signature",
	}))

	if config.AppConfig.AppEnv != "test" {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Static("/uploads", config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	userRoutes.SetupUserRoutes(app)
	superAdmin.SetupSuperAdminRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupInstructorCourseRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	announcementRoutes.SetupAnnouncementRoutes(app)
	supportRoutes.SetupSupportRoutes(app)

	return app
}
