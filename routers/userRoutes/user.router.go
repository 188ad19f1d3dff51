package userRoutes

import (
	controllers "eduhub/controllers/course"
	dashboardController "eduhub/controllers/dashboard"
	meetingController "eduhub/controllers/meeting"
	userControllers "eduhub/controllers/userControllers"
	"eduhub/middleware"
	"eduhub/validators"
	authValidators "eduhub/validators/auth"
	courseValidators "eduhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.RequireRoles())

	userGroup.Get("/profile", userControllers.GetProfile)
	userGroup.Put("/profile", authValidators.UpdateProfile(), userControllers.UpdateProfile)
	userGroup.Put("/password", authValidators.ChangePassword(), userControllers.ChangePassword)
	userGroup.Get("/login/history", validators.Paginate(), userControllers.LoginHistoryList)

	userGroup.Get("/enrollments", courseValidators.EnrollmentList(), validators.Paginate(), controllers.GetUserEnrollments)
	userGroup.Get("/certificates", controllers.GetUserCertificates)
	userGroup.Get("/meetings/upcoming", meetingController.UpcomingMeetings)
	userGroup.Get("/dashboard", dashboardController.StudentStats)
}
