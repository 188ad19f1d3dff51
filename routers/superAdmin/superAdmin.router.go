package superAdmin

import (
	controllers "eduhub/controllers/course"
	dashboardController "eduhub/controllers/dashboard"
	superAdminController "eduhub/controllers/superAdmin"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/validators"
	authValidators "eduhub/validators/auth"
	courseValidators "eduhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(app *fiber.App) {
	admin := app.Group("/admin")
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	admin.Get("/users", middleware.JWTMiddleware, adminOnly, authValidators.UserList(), validators.Paginate(), superAdminController.UserList)
	admin.Put("/users/:id/role", middleware.JWTMiddleware, adminOnly, authValidators.UserParam(), authValidators.UpdateRole(), superAdminController.UpdateUserRole)
	admin.Post("/users/:id/block", middleware.JWTMiddleware, adminOnly, authValidators.UserParam(), authValidators.BlockUser(), superAdminController.BlockUser)
	admin.Get("/users/:id/progress", middleware.JWTMiddleware, adminOnly, authValidators.UserParam(), controllers.AdminStudentProgress)

	admin.Post("/course/:id/enroll", middleware.JWTMiddleware, adminOnly, courseValidators.CourseParam(), courseValidators.AdminEnroll(), superAdminController.EnrollUser)

	admin.Get("/dashboard/stats", middleware.JWTMiddleware, adminOnly, validators.DateRange(), dashboardController.AdminStats)
}
