package announcementRoutes

import (
	announcementController "eduhub/controllers/announcement"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/validators"
	announcementValidators "eduhub/validators/announcement"

	"github.com/gofiber/fiber/v2"
)

func SetupAnnouncementRoutes(app *fiber.App) {
	staff := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	app.Get("/announcements", middleware.JWTMiddleware, middleware.RequireRoles(), validators.Paginate(), announcementController.ListAnnouncements)

	announcement := app.Group("/announcement")
	announcement.Post("/", middleware.JWTMiddleware, staff, announcementValidators.CreateAnnouncement(), announcementController.CreateAnnouncement)
	announcement.Put("/:id", middleware.JWTMiddleware, staff, announcementValidators.AnnouncementParam(), announcementValidators.UpdateAnnouncement(), announcementController.UpdateAnnouncement)
	announcement.Delete("/:id", middleware.JWTMiddleware, staff, announcementValidators.AnnouncementParam(), announcementController.DeleteAnnouncement)
}
