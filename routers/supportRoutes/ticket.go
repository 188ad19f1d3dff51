package supportRoutes

import (
	controller "eduhub/controllers/support"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/validators"
	courseValidators "eduhub/validators/course"
	validator "eduhub/validators/help"

	"github.com/gofiber/fiber/v2"
)

func SetupSupportRoutes(app *fiber.App) {
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	// Help center, public
	help := app.Group("/help")
	help.Get("/articles", validator.ArticleList(), validators.Paginate(), controller.ArticleList)
	help.Get("/articles/:slug", validator.SlugParam(), controller.GetArticle)
	help.Post("/articles/:slug/feedback", validator.SlugParam(), validator.Feedback(), controller.ArticleFeedback)
	help.Get("/categories", controller.ArticleCategories)

	adminHelp := app.Group("/admin/help")
	adminHelp.Get("/articles", middleware.JWTMiddleware, adminOnly, validator.ArticleList(), validators.Paginate(), controller.AdminArticleList)
	adminHelp.Post("/articles", middleware.JWTMiddleware, adminOnly, validator.CreateArticle(), controller.CreateArticle)
	adminHelp.Put("/articles/:id", middleware.JWTMiddleware, adminOnly, validator.ArticleParam(), validator.UpdateArticle(), controller.UpdateArticle)
	adminHelp.Post("/articles/:id/publish", middleware.JWTMiddleware, adminOnly, validator.ArticleParam(), courseValidators.Publish(), controller.PublishArticle)
	adminHelp.Delete("/articles/:id", middleware.JWTMiddleware, adminOnly, validator.ArticleParam(), controller.DeleteArticle)

	// Tickets
	support := app.Group("/support")
	support.Post("/ticket", middleware.JWTMiddleware, middleware.RequireRoles(), validator.CreateTicket(), controller.CreateSupportTicket)
	support.Get("/tickets", middleware.JWTMiddleware, middleware.RequireRoles(), validator.TicketList(), validators.Paginate(), controller.TicketList)

	adminTickets := app.Group("/admin/tickets")
	adminTickets.Get("/", middleware.JWTMiddleware, adminOnly, validator.TicketList(), validators.Paginate(), controller.AdminTicketList)
	adminTickets.Post("/:id/reply", middleware.JWTMiddleware, adminOnly, validator.TicketParam(), validator.ReplyTicket(), controller.ReplyTicket)
}
