package supportControllers

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/utils"
	"eduhub/validators"
	helpValidator "eduhub/validators/help"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CreateSupportTicket(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	reqData, ok := validators.Get[helpValidator.TicketRequest](c, "validatedTicket")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ticket := models.SupportTicket{
		UserID:   user.ID,
		Subject:  reqData.Subject,
		Message:  reqData.Message,
		Category: reqData.Category,
		Priority: reqData.Priority,
		Status:   models.TicketOpen,
	}

	if err := database.Database.Db.Create(&ticket).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to create support ticket!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Support ticket created successfully!", ticket)
}

// filterTickets applies the optional list filters
func filterTickets(db *gorm.DB, q *helpValidator.TicketListQuery) *gorm.DB {
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		db = db.Where("priority = ?", q.Priority)
	}
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	return db
}

func listTickets(c *fiber.Ctx, db *gorm.DB) error {
	reqData, ok := validators.Get[helpValidator.TicketListQuery](c, "validatedTicketList")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request!", nil)
	}
	p := validators.GetPagination(c)

	db = filterTickets(db, reqData)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch tickets!", nil)
	}

	var tickets []models.SupportTicket
	if err := db.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&tickets).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch tickets!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tickets fetched successfully!", fiber.Map{
		"tickets":    tickets,
		"pagination": p.Meta(total),
	})
}

// TicketList lists the caller's own tickets
func TicketList(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	return listTickets(c, database.Database.Db.Model(&models.SupportTicket{}).
		Where("user_id = ? AND is_deleted = ?", user.ID, false))
}

// AdminTicketList lists every ticket
func AdminTicketList(c *fiber.Ctx) error {
	return listTickets(c, database.Database.Db.Model(&models.SupportTicket{}).
		Where("is_deleted = ?", false))
}

// ReplyTicket answers a ticket, moves it to the given status and emails the user
func ReplyTicket(c *fiber.Ctx) error {
	admin, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	reqData, ok := validators.Get[helpValidator.TicketReplyRequest](c, "validatedTicketReply")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var ticket models.SupportTicket
	if err := db.Where("id = ? AND is_deleted = ?", validators.ID(c, "ticketID"), false).First(&ticket).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
	}
	if ticket.Status == models.TicketClosed {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Ticket is already closed!", nil)
	}

	now := time.Now()
	ticket.AdminReply = reqData.Reply
	ticket.Status = reqData.Status
	ticket.RepliedBy = &admin.ID
	ticket.RepliedAt = &now

	if err := db.Save(&ticket).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to reply to ticket!", map[string]interface{}{"ticket_id": ticket.ID})
	}

	var owner models.User
	if err := db.Where("id = ?", ticket.UserID).First(&owner).Error; err == nil {
		utils.SendTicketReplyEmail(owner.Email, owner.Name, ticket.Subject, ticket.AdminReply, ticket.Status)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reply sent successfully!", ticket)
}
