package helpValidator

import (
	"eduhub/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func ArticleParam() fiber.Handler { return validators.IDParam("id", "articleID", "Article") }
func TicketParam() fiber.Handler  { return validators.IDParam("id", "ticketID", "Ticket") }

// SlugParam validates the :slug route parameter
func SlugParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.ToLower(strings.TrimSpace(c.Params("slug")))
		if slug == "" || len(slug) > 120 {
			return validators.BadRequest(c, "Invalid article slug!")
		}
		c.Locals("slug", slug)
		return c.Next()
	}
}

type ArticleListQuery struct {
	Category string `query:"category" validate:"omitempty,max=50"`
	Search   string `query:"search" validate:"omitempty,max=100"`
}

func (r *ArticleListQuery) Normalize() {
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Search = strings.TrimSpace(r.Search)
}

type ArticleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Category    string `json:"category" validate:"required,max=50"`
	Body        string `json:"body" validate:"required,min=10"`
	IsPublished bool   `json:"is_published"`
}

func (r *ArticleRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
}

type UpdateArticleRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=3,max=200"`
	Category *string `json:"category" validate:"omitempty,min=1,max=50"`
	Body     *string `json:"body" validate:"omitempty,min=10"`
}

func (r *UpdateArticleRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	if r.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*r.Category))
		r.Category = &category
	}
}

type FeedbackRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

type TicketRequest struct {
	Subject  string `json:"subject" validate:"required,min=3,max=200"`
	Message  string `json:"message" validate:"required,min=10"`
	Category string `json:"category" validate:"omitempty,max=50"`
	Priority string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

func (r *TicketRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	if r.Category == "" {
		r.Category = "general"
	}
	r.Priority = strings.ToUpper(strings.TrimSpace(r.Priority))
	if r.Priority == "" {
		r.Priority = "MEDIUM"
	}
}

type TicketListQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
	Priority string `query:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Category string `query:"category" validate:"omitempty,max=50"`
}

func (r *TicketListQuery) Normalize() {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	r.Priority = strings.ToUpper(strings.TrimSpace(r.Priority))
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
}

type TicketReplyRequest struct {
	Reply  string `json:"reply" validate:"required,min=2"`
	Status string `json:"status" validate:"required,oneof=IN_PROGRESS RESOLVED CLOSED"`
}

func (r *TicketReplyRequest) Normalize() {
	r.Reply = strings.TrimSpace(r.Reply)
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
}

func ArticleList() fiber.Handler {
	return validators.BindQuery[ArticleListQuery]("validatedArticleList")
}

func CreateArticle() fiber.Handler {
	return validators.BindBody[ArticleRequest]("validatedArticle")
}

func UpdateArticle() fiber.Handler {
	return validators.BindBody[UpdateArticleRequest]("validatedArticleUpdate")
}

func Feedback() fiber.Handler {
	return validators.BindBody[FeedbackRequest]("validatedFeedback")
}

func CreateTicket() fiber.Handler {
	return validators.BindBody[TicketRequest]("validatedTicket")
}

func TicketList() fiber.Handler {
	return validators.BindQuery[TicketListQuery]("validatedTicketList")
}

func ReplyTicket() fiber.Handler {
	return validators.BindBody[TicketReplyRequest]("validatedTicketReply")
}
