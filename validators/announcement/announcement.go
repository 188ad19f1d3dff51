package announcementValidator

import (
	"eduhub/models"
	"eduhub/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func AnnouncementParam() fiber.Handler {
	return validators.IDParam("id", "announcementID", "Announcement")
}

type AnnouncementRequest struct {
	CourseID *uint  `json:"course_id" validate:"omitempty,gt=0"`
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Body     string `json:"body" validate:"required,min=5"`
	Audience string `json:"audience" validate:"omitempty,oneof=ALL STUDENTS INSTRUCTORS"`
	IsPinned bool   `json:"is_pinned"`
}

func (r *AnnouncementRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
	r.Audience = strings.ToUpper(strings.TrimSpace(r.Audience))
	if r.Audience == "" {
		r.Audience = models.AudienceAll
	}
}

type UpdateAnnouncementRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=3,max=200"`
	Body     *string `json:"body" validate:"omitempty,min=5"`
	Audience *string `json:"audience" validate:"omitempty,oneof=ALL STUDENTS INSTRUCTORS"`
	IsPinned *bool   `json:"is_pinned"`
}

func (r *UpdateAnnouncementRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	if r.Audience != nil {
		audience := strings.ToUpper(strings.TrimSpace(*r.Audience))
		r.Audience = &audience
	}
}

func CreateAnnouncement() fiber.Handler {
	return validators.BindBody[AnnouncementRequest]("validatedAnnouncement")
}

func UpdateAnnouncement() fiber.Handler {
	return validators.BindBody[UpdateAnnouncementRequest]("validatedAnnouncementUpdate")
}
