package meetingValidator

import (
	"eduhub/validators"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func MeetingParam() fiber.Handler {
	return validators.IDParam("meeting_id", "meetingID", "Meeting")
}

type MeetingRequest struct {
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	Description     string    `json:"description" validate:"max=2000"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gte=15,lte=480"`
}

func (r *MeetingRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *MeetingRequest) Check() map[string]string {
	if !r.StartsAt.IsZero() && !r.StartsAt.After(time.Now()) {
		return map[string]string{"starts_at": "Starts at must be in the future!"}
	}
	return nil
}

type UpdateMeetingRequest struct {
	Title           *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description     *string    `json:"description" validate:"omitempty,max=2000"`
	StartsAt        *time.Time `json:"starts_at"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=15,lte=480"`
}

func (r *UpdateMeetingRequest) Check() map[string]string {
	if r.StartsAt != nil && !r.StartsAt.After(time.Now()) {
		return map[string]string{"starts_at": "Starts at must be in the future!"}
	}
	return nil
}

func CreateMeeting() fiber.Handler {
	return validators.BindBody[MeetingRequest]("validatedMeeting")
}

func UpdateMeeting() fiber.Handler {
	return validators.BindBody[UpdateMeetingRequest]("validatedMeetingUpdate")
}
