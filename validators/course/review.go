package courseValidator

import (
	"eduhub/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (r *ReviewRequest) Normalize() {
	r.Comment = strings.TrimSpace(r.Comment)
}

func Review() fiber.Handler {
	return validators.BindBody[ReviewRequest]("validatedReview")
}
