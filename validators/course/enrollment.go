package courseValidator

import (
	"eduhub/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=ACTIVE COMPLETED CANCELLED"`
}

func (r *EnrollmentListQuery) Normalize() {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
}

type RejectCertificateRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

func (r *RejectCertificateRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

func EnrollmentList() fiber.Handler {
	return validators.BindQuery[EnrollmentListQuery]("validatedEnrollmentList")
}

func RejectCertificate() fiber.Handler {
	return validators.BindBody[RejectCertificateRequest]("validatedRejection")
}
