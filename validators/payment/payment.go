package paymentValidator

import (
	"eduhub/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type SubscriptionCheckoutRequest struct {
	PriceID  string `json:"price_id" validate:"required,startswith=price_"`
	PlanName string `json:"plan_name" validate:"required,min=2,max=100"`
}

func (r *SubscriptionCheckoutRequest) Normalize() {
	r.PriceID = strings.TrimSpace(r.PriceID)
	r.PlanName = strings.TrimSpace(r.PlanName)
}

type PaymentHistoryQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=PENDING SUCCEEDED FAILED REFUNDED"`
	Kind   string `query:"kind" validate:"omitempty,oneof=COURSE SUBSCRIPTION"`
}

func (r *PaymentHistoryQuery) Normalize() {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	r.Kind = strings.ToUpper(strings.TrimSpace(r.Kind))
}

func SubscriptionCheckout() fiber.Handler {
	return validators.BindBody[SubscriptionCheckoutRequest]("validatedSubscriptionCheckout")
}

func PaymentHistory() fiber.Handler {
	return validators.BindQuery[PaymentHistoryQuery]("validatedPaymentHistory")
}
