package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment kinds
const (
	PaymentKindCourse       = "COURSE"
	PaymentKindSubscription = "SUBSCRIPTION"
)

// Payment statuses
const (
	PaymentPending   = "PENDING"
	PaymentSucceeded = "SUCCEEDED"
	PaymentFailed    = "FAILED"
	PaymentRefunded  = "REFUNDED"
)

// Payment is a single charge collected through Stripe. Amounts are in the
// smallest currency unit.
type Payment struct {
	gorm.Model
	UserID                uint       `json:"user_id" gorm:"index;not null"`
	CourseID              *uint      `json:"course_id" gorm:"index"`
	InstructorID          *uint      `json:"instructor_id" gorm:"index"`
	Kind                  string     `json:"kind" gorm:"type:varchar(20);default:'COURSE'"`
	StripeSessionID       *string    `json:"stripe_session_id" gorm:"uniqueIndex"`
	StripePaymentIntentID string     `json:"stripe_payment_intent_id" gorm:"index"`
	StripeInvoiceID       *string    `json:"stripe_invoice_id" gorm:"uniqueIndex"`
	Amount                int64      `json:"amount" gorm:"not null;default:0"`
	Currency              string     `json:"currency" gorm:"type:varchar(10)"`
	Status                string     `json:"status" gorm:"type:varchar(20);index;default:'PENDING'"`
	PlatformFee           int64      `json:"platform_fee" gorm:"default:0"`
	InstructorShare       int64      `json:"instructor_share" gorm:"default:0"`
	PaidAt                *time.Time `json:"paid_at"`
	RefundedAt            *time.Time `json:"refunded_at"`
	IsDeleted             bool       `json:"-" gorm:"default:false"`
}
