package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription statuses as reported by Stripe. They are stored verbatim.
const (
	SubscriptionActive            = "active"
	SubscriptionTrialing          = "trialing"
	SubscriptionPastDue           = "past_due"
	SubscriptionCanceled          = "canceled"
	SubscriptionIncomplete        = "incomplete"
	SubscriptionIncompleteExpired = "incomplete_expired"
	SubscriptionUnpaid            = "unpaid"
	SubscriptionPaused            = "paused"
)

// Subscription mirrors a Stripe subscription that unlocks every paid course.
type Subscription struct {
	gorm.Model
	UserID               uint       `json:"user_id" gorm:"index;not null"`
	StripeSubscriptionID string     `json:"stripe_subscription_id" gorm:"uniqueIndex;not null"`
	StripeCustomerID     string     `json:"stripe_customer_id" gorm:"index"`
	StripePriceID        string     `json:"stripe_price_id"`
	PlanName             string     `json:"plan_name"`
	Status               string     `json:"status" gorm:"type:varchar(30);index"`
	CurrentPeriodStart   *time.Time `json:"current_period_start"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end" gorm:"default:false"`
	CanceledAt           *time.Time `json:"canceled_at"`
	ReminderSent         bool       `json:"reminder_sent" gorm:"default:false"`
	IsDeleted            bool       `json:"-" gorm:"default:false"`
}

// GrantsAccess reports whether the subscription unlocks paid content at the given time.
func (s Subscription) GrantsAccess(at time.Time) bool {
	if s.IsDeleted {
		return false
	}
	if s.Status != SubscriptionActive && s.Status != SubscriptionTrialing {
		return false
	}
	return s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(at)
}
