package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StripeEvent records every webhook event that was handled, keyed by the Stripe event id.
type StripeEvent struct {
	gorm.Model
	EventID     string         `json:"event_id" gorm:"uniqueIndex;not null"`
	Type        string         `json:"type" gorm:"index"`
	Payload     datatypes.JSON `json:"payload"`
	ProcessedAt time.Time      `json:"processed_at"`
}
