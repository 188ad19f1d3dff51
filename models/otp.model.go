package models

import (
	"time"

	"gorm.io/gorm"
)

const OTPPasswordReset = "PASSWORD_RESET"

// OTP is a one time code mailed to a user. Only the bcrypt hash of the code is stored.
type OTP struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Email     string    `gorm:"size:255;index" json:"email"`
	CodeHash  string    `gorm:"size:100;not null" json:"-"`
	Purpose   string    `gorm:"size:30;not null" json:"purpose"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Attempts  int       `gorm:"default:0" json:"attempts"`
	IsUsed    bool      `gorm:"default:false" json:"is_used"`
	IsDeleted bool      `gorm:"default:false" json:"-"`
}
