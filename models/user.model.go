package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles
const (
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
	RoleStudent    = "STUDENT"
)

type User struct {
	gorm.Model
	Name                string     `json:"name" gorm:"default:''"`
	Email               string     `json:"email" gorm:"uniqueIndex;not null"`
	Password            string     `json:"-" gorm:"not null"`
	Role                string     `json:"role" gorm:"index;default:'STUDENT'"`
	Bio                 string     `json:"bio"`
	AvatarURL           string     `json:"avatar_url"`
	StripeCustomerID    string     `json:"-" gorm:"index"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"-"`
	IsBlocked           bool       `json:"is_blocked" gorm:"default:false"`
	BlockedUntil        *time.Time `json:"blocked_until,omitempty"` // nil with IsBlocked means blocked by an admin
	LastLogin           *time.Time `json:"last_login,omitempty"`
	IsDeleted           bool       `json:"-" gorm:"default:false"`
}

// IsLocked reports whether the account may not be used at the given time.
func (u User) IsLocked(at time.Time) bool {
	if !u.IsBlocked {
		return false
	}
	return u.BlockedUntil == nil || u.BlockedUntil.After(at)
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}
