package models

import (
	"time"

	"gorm.io/gorm"
)

type LoginTracking struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"index"`
	IPAddress string    `json:"ip_address"`
	Device    string    `json:"device"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	IsDeleted bool      `json:"-" gorm:"default:false"`
}
