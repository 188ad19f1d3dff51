package models

import (
	"time"

	"gorm.io/gorm"
)

type HelpArticle struct {
	gorm.Model
	AuthorID        uint   `json:"author_id" gorm:"index"`
	Title           string `json:"title"`
	Slug            string `json:"slug" gorm:"uniqueIndex;not null"`
	Category        string `json:"category" gorm:"index;default:'general'"`
	Body            string `json:"body" gorm:"type:text"`
	IsPublished     bool   `json:"is_published" gorm:"default:false"`
	ViewCount       int64  `json:"view_count" gorm:"default:0"`
	HelpfulCount    int64  `json:"helpful_count" gorm:"default:0"`
	NotHelpfulCount int64  `json:"not_helpful_count" gorm:"default:0"`
	IsDeleted       bool   `json:"-" gorm:"default:false"`
}

// Ticket statuses
const (
	TicketOpen       = "OPEN"
	TicketInProgress = "IN_PROGRESS"
	TicketResolved   = "RESOLVED"
	TicketClosed     = "CLOSED"
)

type SupportTicket struct {
	gorm.Model
	UserID     uint       `json:"user_id" gorm:"index"`
	Subject    string     `json:"subject"`
	Message    string     `json:"message" gorm:"type:text"`
	Category   string     `json:"category" gorm:"default:'general'"`
	Priority   string     `json:"priority" gorm:"default:'MEDIUM'"`
	Status     string     `json:"status" gorm:"index;default:'OPEN'"`
	AdminReply string     `json:"admin_reply" gorm:"type:text"`
	RepliedBy  *uint      `json:"replied_by"`
	RepliedAt  *time.Time `json:"replied_at"`
	IsDeleted  bool       `json:"-" gorm:"default:false"`
}
