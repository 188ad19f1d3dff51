package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate request statuses
const (
	CertificatePending  = "PENDING"
	CertificateApproved = "APPROVED"
	CertificateRejected = "REJECTED"
)

// CertificateRequest represents a student's request for course completion certificate
type CertificateRequest struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	CourseID        uint       `json:"course_id" gorm:"index;not null"`
	EnrollmentID    uint       `json:"enrollment_id" gorm:"index;not null"`
	Status          string     `json:"status" gorm:"default:'PENDING'"`
	RequestedAt     time.Time  `json:"requested_at"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewedBy      *uint      `json:"reviewed_by"`
	RejectionReason string     `json:"rejection_reason"`
	IsDeleted       bool       `json:"-" gorm:"default:false"`
}

// Certificate represents an issued certificate for course completion
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	CourseID          uint      `json:"course_id" gorm:"index;not null"`
	CertificateNumber string    `json:"certificate_number" gorm:"uniqueIndex"`
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `json:"-" gorm:"default:false"`
}
