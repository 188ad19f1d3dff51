package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentCancelled = "CANCELLED"
)

// Enrollment sources
const (
	SourceFree         = "FREE"
	SourcePurchase     = "PURCHASE"
	SourceSubscription = "SUBSCRIPTION"
	SourceAdmin        = "ADMIN"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"index;not null"`
	CourseID         uint       `json:"course_id" gorm:"index;not null"`
	Status           string     `json:"status" gorm:"index;default:'ACTIVE'"`
	Source           string     `json:"source" gorm:"default:'FREE'"`
	PaymentID        *uint      `json:"payment_id"`
	Progress         float64    `json:"progress" gorm:"default:0"` // Completion percentage (0-100)
	CompletedLessons int        `json:"completed_lessons" gorm:"default:0"`
	TotalLessons     int        `json:"total_lessons" gorm:"default:0"`
	CompletedAt      *time.Time `json:"completed_at"`
	IsDeleted        bool       `json:"-" gorm:"default:false"`
	Course           *Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// GrantsAccess reports whether the enrollment unlocks the course content.
func (e Enrollment) GrantsAccess() bool {
	return !e.IsDeleted && (e.Status == EnrollmentActive || e.Status == EnrollmentCompleted)
}
