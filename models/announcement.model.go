package models

import (
	"time"

	"gorm.io/gorm"
)

// Audiences
const (
	AudienceAll         = "ALL"
	AudienceStudents    = "STUDENTS"
	AudienceInstructors = "INSTRUCTORS"
)

type Announcement struct {
	gorm.Model
	AuthorID    uint      `json:"author_id" gorm:"index;not null"`
	CourseID    *uint     `json:"course_id" gorm:"index"` // nil for platform wide announcements
	Title       string    `json:"title"`
	Body        string    `json:"body" gorm:"type:text"`
	Audience    string    `json:"audience" gorm:"type:varchar(20);default:'ALL'"`
	IsPinned    bool      `json:"is_pinned" gorm:"default:false"`
	PublishedAt time.Time `json:"published_at"`
	IsDeleted   bool      `json:"-" gorm:"default:false"`
}
