package course

import "gorm.io/gorm"

// Course statuses
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

// Course levels
const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
)

// Course represents a learning course owned by an instructor
type Course struct {
	gorm.Model
	InstructorID uint   `json:"instructor_id" gorm:"index;not null"`
	Title        string `json:"title"`
	Slug         string `json:"slug" gorm:"uniqueIndex;not null"`
	Description  string `json:"description" gorm:"type:text"`
	Category     string `json:"category" gorm:"index"`
	Level        string `json:"level" gorm:"default:'BEGINNER'"`
	Price        int64  `json:"price" gorm:"default:0"` // smallest currency unit, 0 means free
	Currency     string `json:"currency" gorm:"default:'usd'"`
	Status       string `json:"status" gorm:"index;default:'DRAFT'"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `json:"-" gorm:"default:false"`
}

// IsFree reports whether the course can be joined without paying.
func (c Course) IsFree() bool {
	return c.Price <= 0
}
