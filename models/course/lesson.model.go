package course

import (
	"time"

	"gorm.io/gorm"
)

// Lesson content types
const (
	ContentText  = "TEXT"
	ContentVideo = "VIDEO"
	ContentFile  = "FILE"
)

// Lesson is a unit of content inside a module
type Lesson struct {
	gorm.Model
	CourseID        uint   `json:"course_id" gorm:"index;not null"`
	ModuleID        uint   `json:"module_id" gorm:"index;not null"`
	Title           string `json:"title"`
	ContentType     string `json:"content_type" gorm:"default:'TEXT'"`
	Content         string `json:"content,omitempty" gorm:"type:text"`
	VideoURL        string `json:"video_url,omitempty"`
	FileURL         string `json:"file_url,omitempty"`
	DurationMinutes int    `json:"duration_minutes" gorm:"default:0"`
	OrderIndex      int    `json:"order_index" gorm:"default:0"`
	IsPreview       bool   `json:"is_preview" gorm:"default:false"`
	IsPublished     bool   `json:"is_published" gorm:"default:false"`
	IsDeleted       bool   `json:"-" gorm:"default:false"`
}

// StripContent hides the lesson body from users without access.
func (l *Lesson) StripContent() {
	l.Content = ""
	l.VideoURL = ""
	l.FileURL = ""
}

// LessonProgress marks a lesson as completed by a user
type LessonProgress struct {
	gorm.Model
	UserID      uint      `json:"user_id" gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	LessonID    uint      `json:"lesson_id" gorm:"uniqueIndex:idx_progress_user_lesson;not null"`
	CourseID    uint      `json:"course_id" gorm:"index;not null"`
	CompletedAt time.Time `json:"completed_at"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
