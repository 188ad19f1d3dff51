package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question types
const (
	QuestionSingle   = "SINGLE"
	QuestionMultiple = "MULTIPLE"
)

// Quiz is a graded set of questions attached to a course, optionally to one of its modules
type Quiz struct {
	gorm.Model
	CourseID         uint           `json:"course_id" gorm:"index;not null"`
	ModuleID         *uint          `json:"module_id" gorm:"index"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	PassingScore     int            `json:"passing_score"`                // percentage
	MaxAttempts      int            `json:"max_attempts" gorm:"default:0"` // 0 means unlimited
	TimeLimitMinutes int            `json:"time_limit_minutes" gorm:"default:0"`
	IsRequired       bool           `json:"is_required" gorm:"default:false"`
	IsPublished      bool           `json:"is_published" gorm:"default:false"`
	IsDeleted        bool           `json:"-" gorm:"default:false"`
	Questions        []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

type QuizQuestion struct {
	gorm.Model
	QuizID       uint         `json:"quiz_id" gorm:"index;not null"`
	Question     string       `json:"question" gorm:"type:text"`
	QuestionType string       `json:"question_type" gorm:"default:'SINGLE'"`
	Points       int          `json:"points" gorm:"default:1"`
	OrderIndex   int          `json:"order_index" gorm:"default:0"`
	IsDeleted    bool         `json:"-" gorm:"default:false"`
	Options      []QuizOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

type QuizOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct,omitempty" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}

// QuizAttempt stores one graded submission
type QuizAttempt struct {
	gorm.Model
	UserID        uint           `json:"user_id" gorm:"index;not null"`
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	CourseID      uint           `json:"course_id" gorm:"index;not null"`
	Answers       datatypes.JSON `json:"answers"` // question id -> selected option ids
	Score         int            `json:"score"`
	MaxScore      int            `json:"max_score"`
	Percentage    float64        `json:"percentage"`
	Passed        bool           `json:"passed" gorm:"default:false"`
	AttemptNumber int            `json:"attempt_number" gorm:"default:1"`
	StartedAt     time.Time      `json:"started_at"`
	SubmittedAt   time.Time      `json:"submitted_at"`
	IsDeleted     bool           `json:"-" gorm:"default:false"`
}
