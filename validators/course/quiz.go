package courseValidator

import (
	courseModels "eduhub/models/course"
	"eduhub/validators"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultPassingScore = 70

type QuizRequest struct {
	ModuleID         *uint  `json:"module_id" validate:"omitempty,gt=0"`
	Title            string `json:"title" validate:"required,min=3,max=200"`
	Description      string `json:"description" validate:"max=2000"`
	PassingScore     *int   `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	MaxAttempts      int    `json:"max_attempts" validate:"gte=0,lte=100"`
	TimeLimitMinutes int    `json:"time_limit_minutes" validate:"gte=0,lte=600"`
	IsRequired       bool   `json:"is_required"`
}

func (r *QuizRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.PassingScore == nil {
		score := defaultPassingScore
		r.PassingScore = &score
	}
}

type UpdateQuizRequest struct {
	ModuleID         *uint   `json:"module_id" validate:"omitempty,gt=0"`
	Title            *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description      *string `json:"description" validate:"omitempty,max=2000"`
	PassingScore     *int    `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	MaxAttempts      *int    `json:"max_attempts" validate:"omitempty,gte=0,lte=100"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" validate:"omitempty,gte=0,lte=600"`
	IsRequired       *bool   `json:"is_required"`
}

func (r *UpdateQuizRequest) Normalize() {
	trim(r.Title)
}

type OptionRequest struct {
	OptionText string `json:"option_text" validate:"required,max=500"`
	IsCorrect  bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Question     string          `json:"question" validate:"required,min=3"`
	QuestionType string          `json:"question_type" validate:"required,oneof=SINGLE MULTIPLE"`
	Points       int             `json:"points" validate:"omitempty,gte=1,lte=100"`
	OrderIndex   int             `json:"order_index" validate:"gte=0"`
	Options      []OptionRequest `json:"options" validate:"required,min=2,max=10,dive"`
}

func (r *QuestionRequest) Normalize() {
	r.Question = strings.TrimSpace(r.Question)
	r.QuestionType = strings.ToUpper(strings.TrimSpace(r.QuestionType))
	if r.Points == 0 {
		r.Points = 1
	}
	for i := range r.Options {
		r.Options[i].OptionText = strings.TrimSpace(r.Options[i].OptionText)
	}
}

// Check enforces the number of correct options per question type
func (r *QuestionRequest) Check() map[string]string {
	correct := 0
	for _, o := range r.Options {
		if o.IsCorrect {
			correct++
		}
	}

	switch r.QuestionType {
	case courseModels.QuestionSingle:
		if correct != 1 {
			return map[string]string{"options": "A single choice question needs exactly one correct option!"}
		}
	case courseModels.QuestionMultiple:
		if correct < 1 {
			return map[string]string{"options": "A multiple choice question needs at least one correct option!"}
		}
	}
	return nil
}

type SubmitQuizRequest struct {
	Answers   map[string][]uint `json:"answers" validate:"required"`
	StartedAt *time.Time        `json:"started_at"`
}

func (r *SubmitQuizRequest) Check() map[string]string {
	for key := range r.Answers {
		if id, err := strconv.ParseUint(key, 10, 64); err != nil || id == 0 {
			return map[string]string{"answers": fmt.Sprintf("Invalid question id %q!", key)}
		}
	}
	if r.StartedAt != nil && r.StartedAt.After(time.Now().Add(time.Minute)) {
		return map[string]string{"started_at": "Started at cannot be in the future!"}
	}
	return nil
}

// ParsedAnswers converts the answer keys to question ids
func (r *SubmitQuizRequest) ParsedAnswers() map[uint][]uint {
	answers := make(map[uint][]uint, len(r.Answers))
	for key, optionIDs := range r.Answers {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		answers[uint(id)] = optionIDs
	}
	return answers
}

func CreateQuiz() fiber.Handler {
	return validators.BindBody[QuizRequest]("validatedQuiz")
}

func UpdateQuiz() fiber.Handler {
	return validators.BindBody[UpdateQuizRequest]("validatedQuizUpdate")
}

func Question() fiber.Handler {
	return validators.BindBody[QuestionRequest]("validatedQuestion")
}

func SubmitQuiz() fiber.Handler {
	return validators.BindBody[SubmitQuizRequest]("validatedSubmission")
}
