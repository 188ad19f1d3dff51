package courseValidator

import (
	"eduhub/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Route parameters
func CourseParam() fiber.Handler   { return validators.IDParam("id", "courseID", "Course") }
func CourseIDParam() fiber.Handler { return validators.IDParam("course_id", "courseID", "Course") }
func ModuleParam() fiber.Handler   { return validators.IDParam("module_id", "moduleID", "Module") }
func LessonParam() fiber.Handler   { return validators.IDParam("lesson_id", "lessonID", "Lesson") }
func QuizParam() fiber.Handler     { return validators.IDParam("quiz_id", "quizID", "Quiz") }
func QuestionParam() fiber.Handler { return validators.IDParam("question_id", "questionID", "Question") }
func RequestParam() fiber.Handler  { return validators.IDParam("request_id", "requestID", "Certificate request") }

type CourseListQuery struct {
	Category string `query:"category" validate:"omitempty,max=100"`
	Level    string `query:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Search   string `query:"search" validate:"omitempty,max=100"`
}

func (r *CourseListQuery) Normalize() {
	r.Category = strings.TrimSpace(r.Category)
	r.Level = strings.ToUpper(strings.TrimSpace(r.Level))
	r.Search = strings.TrimSpace(r.Search)
}

type CreateCourseRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=200"`
	Description  string `json:"description" validate:"required,min=10"`
	Category     string `json:"category" validate:"required,max=100"`
	Level        string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Price        int64  `json:"price" validate:"gte=0"`
	Currency     string `json:"currency" validate:"omitempty,len=3"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

func (r *CreateCourseRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Level = strings.ToUpper(strings.TrimSpace(r.Level))
	r.Currency = strings.ToLower(strings.TrimSpace(r.Currency))
}

type UpdateCourseRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string `json:"description" validate:"omitempty,min=10"`
	Category     *string `json:"category" validate:"omitempty,min=1,max=100"`
	Level        *string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Price        *int64  `json:"price" validate:"omitempty,gte=0"`
	Currency     *string `json:"currency" validate:"omitempty,len=3"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
}

func (r *UpdateCourseRequest) Normalize() {
	trim(r.Title)
	trim(r.Description)
	trim(r.Category)
	if r.Level != nil {
		level := strings.ToUpper(strings.TrimSpace(*r.Level))
		r.Level = &level
	}
	if r.Currency != nil {
		currency := strings.ToLower(strings.TrimSpace(*r.Currency))
		r.Currency = &currency
	}
}

// PublishRequest toggles the published flag of courses, lessons and quizzes
type PublishRequest struct {
	IsPublished *bool `json:"is_published" validate:"required"`
}

type AdminEnrollRequest struct {
	UserID uint `json:"user_id" validate:"required,gt=0"`
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func CourseList() fiber.Handler {
	return validators.BindQuery[CourseListQuery]("validatedCourseList")
}

func CreateCourse() fiber.Handler {
	return validators.BindBody[CreateCourseRequest]("validatedCourse")
}

func UpdateCourse() fiber.Handler {
	return validators.BindBody[UpdateCourseRequest]("validatedCourseUpdate")
}

func Publish() fiber.Handler {
	return validators.BindBody[PublishRequest]("validatedPublish")
}

func AdminEnroll() fiber.Handler {
	return validators.BindBody[AdminEnrollRequest]("validatedAdminEnroll")
}
