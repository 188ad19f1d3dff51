package courseValidator

import (
	courseModels "eduhub/models/course"
	"eduhub/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ModuleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=2000"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

func (r *ModuleRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

type UpdateModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	OrderIndex  *int    `json:"order_index" validate:"omitempty,gte=0"`
}

func (r *UpdateModuleRequest) Normalize() {
	trim(r.Title)
	trim(r.Description)
}

type LessonRequest struct {
	ModuleID        uint   `json:"module_id" validate:"required,gt=0"`
	Title           string `json:"title" validate:"required,min=3,max=200"`
	ContentType     string `json:"content_type" validate:"required,oneof=TEXT VIDEO FILE"`
	Content         string `json:"content"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	FileURL         string `json:"file_url" validate:"omitempty,url"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0,lte=1440"`
	OrderIndex      int    `json:"order_index" validate:"gte=0"`
	IsPreview       bool   `json:"is_preview"`
}

func (r *LessonRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.ContentType = strings.ToUpper(strings.TrimSpace(r.ContentType))
	r.VideoURL = strings.TrimSpace(r.VideoURL)
	r.FileURL = strings.TrimSpace(r.FileURL)
}

func (r *LessonRequest) Check() map[string]string {
	return CheckLessonBody(r.ContentType, r.Content, r.VideoURL, r.FileURL)
}

type UpdateLessonRequest struct {
	ModuleID        *uint   `json:"module_id" validate:"omitempty,gt=0"`
	Title           *string `json:"title" validate:"omitempty,min=3,max=200"`
	ContentType     *string `json:"content_type" validate:"omitempty,oneof=TEXT VIDEO FILE"`
	Content         *string `json:"content"`
	VideoURL        *string `json:"video_url" validate:"omitempty,url"`
	FileURL         *string `json:"file_url" validate:"omitempty,url"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0,lte=1440"`
	OrderIndex      *int    `json:"order_index" validate:"omitempty,gte=0"`
	IsPreview       *bool   `json:"is_preview"`
}

func (r *UpdateLessonRequest) Normalize() {
	trim(r.Title)
	if r.ContentType != nil {
		ct := strings.ToUpper(strings.TrimSpace(*r.ContentType))
		r.ContentType = &ct
	}
}

// CheckLessonBody makes sure the field matching the content type is filled
func CheckLessonBody(contentType, content, videoURL, fileURL string) map[string]string {
	switch contentType {
	case courseModels.ContentText:
		if strings.TrimSpace(content) == "" {
			return map[string]string{"content": "Content is required for text lessons!"}
		}
	case courseModels.ContentVideo:
		if videoURL == "" {
			return map[string]string{"video_url": "Video url is required for video lessons!"}
		}
	case courseModels.ContentFile:
		if fileURL == "" {
			return map[string]string{"file_url": "File url is required for file lessons!"}
		}
	}
	return nil
}

func CreateModule() fiber.Handler {
	return validators.BindBody[ModuleRequest]("validatedModule")
}

func UpdateModule() fiber.Handler {
	return validators.BindBody[UpdateModuleRequest]("validatedModuleUpdate")
}

func CreateLesson() fiber.Handler {
	return validators.BindBody[LessonRequest]("validatedLesson")
}

func UpdateLesson() fiber.Handler {
	return validators.BindBody[UpdateLessonRequest]("validatedLessonUpdate")
}
