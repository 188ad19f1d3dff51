package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func findQuiz(db *gorm.DB, courseID, quizID uint) (courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", quizID, courseID, false).First(&quiz).Error
	return quiz, err
}

// loadQuestions fills quiz.Questions with the live questions and options in display order
func loadQuestions(db *gorm.DB, quiz *courseModels.Quiz) error {
	return db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Preload("Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("is_deleted = ?", false).Order("order_index asc, id asc")
		}).
		Order("order_index asc, id asc").
		Find(&quiz.Questions).Error
}

// CreateQuiz adds a draft quiz to the course
func CreateQuiz(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	reqData, ok := validators.Get[courseValidator.QuizRequest](c, "validatedQuiz")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.ModuleID != nil {
		if _, err := findModule(db, course.ID, *reqData.ModuleID); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"module_id": "Module does not belong to this course!"})
		}
	}

	quiz := courseModels.Quiz{
		CourseID:         course.ID,
		ModuleID:         reqData.ModuleID,
		Title:            reqData.Title,
		Description:      reqData.Description,
		PassingScore:     *reqData.PassingScore,
		MaxAttempts:      reqData.MaxAttempts,
		TimeLimitMinutes: reqData.TimeLimitMinutes,
		IsRequired:       reqData.IsRequired,
	}

	if err := db.Create(&quiz).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to create quiz!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// UpdateQuiz updates the provided quiz settings
func UpdateQuiz(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	reqData, ok := validators.Get[courseValidator.UpdateQuizRequest](c, "validatedQuizUpdate")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.ModuleID != nil {
		if _, err := findModule(db, course.ID, *reqData.ModuleID); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"module_id": "Module does not belong to this course!"})
		}
		quiz.ModuleID = reqData.ModuleID
	}
	if reqData.Title != nil {
		quiz.Title = *reqData.Title
	}
	if reqData.Description != nil {
		quiz.Description = *reqData.Description
	}
	if reqData.PassingScore != nil {
		quiz.PassingScore = *reqData.PassingScore
	}
	if reqData.MaxAttempts != nil {
		quiz.MaxAttempts = *reqData.MaxAttempts
	}
	if reqData.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = *reqData.TimeLimitMinutes
	}
	requiredChanged := reqData.IsRequired != nil && *reqData.IsRequired != quiz.IsRequired
	if reqData.IsRequired != nil {
		quiz.IsRequired = *reqData.IsRequired
	}

	if err := db.Save(&quiz).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update quiz!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	if requiredChanged && quiz.IsPublished {
		refreshCourseProgress(db, course.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

// DeleteQuiz soft deletes a quiz with its questions
func DeleteQuiz(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&quiz).Updates(map[string]interface{}{"is_deleted": true, "is_published": false}).Error; err != nil {
			return err
		}
		return tx.Model(&courseModels.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Update("is_deleted", true).Error
	})
	if err != nil {
		return middleware.InternalError(c, err, "Failed to delete quiz!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	if quiz.IsRequired && quiz.IsPublished {
		refreshCourseProgress(db, course.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

// PublishQuiz publishes or unpublishes a quiz. A quiz needs questions to be published.
func PublishQuiz(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	reqData, ok := validators.Get[courseValidator.PublishRequest](c, "validatedPublish")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if *reqData.IsPublished {
		var questionCount int64
		if err := db.Model(&courseModels.QuizQuestion{}).
			Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
			Count(&questionCount).Error; err != nil {
			return middleware.InternalError(c, err, "Failed to publish quiz!", map[string]interface{}{"quiz_id": quiz.ID})
		}
		if questionCount == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Add at least one question before publishing the quiz!", nil)
		}
	}

	changed := quiz.IsPublished != *reqData.IsPublished
	quiz.IsPublished = *reqData.IsPublished
	if err := db.Model(&quiz).Update("is_published", quiz.IsPublished).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to publish quiz!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	if changed && quiz.IsRequired {
		refreshCourseProgress(db, course.ID)
	}

	message := "Quiz unpublished successfully!"
	if quiz.IsPublished {
		message = "Quiz published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, quiz)
}

// GetQuizForAuthor returns the quiz with its answer key
func GetQuizForAuthor(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}
	if err := loadQuestions(db, &quiz); err != nil {
		return middleware.InternalError(c, err, "Failed to fetch questions!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", quiz)
}

func buildOptions(questionID uint, options []courseValidator.OptionRequest) []courseModels.QuizOption {
	result := make([]courseModels.QuizOption, len(options))
	for i, o := range options {
		result[i] = courseModels.QuizOption{
			QuestionID: questionID,
			OptionText: o.OptionText,
			IsCorrect:  o.IsCorrect,
			OrderIndex: i,
		}
	}
	return result
}

// AddQuestion adds a question with its options to a quiz
func AddQuestion(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	reqData, ok := validators.Get[courseValidator.QuestionRequest](c, "validatedQuestion")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	question := courseModels.QuizQuestion{
		QuizID:       quiz.ID,
		Question:     reqData.Question,
		QuestionType: reqData.QuestionType,
		Points:       reqData.Points,
		OrderIndex:   reqData.OrderIndex,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		question.Options = buildOptions(question.ID, reqData.Options)
		return tx.Create(&question.Options).Error
	})
	if err != nil {
		return middleware.InternalError(c, err, "Failed to add question!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", question)
}

func findQuestion(db *gorm.DB, quizID, questionID uint) (courseModels.QuizQuestion, error) {
	var question courseModels.QuizQuestion
	err := db.Where("id = ? AND quiz_id = ? AND is_deleted = ?", questionID, quizID, false).First(&question).Error
	return question, err
}

// UpdateQuestion replaces a question and its options. Old options are kept
// soft deleted so earlier attempts still reference them.
func UpdateQuestion(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	question, err := findQuestion(db, quiz.ID, validators.ID(c, "questionID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	reqData, ok := validators.Get[courseValidator.QuestionRequest](c, "validatedQuestion")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	question.Question = reqData.Question
	question.QuestionType = reqData.QuestionType
	question.Points = reqData.Points
	question.OrderIndex = reqData.OrderIndex

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Options").Save(&question).Error; err != nil {
			return err
		}
		if err := tx.Model(&courseModels.QuizOption{}).Where("question_id = ?", question.ID).Update("is_deleted", true).Error; err != nil {
			return err
		}
		question.Options = buildOptions(question.ID, reqData.Options)
		return tx.Create(&question.Options).Error
	})
	if err != nil {
		return middleware.InternalError(c, err, "Failed to update question!", map[string]interface{}{"question_id": question.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

// DeleteQuestion soft deletes a question with its options
func DeleteQuestion(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	question, err := findQuestion(db, quiz.ID, validators.ID(c, "questionID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&question).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&courseModels.QuizOption{}).Where("question_id = ?", question.ID).Update("is_deleted", true).Error
	})
	if err != nil {
		return middleware.InternalError(c, err, "Failed to delete question!", map[string]interface{}{"question_id": question.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

type studentResult struct {
	UserID        uint    `json:"user_id"`
	UserName      string  `json:"user_name"`
	UserEmail     string  `json:"user_email"`
	Attempts      int     `json:"attempts"`
	BestScore     int     `json:"best_score"`
	MaxScore      int     `json:"max_score"`
	BestPercent   float64 `json:"best_percentage"`
	Passed        bool    `json:"passed"`
	BestAttemptID uint    `json:"best_attempt_id"`
}

// QuizResults summarizes every attempt of a quiz for its instructor
func QuizResults(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	db := database.Database.Db

	var quiz courseModels.Quiz
	if err := db.Where("id = ? AND is_deleted = ?", validators.ID(c, "quizID"), false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	course, err := services.FindCourse(db, quiz.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !services.CanManageCourse(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only view results of your own courses!", nil)
	}

	var attempts []courseModels.QuizAttempt
	if err := db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Order("submitted_at asc").Find(&attempts).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch attempts!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	var totalPercent float64
	var passedAttempts int64
	best := make(map[uint]*studentResult)
	order := make([]uint, 0)

	for _, a := range attempts {
		totalPercent += a.Percentage
		if a.Passed {
			passedAttempts++
		}

		r, seen := best[a.UserID]
		if !seen {
			r = &studentResult{UserID: a.UserID, BestPercent: -1}
			best[a.UserID] = r
			order = append(order, a.UserID)
		}
		r.Attempts++
		if a.Percentage > r.BestPercent {
			r.BestPercent = a.Percentage
			r.BestScore = a.Score
			r.MaxScore = a.MaxScore
			r.BestAttemptID = a.ID
		}
		r.Passed = r.Passed || a.Passed
	}

	var users []models.User
	if len(order) > 0 {
		if err := db.Select("id, name, email").Where("id IN ?", order).Find(&users).Error; err != nil {
			return middleware.InternalError(c, err, "Failed to fetch students!", map[string]interface{}{"quiz_id": quiz.ID})
		}
	}
	for _, u := range users {
		if r, ok := best[u.ID]; ok {
			r.UserName = u.Name
			r.UserEmail = u.Email
		}
	}

	students := make([]studentResult, 0, len(order))
	for _, id := range order {
		students = append(students, *best[id])
	}

	totalAttempts := int64(len(attempts))
	averagePercent := 0.0
	if totalAttempts > 0 {
		averagePercent = services.Round2(totalPercent / float64(totalAttempts))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz results fetched successfully!", fiber.Map{
		"quiz":               quiz,
		"total_attempts":     totalAttempts,
		"average_percentage": averagePercent,
		"pass_rate":          services.CompletionRate(passedAttempts, totalAttempts),
		"students":           students,
	})
}
