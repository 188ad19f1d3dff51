package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// time allowed past the limit for network latency
const submissionGrace = time.Minute

var errAttemptsExhausted = errors.New("maximum number of attempts reached")

// findPublishedQuiz loads a quiz students may take
func findPublishedQuiz(db *gorm.DB, courseID, quizID uint) (courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	err := db.Where("id = ? AND course_id = ? AND is_published = ? AND is_deleted = ?", quizID, courseID, true, false).
		First(&quiz).Error
	return quiz, err
}

func countAttempts(db *gorm.DB, userID, quizID uint) (int64, error) {
	var count int64
	err := db.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND is_deleted = ?", userID, quizID, false).
		Count(&count).Error
	return count, err
}

// GetQuiz returns a published quiz without its answer key
func GetQuiz(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findPublishedQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}
	if err := loadQuestions(db, &quiz); err != nil {
		return middleware.InternalError(c, err, "Failed to fetch questions!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	for i := range quiz.Questions {
		for j := range quiz.Questions[i].Options {
			quiz.Questions[i].Options[j].IsCorrect = false
		}
	}

	used, err := countAttempts(db, user.ID, quiz.ID)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch attempts!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	var remaining interface{}
	if quiz.MaxAttempts > 0 {
		left := int64(quiz.MaxAttempts) - used
		if left < 0 {
			left = 0
		}
		remaining = left
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"quiz":               quiz,
		"attempts_used":      used,
		"attempts_remaining": remaining,
	})
}

// SubmitQuiz grades a submission, stores the attempt and refreshes the enrollment progress on a pass
func SubmitQuiz(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	reqData, ok := validators.Get[courseValidator.SubmitQuizRequest](c, "validatedSubmission")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	quiz, err := findPublishedQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	submittedAt := time.Now()
	startedAt := submittedAt
	if reqData.StartedAt != nil {
		startedAt = *reqData.StartedAt
		limit := time.Duration(quiz.TimeLimitMinutes) * time.Minute
		if quiz.TimeLimitMinutes > 0 && submittedAt.Sub(startedAt) > limit+submissionGrace {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Time limit exceeded!", nil)
		}
	}

	if err := loadQuestions(db, &quiz); err != nil {
		return middleware.InternalError(c, err, "Failed to submit quiz!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	keys := make([]services.QuestionKey, len(quiz.Questions))
	for i, q := range quiz.Questions {
		key := services.QuestionKey{QuestionID: q.ID, Points: q.Points}
		for _, o := range q.Options {
			if o.IsCorrect {
				key.Correct = append(key.Correct, o.ID)
			}
		}
		keys[i] = key
	}

	answers := reqData.ParsedAnswers()
	result := services.GradeQuiz(keys, answers, quiz.PassingScore)

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to submit quiz!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	attempt := courseModels.QuizAttempt{
		UserID:      user.ID,
		QuizID:      quiz.ID,
		CourseID:    course.ID,
		Answers:     answersJSON,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage,
		Passed:      result.Passed,
		StartedAt:   startedAt,
		SubmittedAt: submittedAt,
	}

	// count and insert together so parallel submissions cannot exceed MaxAttempts
	var used int64
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		if used, err = countAttempts(tx, user.ID, quiz.ID); err != nil {
			return err
		}
		if quiz.MaxAttempts > 0 && used >= int64(quiz.MaxAttempts) {
			return errAttemptsExhausted
		}
		attempt.AttemptNumber = int(used) + 1
		return tx.Create(&attempt).Error
	})
	if errors.Is(err, errAttemptsExhausted) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Maximum number of attempts reached!", fiber.Map{
			"max_attempts":  quiz.MaxAttempts,
			"attempts_used": used,
		})
	}
	if err != nil {
		return middleware.InternalError(c, err, "Failed to save attempt!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	var enrollment *courseModels.Enrollment
	if result.Passed {
		updated, err := services.RecalculateProgress(db, user.ID, course.ID, submittedAt)
		switch {
		case err == nil:
			enrollment = &updated
		case !errors.Is(err, services.ErrNotEnrolled):
			reportProgressError(err, course.ID, user.ID)
		}
	}

	message := "Quiz submitted. You did not reach the passing score."
	if result.Passed {
		message = "Quiz submitted. You passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"attempt":       attempt,
		"score":         result.Score,
		"max_score":     result.MaxScore,
		"percentage":    result.Percentage,
		"passed":        result.Passed,
		"passing_score": quiz.PassingScore,
		"questions":     result.Questions,
		"enrollment":    enrollment,
	})
}

// ListAttempts lists the caller's attempts at a quiz
func ListAttempts(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	course := middleware.CurrentCourse(c)
	db := database.Database.Db

	quiz, err := findPublishedQuiz(db, course.ID, validators.ID(c, "quizID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var attempts []courseModels.QuizAttempt
	if err := db.Where("user_id = ? AND quiz_id = ? AND is_deleted = ?", user.ID, quiz.ID, false).
		Order("attempt_number desc").Find(&attempts).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch attempts!", map[string]interface{}{"quiz_id": quiz.ID})
	}

	best := 0.0
	passed := false
	for _, a := range attempts {
		if a.Percentage > best {
			best = a.Percentage
		}
		passed = passed || a.Passed
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts":        attempts,
		"total":           len(attempts),
		"best_percentage": best,
		"passed":          passed,
	})
}
