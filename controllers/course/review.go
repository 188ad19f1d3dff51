package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type reviewSummary struct {
	Average      float64       `json:"average"`
	Count        int64         `json:"count"`
	Distribution map[int]int64 `json:"distribution"`
}

type ratingCount struct {
	Rating int
	Count  int64
}

// courseReviewSummary averages the ratings of a course and counts each star value
func courseReviewSummary(db *gorm.DB, courseID uint) (reviewSummary, error) {
	summary := reviewSummary{Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}

	var counts []ratingCount
	if err := db.Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Group("rating").Scan(&counts).Error; err != nil {
		return summary, err
	}

	var sum int64
	for _, rc := range counts {
		summary.Distribution[rc.Rating] = rc.Count
		summary.Count += rc.Count
		sum += int64(rc.Rating) * rc.Count
	}
	if summary.Count > 0 {
		summary.Average = services.Round2(float64(sum) / float64(summary.Count))
	}
	return summary, nil
}

// SubmitReview rates a course. Only students enrolled in it may review, once.
func SubmitReview(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	reqData, ok := validators.Get[courseValidator.ReviewRequest](c, "validatedReview")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	courseID := validators.ID(c, "courseID")
	enrollment, err := services.FindEnrollment(db, user.ID, courseID)
	if err != nil || enrollment.Status == courseModels.EnrollmentCancelled {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in this course to review it!", nil)
	}

	var review models.Review
	err = db.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&review).Error
	switch {
	case err == nil && !review.IsDeleted:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You have already reviewed this course!", review)
	case err == nil:
		review.Rating = reqData.Rating
		review.Comment = reqData.Comment
		review.IsDeleted = false
		err = db.Save(&review).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		review = models.Review{UserID: user.ID, CourseID: courseID, Rating: reqData.Rating, Comment: reqData.Comment}
		err = db.Create(&review).Error
	}
	if err != nil {
		return middleware.InternalError(c, err, "Failed to submit review!", map[string]interface{}{"course_id": courseID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review submitted successfully!", review)
}

func findOwnReview(db *gorm.DB, userID, courseID uint) (models.Review, error) {
	var review models.Review
	err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&review).Error
	return review, err
}

// UpdateReview changes the caller's rating of a course
func UpdateReview(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	reqData, ok := validators.Get[courseValidator.ReviewRequest](c, "validatedReview")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	review, err := findOwnReview(db, user.ID, validators.ID(c, "courseID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Review not found!", nil)
	}

	review.Rating = reqData.Rating
	review.Comment = reqData.Comment
	if err := db.Save(&review).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update review!", map[string]interface{}{"review_id": review.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review updated successfully!", review)
}

// DeleteReview removes the caller's review of a course
func DeleteReview(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	review, err := findOwnReview(db, user.ID, validators.ID(c, "courseID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Review not found!", nil)
	}

	if err := db.Model(&review).Update("is_deleted", true).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to delete review!", map[string]interface{}{"review_id": review.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review deleted successfully!", nil)
}

type reviewResponse struct {
	models.Review
	UserName string `json:"user_name"`
}

// CourseReviews lists the reviews of a published course with its rating summary
func CourseReviews(c *fiber.Ctx) error {
	db := database.Database.Db
	p := validators.GetPagination(c)

	course, err := services.FindCourse(db, validators.ID(c, "courseID"))
	if err != nil || !course.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	summary, err := courseReviewSummary(db, course.ID)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch reviews!", map[string]interface{}{"course_id": course.ID})
	}

	var reviews []models.Review
	if err := db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name")
		}).
		Order("created_at desc").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&reviews).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch reviews!", map[string]interface{}{"course_id": course.ID})
	}

	response := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, reviewResponse{Review: r, UserName: r.User.Name})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"summary":    summary,
		"reviews":    response,
		"pagination": p.Meta(summary.Count),
	})
}
