package services

import (
	"eduhub/models"
	courseModels "eduhub/models/course"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrNotEnrolled       = errors.New("user is not enrolled in this course")
	ErrAlreadyEnrolled   = errors.New("user is already enrolled in this course")
	ErrPaymentRequired   = errors.New("course requires a purchase or an active subscription")
	ErrAttemptsExhausted = errors.New("maximum number of quiz attempts reached")
)

// FindCourse loads a course that has not been deleted
func FindCourse(db *gorm.DB, courseID uint) (courseModels.Course, error) {
	var course courseModels.Course
	err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return course, ErrCourseNotFound
	}
	return course, err
}

// CanManageCourse reports whether the user may author the course
func CanManageCourse(user models.User, course courseModels.Course) bool {
	return user.Role == models.RoleAdmin ||
		(user.Role == models.RoleInstructor && course.InstructorID == user.ID)
}

// FindEnrollment returns the user's enrollment in a course whatever its status
func FindEnrollment(db *gorm.DB, userID, courseID uint) (courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return enrollment, ErrNotEnrolled
	}
	return enrollment, err
}

// ActiveSubscription returns the subscription that currently unlocks paid content, or nil
func ActiveSubscription(db *gorm.DB, userID uint, at time.Time) (*models.Subscription, error) {
	var subs []models.Subscription
	err := db.Where("user_id = ? AND is_deleted = ? AND status IN ?", userID, false,
		[]string{models.SubscriptionActive, models.SubscriptionTrialing}).
		Order("created_at desc").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].GrantsAccess(at) {
			return &subs[i], nil
		}
	}
	return nil, nil
}

// HasCourseAccess reports whether the user may read the full course content.
// Managers always may; everybody else needs an active enrollment or, for a
// published course, a subscription that grants access.
func HasCourseAccess(db *gorm.DB, user models.User, course courseModels.Course, at time.Time) (bool, error) {
	if CanManageCourse(user, course) {
		return true, nil
	}

	enrollment, err := FindEnrollment(db, user.ID, course.ID)
	if err == nil && enrollment.GrantsAccess() {
		return true, nil
	}
	if err != nil && !errors.Is(err, ErrNotEnrolled) {
		return false, err
	}

	if !course.IsPublished {
		return false, nil
	}
	sub, err := ActiveSubscription(db, user.ID, at)
	if err != nil {
		return false, err
	}
	return sub != nil, nil
}
