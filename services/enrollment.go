package services

import (
	courseModels "eduhub/models/course"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Enroll creates the enrollment or reactivates a cancelled one.
// An enrollment that already grants access yields ErrAlreadyEnrolled together with the existing row.
func Enroll(db *gorm.DB, userID, courseID uint, source string, paymentID *uint) (courseModels.Enrollment, error) {
	enrollment, err := FindEnrollment(db, userID, courseID)
	switch {
	case err == nil:
		if enrollment.GrantsAccess() {
			return enrollment, ErrAlreadyEnrolled
		}
		enrollment.Status = courseModels.EnrollmentActive
		enrollment.Source = source
		enrollment.PaymentID = paymentID
		enrollment.CompletedAt = nil
		if err := db.Save(&enrollment).Error; err != nil {
			return enrollment, err
		}
	case errors.Is(err, ErrNotEnrolled):
		enrollment = courseModels.Enrollment{
			UserID:    userID,
			CourseID:  courseID,
			Status:    courseModels.EnrollmentActive,
			Source:    source,
			PaymentID: paymentID,
		}
		if err := db.Create(&enrollment).Error; err != nil {
			return enrollment, err
		}
	default:
		return enrollment, err
	}

	return RecalculateProgress(db, userID, courseID, time.Now())
}

// CancelEnrollment marks the enrollment cancelled; progress rows are kept for a later reactivation
func CancelEnrollment(db *gorm.DB, userID, courseID uint) (courseModels.Enrollment, error) {
	enrollment, err := FindEnrollment(db, userID, courseID)
	if err != nil {
		return enrollment, err
	}
	if enrollment.Status == courseModels.EnrollmentCancelled {
		return enrollment, ErrNotEnrolled
	}
	enrollment.Status = courseModels.EnrollmentCancelled
	return enrollment, db.Save(&enrollment).Error
}
