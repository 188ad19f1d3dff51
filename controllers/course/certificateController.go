package controllers

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/utils"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequestCertificate requests a certificate for a completed course
func RequestCertificate(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	courseID := validators.ID(c, "courseID")
	db := database.Database.Db

	enrollment, err := services.FindEnrollment(db, user.ID, courseID)
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
		}
		return middleware.InternalError(c, err, "Failed to request certificate!", map[string]interface{}{"course_id": courseID})
	}

	if enrollment.Status != courseModels.EnrollmentCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please complete the course before requesting a certificate!", nil)
	}

	var existingCert courseModels.Certificate
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, courseID, false).First(&existingCert).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", fiber.Map{
			"certificate": existingCert,
		})
	}

	var pending int64
	if err := db.Model(&courseModels.CertificateRequest{}).
		Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = ?", user.ID, courseID, courseModels.CertificatePending, false).
		Count(&pending).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to request certificate!", map[string]interface{}{"course_id": courseID})
	}
	if pending > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate request already pending!", nil)
	}

	request := courseModels.CertificateRequest{
		UserID:       user.ID,
		CourseID:     courseID,
		EnrollmentID: enrollment.ID,
		Status:       courseModels.CertificatePending,
		RequestedAt:  time.Now(),
	}
	if err := db.Create(&request).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to request certificate!", map[string]interface{}{"course_id": courseID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate requested successfully!", request)
}

// GetUserCertificates lists the caller's certificates and open requests
func GetUserCertificates(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	var certificates []courseModels.Certificate
	if err := db.Where("user_id = ? AND is_deleted = ?", user.ID, false).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch certificates!", nil)
	}

	var requests []courseModels.CertificateRequest
	if err := db.Where("user_id = ? AND is_deleted = ?", user.ID, false).Order("requested_at desc").Find(&requests).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"requests":     requests,
	})
}

type certificateRequestRow struct {
	courseModels.CertificateRequest
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	CourseTitle string `json:"course_title"`
}

// reviewableCourses narrows a query to the courses the reviewer may review.
// Admins review every course.
func reviewableCourses(user models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if user.Role == models.RoleAdmin {
			return db
		}
		return db.Where("courses.instructor_id = ?", user.ID)
	}
}

// PendingCertificates lists the pending requests the caller may review
func PendingCertificates(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	p := validators.GetPagination(c)

	db := database.Database.Db.Table("certificate_requests").
		Joins("JOIN users ON users.id = certificate_requests.user_id").
		Joins("JOIN courses ON courses.id = certificate_requests.course_id").
		Where("certificate_requests.status = ? AND certificate_requests.is_deleted = ?", courseModels.CertificatePending, false).
		Where("certificate_requests.deleted_at IS NULL").
		Scopes(reviewableCourses(user))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch certificate requests!", nil)
	}

	var rows []certificateRequestRow
	if err := db.Select("certificate_requests.*, users.name AS user_name, users.email AS user_email, courses.title AS course_title").
		Order("certificate_requests.requested_at asc").
		Offset(p.Offset()).Limit(p.Limit).
		Scan(&rows).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch certificate requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate requests fetched successfully!", fiber.Map{
		"requests":   rows,
		"pagination": p.Meta(total),
	})
}

type issuedCertificateRow struct {
	courseModels.Certificate
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	CourseTitle string `json:"course_title"`
}

// IssuedCertificates lists the certificates issued for the caller's courses
func IssuedCertificates(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	p := validators.GetPagination(c)

	db := database.Database.Db.Table("certificates").
		Joins("JOIN users ON users.id = certificates.user_id").
		Joins("JOIN courses ON courses.id = certificates.course_id").
		Where("certificates.is_deleted = ? AND certificates.deleted_at IS NULL", false).
		Scopes(reviewableCourses(user))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch certificates!", nil)
	}

	var rows []issuedCertificateRow
	if err := db.Select("certificates.*, users.name AS user_name, users.email AS user_email, courses.title AS course_title").
		Order("certificates.issued_at desc").
		Offset(p.Offset()).Limit(p.Limit).
		Scan(&rows).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": rows,
		"pagination":   p.Meta(total),
	})
}

var errAlreadyReviewed = fiber.NewError(fiber.StatusConflict, "Certificate request was already reviewed!")

type certificateReview struct {
	request courseModels.CertificateRequest
	student models.User
	course  courseModels.Course
}

// loadPendingRequest loads a pending request with its user and course and
// checks the reviewer may act on it. Lookup failures come back as *fiber.Error.
func loadPendingRequest(db *gorm.DB, reviewer models.User, requestID uint) (certificateReview, error) {
	var r certificateReview

	if err := db.Where("id = ? AND is_deleted = ?", requestID, false).First(&r.request).Error; err != nil {
		return r, fiber.NewError(fiber.StatusNotFound, "Certificate request not found!")
	}
	if r.request.Status != courseModels.CertificatePending {
		return r, errAlreadyReviewed
	}

	course, err := services.FindCourse(db, r.request.CourseID)
	if err != nil {
		return r, fiber.NewError(fiber.StatusNotFound, "Course not found!")
	}
	if !services.CanManageCourse(reviewer, course) {
		return r, fiber.NewError(fiber.StatusForbidden, "You can only review requests for your own courses!")
	}
	r.course = course

	if err := db.Where("id = ?", r.request.UserID).First(&r.student).Error; err != nil {
		return r, fiber.NewError(fiber.StatusNotFound, "User not found!")
	}
	return r, nil
}

func reviewError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return middleware.JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return middleware.InternalError(c, err, "Failed to review certificate!", nil)
}

// markReviewed moves a request out of PENDING. Losing a race to another
// reviewer yields errAlreadyReviewed.
func markReviewed(tx *gorm.DB, requestID uint, updates map[string]interface{}) error {
	res := tx.Model(&courseModels.CertificateRequest{}).
		Where("id = ? AND status = ?", requestID, courseModels.CertificatePending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errAlreadyReviewed
	}
	return nil
}

// ApproveCertificate issues the certificate and emails its number to the student
func ApproveCertificate(c *fiber.Ctx) error {
	reviewer, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	review, err := loadPendingRequest(db, reviewer, validators.ID(c, "requestID"))
	if err != nil {
		return reviewError(c, err)
	}
	request, student, course := review.request, review.student, review.course

	now := time.Now()
	certificate := courseModels.Certificate{
		UserID:            request.UserID,
		CourseID:          request.CourseID,
		CertificateNumber: utils.GenerateCertificateNumber(now),
		IssuedAt:          now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := markReviewed(tx, request.ID, map[string]interface{}{
			"status":      courseModels.CertificateApproved,
			"reviewed_at": now,
			"reviewed_by": reviewer.ID,
		}); err != nil {
			return err
		}
		return tx.Create(&certificate).Error
	})
	if errors.Is(err, errAlreadyReviewed) {
		return reviewError(c, err)
	}
	if err != nil {
		return middleware.InternalError(c, err, "Failed to approve certificate!", map[string]interface{}{"request_id": request.ID})
	}

	utils.SendCertificateEmail(student.Email, student.Name, course.Title, certificate.CertificateNumber)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued successfully!", certificate)
}

// RejectCertificate rejects a pending request with a reason
func RejectCertificate(c *fiber.Ctx) error {
	reviewer, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	reqData, ok := validators.Get[courseValidator.RejectCertificateRequest](c, "validatedRejection")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	review, err := loadPendingRequest(db, reviewer, validators.ID(c, "requestID"))
	if err != nil {
		return reviewError(c, err)
	}
	request, student, course := review.request, review.student, review.course

	now := time.Now()
	request.Status = courseModels.CertificateRejected
	request.ReviewedAt = &now
	request.ReviewedBy = &reviewer.ID
	request.RejectionReason = reqData.Reason
	err = markReviewed(db, request.ID, map[string]interface{}{
		"status":           request.Status,
		"reviewed_at":      now,
		"reviewed_by":      reviewer.ID,
		"rejection_reason": reqData.Reason,
	})
	if errors.Is(err, errAlreadyReviewed) {
		return reviewError(c, err)
	}
	if err != nil {
		return middleware.InternalError(c, err, "Failed to reject certificate!", map[string]interface{}{"request_id": request.ID})
	}

	utils.SendCertificateRejectedEmail(student.Email, student.Name, course.Title, reqData.Reason)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request rejected!", request)
}

// VerifyCertificate looks a certificate up by its number. It needs no login.
func VerifyCertificate(c *fiber.Ctx) error {
	db := database.Database.Db
	number := c.Params("number")

	var certificate courseModels.Certificate
	if err := db.Where("certificate_number = ? AND is_deleted = ?", number, false).First(&certificate).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", fiber.Map{"valid": false})
	}

	var student models.User
	var course courseModels.Course
	err := db.Select("id", "name").Where("id = ?", certificate.UserID).First(&student).Error
	if err == nil {
		err = db.Select("id", "title").Where("id = ?", certificate.CourseID).First(&course).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", fiber.Map{"valid": false})
	}
	if err != nil {
		return middleware.InternalError(c, err, "Failed to verify certificate!", map[string]interface{}{"certificate_number": number})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid!", fiber.Map{
		"valid":              true,
		"certificate_number": certificate.CertificateNumber,
		"issued_at":          certificate.IssuedAt,
		"student_name":       student.Name,
		"course_title":       course.Title,
	})
}
