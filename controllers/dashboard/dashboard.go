package dashboardController

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/validators"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	topCoursesLimit     = 5
	recentPaymentsLimit = 10
	upcomingLimit       = 5
	latestAttemptsLimit = 5
)

// resolveRange reads the validated range query, defaulting to the current month
func resolveRange(c *fiber.Ctx) (services.DateRange, error) {
	q, ok := validators.Get[validators.RangeQuery](c, "validatedRange")
	if !ok {
		return services.ResolveRange("", "", "", time.Now())
	}
	return services.ResolveRange(q.Range, q.From, q.To, time.Now())
}

func sumInt(q *gorm.DB, expr string) (int64, error) {
	var total int64
	err := q.Select("COALESCE(SUM(" + expr + "), 0)").Scan(&total).Error
	return total, err
}

type groupCount struct {
	GroupKey string
	Count    int64
}

func countBy(db *gorm.DB, model interface{}, column string) (map[string]int64, error) {
	var rows []groupCount
	err := db.Model(model).
		Select(column + " AS group_key, COUNT(*) AS count").
		Where("is_deleted = ?", false).
		Group(column).
		Scan(&rows).Error
	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.GroupKey] = r.Count
	}
	return result, err
}

type revenueSummary struct {
	Gross           int64 `json:"gross"`
	Refunded        int64 `json:"refunded"`
	Net             int64 `json:"net"`
	PlatformFee     int64 `json:"platform_fee"`
	InstructorShare int64 `json:"instructor_share"`
}

// revenueIn sums the money collected in the range. Refunds count against the
// range they were issued in.
func revenueIn(db *gorm.DB, r services.DateRange) (revenueSummary, error) {
	var s revenueSummary
	var err error

	paid := func() *gorm.DB {
		return db.Model(&models.Payment{}).
			Where("is_deleted = ? AND status IN ?", false, []string{models.PaymentSucceeded, models.PaymentRefunded}).
			Scopes(r.Scope("paid_at"))
	}
	if s.Gross, err = sumInt(paid(), "amount"); err != nil {
		return s, err
	}

	refunds := db.Model(&models.Payment{}).
		Where("is_deleted = ? AND status = ?", false, models.PaymentRefunded).
		Scopes(r.Scope("refunded_at"))
	if s.Refunded, err = sumInt(refunds, "amount"); err != nil {
		return s, err
	}
	s.Net = s.Gross - s.Refunded

	settled := func() *gorm.DB {
		return db.Model(&models.Payment{}).
			Where("is_deleted = ? AND status = ?", false, models.PaymentSucceeded).
			Scopes(r.Scope("paid_at"))
	}
	if s.PlatformFee, err = sumInt(settled(), "platform_fee"); err != nil {
		return s, err
	}
	if s.InstructorShare, err = sumInt(settled(), "instructor_share"); err != nil {
		return s, err
	}
	return s, nil
}

type topCourse struct {
	CourseID    uint   `json:"course_id"`
	Title       string `json:"title"`
	Enrollments int64  `json:"enrollments" gorm:"column:enrollment_count"`
}

// AdminStats returns the platform totals and the figures of the selected range
func AdminStats(c *fiber.Ctx) error {
	r, err := resolveRange(c)
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"range": err.Error()})
	}
	db := database.Database.Db
	now := time.Now()

	usersByRole, err := countBy(db, &models.User{}, "role")
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard stats!", map[string]interface{}{"area": "dashboard"})
	}
	coursesByStatus, err := countBy(db, &courseModels.Course{}, "status")
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard stats!", map[string]interface{}{"area": "dashboard"})
	}

	var totalEnrollments, completedEnrollments, rangeEnrollments, activeSubscriptions, pendingCertificates int64
	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false), &totalEnrollments},
		{db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND status = ?", false, courseModels.EnrollmentCompleted), &completedEnrollments},
		{db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false).Scopes(r.Scope("created_at")), &rangeEnrollments},
		{db.Model(&models.Subscription{}).
			Where("is_deleted = ? AND status IN ?", false, []string{models.SubscriptionActive, models.SubscriptionTrialing}).
			Where("(current_period_end IS NULL OR current_period_end > ?)", now), &activeSubscriptions},
		{db.Model(&courseModels.CertificateRequest{}).Where("is_deleted = ? AND status = ?", false, courseModels.CertificatePending), &pendingCertificates},
	}
	for _, q := range counts {
		if err := q.query.Count(q.dest).Error; err != nil {
			return middleware.InternalError(c, err, "Failed to fetch dashboard stats!", map[string]interface{}{"area": "dashboard"})
		}
	}

	revenue, err := revenueIn(db, r)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard stats!", map[string]interface{}{"area": "dashboard"})
	}

	var top []topCourse
	if err := db.Model(&courseModels.Enrollment{}).
		Select("enrollments.course_id AS course_id, courses.title AS title, COUNT(*) AS enrollment_count").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.is_deleted = ? AND enrollments.status <> ?", false, courseModels.EnrollmentCancelled).
		Scopes(r.Scope("enrollments.created_at")).
		Group("enrollments.course_id, courses.title").
		Order("enrollment_count desc").
		Limit(topCoursesLimit).
		Scan(&top).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard stats!", map[string]interface{}{"area": "dashboard"})
	}

	var recent []models.Payment
	if err := db.Where("is_deleted = ?", false).Order("created_at desc").Limit(recentPaymentsLimit).Find(&recent).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard stats!", map[string]interface{}{"area": "dashboard"})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"range": r,
		"totals": fiber.Map{
			"users_by_role":         usersByRole,
			"courses_by_status":     coursesByStatus,
			"enrollments":           totalEnrollments,
			"completed_enrollments": completedEnrollments,
			"completion_rate":       services.CompletionRate(completedEnrollments, totalEnrollments),
			"active_subscriptions":  activeSubscriptions,
			"pending_certificates":  pendingCertificates,
		},
		"revenue":         revenue,
		"enrollments":     rangeEnrollments,
		"top_courses":     top,
		"recent_payments": recent,
	})
}

type instructorCourse struct {
	courseModels.Course
	Stats services.CourseEnrollmentStats `json:"stats"`
}

// InstructorStats returns the caller's courses with their enrollment figures, earnings and upcoming meetings
func InstructorStats(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	r, err := resolveRange(c)
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"range": err.Error()})
	}
	db := database.Database.Db

	var courses []courseModels.Course
	if err := db.Where("instructor_id = ? AND is_deleted = ?", user.ID, false).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}

	ids := make([]uint, len(courses))
	for i, course := range courses {
		ids[i] = course.ID
	}
	stats, err := services.EnrollmentStats(db, ids)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}

	var students, completed int64
	var progressSum float64
	result := make([]instructorCourse, len(courses))
	for i, course := range courses {
		s := stats[course.ID]
		result[i] = instructorCourse{Course: course, Stats: s}
		students += s.Enrollments
		completed += s.Completed
		progressSum += s.AverageProgress * float64(s.Enrollments)
	}
	averageProgress := 0.0
	if students > 0 {
		averageProgress = services.Round2(progressSum / float64(students))
	}

	earnings := func(scope func(*gorm.DB) *gorm.DB) (int64, error) {
		return sumInt(db.Model(&models.Payment{}).
			Where("instructor_id = ? AND status = ? AND is_deleted = ?", user.ID, models.PaymentSucceeded, false).
			Scopes(scope), "instructor_share")
	}
	inRange, err := earnings(r.Scope("paid_at"))
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}
	allTime, err := earnings(services.DateRange{All: true}.Scope("paid_at"))
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}

	meetings, err := services.UpcomingMeetings(db, user, time.Now(), upcomingLimit)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"range":   r,
		"courses": result,
		"totals": fiber.Map{
			"courses":          len(courses),
			"students":         students,
			"completed":        completed,
			"completion_rate":  services.CompletionRate(completed, students),
			"average_progress": averageProgress,
		},
		"earnings": fiber.Map{
			"range":    inRange,
			"all_time": allTime,
		},
		"upcoming_meetings": meetings,
	})
}

// StudentStats returns the caller's learning overview
func StudentStats(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Preload("Course").Where("user_id = ? AND is_deleted = ?", user.ID, false).
		Order("updated_at desc").Find(&enrollments).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}

	byStatus := map[string]int{
		courseModels.EnrollmentActive:    0,
		courseModels.EnrollmentCompleted: 0,
		courseModels.EnrollmentCancelled: 0,
	}
	for _, e := range enrollments {
		byStatus[e.Status]++
	}

	var certificates []courseModels.Certificate
	if err := db.Where("user_id = ? AND is_deleted = ?", user.ID, false).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}

	var attempts []courseModels.QuizAttempt
	if err := db.Where("user_id = ? AND is_deleted = ?", user.ID, false).Order("submitted_at desc").
		Limit(latestAttemptsLimit).Find(&attempts).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}

	meetings, err := services.UpcomingMeetings(db, user, time.Now(), upcomingLimit)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch dashboard!", map[string]interface{}{"area": "dashboard"})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"enrollments":       enrollments,
		"counts":            byStatus,
		"certificates":      certificates,
		"latest_attempts":   attempts,
		"upcoming_meetings": meetings,
	})
}
