package services

import (
	courseModels "eduhub/models/course"
	"fmt"
	"math"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// DateRange is a half open interval [From, To). All means unbounded.
type DateRange struct {
	Name string    `json:"name"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	All  bool      `json:"all"`
}

// Scope restricts a query on column to the range
func (r DateRange) Scope(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.All {
			return db
		}
		return db.Where(column+" >= ? AND "+column+" < ?", r.From, r.To)
	}
}

// ResolveRange turns a named range (today, week, month, year, all) or an explicit
// from/to pair (YYYY-MM-DD, both inclusive days) into a DateRange.
func ResolveRange(name, from, to string, at time.Time) (DateRange, error) {
	if from != "" || to != "" {
		if from == "" || to == "" {
			return DateRange{}, fmt.Errorf("both from and to are required")
		}
		f, err := time.ParseInLocation("2006-01-02", from, at.Location())
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid from date")
		}
		t, err := time.ParseInLocation("2006-01-02", to, at.Location())
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid to date")
		}
		if t.Before(f) {
			return DateRange{}, fmt.Errorf("to must not be before from")
		}
		return DateRange{Name: "custom", From: f, To: t.AddDate(0, 0, 1)}, nil
	}

	n := now.With(at)
	switch name {
	case "today":
		start := n.BeginningOfDay()
		return DateRange{Name: name, From: start, To: start.AddDate(0, 0, 1)}, nil
	case "week":
		start := n.BeginningOfWeek()
		return DateRange{Name: name, From: start, To: start.AddDate(0, 0, 7)}, nil
	case "", "month":
		start := n.BeginningOfMonth()
		return DateRange{Name: "month", From: start, To: start.AddDate(0, 1, 0)}, nil
	case "year":
		start := n.BeginningOfYear()
		return DateRange{Name: name, From: start, To: start.AddDate(1, 0, 0)}, nil
	case "all":
		return DateRange{Name: name, All: true}, nil
	default:
		return DateRange{}, fmt.Errorf("range must be today, week, month, year or all")
	}
}

// CompletionRate returns completed/total as a percentage, 0 when total is 0
func CompletionRate(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(completed) / float64(total) * 100)
}

// SplitAmount divides a sale between the platform and the instructor
func SplitAmount(amount int64, feePercent float64) (platformFee, instructorShare int64) {
	if amount <= 0 {
		return 0, 0
	}
	if feePercent < 0 {
		feePercent = 0
	}
	if feePercent > 100 {
		feePercent = 100
	}
	platformFee = int64(math.Round(float64(amount) * feePercent / 100))
	return platformFee, amount - platformFee
}

// CourseEnrollmentStats summarizes the non cancelled enrollments of a course
type CourseEnrollmentStats struct {
	CourseID        uint    `json:"course_id"`
	Enrollments     int64   `json:"enrollments"`
	Completed       int64   `json:"completed"`
	AverageProgress float64 `json:"average_progress"`
	CompletionRate  float64 `json:"completion_rate"`
}

// EnrollmentStats returns the stats of every given course, zero valued for courses without enrollments
func EnrollmentStats(db *gorm.DB, courseIDs []uint) (map[uint]CourseEnrollmentStats, error) {
	stats := make(map[uint]CourseEnrollmentStats, len(courseIDs))
	for _, id := range courseIDs {
		stats[id] = CourseEnrollmentStats{CourseID: id}
	}
	if len(courseIDs) == 0 {
		return stats, nil
	}

	var rows []struct {
		CourseID        uint
		Enrollments     int64
		Completed       int64
		AverageProgress float64
	}
	err := db.Model(&courseModels.Enrollment{}).
		Select("course_id, COUNT(*) AS enrollments, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed, AVG(progress) AS average_progress",
			courseModels.EnrollmentCompleted).
		Where("course_id IN ? AND is_deleted = ? AND status <> ?", courseIDs, false, courseModels.EnrollmentCancelled).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}

	for _, r := range rows {
		stats[r.CourseID] = CourseEnrollmentStats{
			CourseID:        r.CourseID,
			Enrollments:     r.Enrollments,
			Completed:       r.Completed,
			AverageProgress: Round2(r.AverageProgress),
			CompletionRate:  CompletionRate(r.Completed, r.Enrollments),
		}
	}
	return stats, nil
}
