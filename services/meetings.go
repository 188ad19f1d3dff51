package services

import (
	"eduhub/models"
	courseModels "eduhub/models/course"
	"time"

	"gorm.io/gorm"
)

// MemberCourseIDs returns the courses the user takes part in: the
// ones they are actively enrolled in plus, for instructors, the ones they teach
func MemberCourseIDs(db *gorm.DB, user models.User) ([]uint, error) {
	var ids []uint
	if err := db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND status IN ? AND is_deleted = ?", user.ID,
			[]string{courseModels.EnrollmentActive, courseModels.EnrollmentCompleted}, false).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}

	if user.Role == models.RoleInstructor {
		var own []uint
		if err := db.Model(&courseModels.Course{}).
			Where("instructor_id = ? AND is_deleted = ?", user.ID, false).
			Pluck("id", &own).Error; err != nil {
			return nil, err
		}
		ids = append(ids, own...)
	}
	return ids, nil
}

// UpcomingMeetings lists the scheduled meetings of the user's courses starting at or after at
func UpcomingMeetings(db *gorm.DB, user models.User, at time.Time, limit int) ([]models.Meeting, error) {
	meetings := []models.Meeting{}

	courseIDs, err := MemberCourseIDs(db, user)
	if err != nil || len(courseIDs) == 0 {
		return meetings, err
	}

	query := db.Where("course_id IN ? AND status = ? AND is_deleted = ? AND starts_at >= ?",
		courseIDs, models.MeetingScheduled, false, at).
		Order("starts_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err = query.Find(&meetings).Error
	return meetings, err
}
