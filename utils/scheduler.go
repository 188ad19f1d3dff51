package utils

import (
	"eduhub/database"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	subscriptionReminderWindow = 3 * 24 * time.Hour
	meetingReminderWindow      = time.Hour
)

func logScheduler(format string, args ...interface{}) {
	log.Printf("[SCHEDULER] "+format, args...)
}

// ProcessSubscriptionSweep reminds users whose non renewing subscription ends soon and
// marks the ones whose period is over as canceled.
func ProcessSubscriptionSweep(db *gorm.DB, at time.Time) (reminded int, canceled int64, err error) {
	var ending []models.Subscription
	if err := db.
		Where("status IN ? AND cancel_at_period_end = ? AND reminder_sent = ? AND is_deleted = ?",
			[]string{models.SubscriptionActive, models.SubscriptionTrialing}, true, false, false).
		Where("current_period_end IS NOT NULL AND current_period_end BETWEEN ? AND ?", at, at.Add(subscriptionReminderWindow)).
		Find(&ending).Error; err != nil {
		return 0, 0, err
	}

	for _, sub := range ending {
		var user models.User
		if err := db.Where("id = ?", sub.UserID).First(&user).Error; err != nil {
			logScheduler("subscription %d: user %d not found: %v", sub.ID, sub.UserID, err)
			continue
		}
		SendSubscriptionEndingEmail(user.Email, user.Name, sub.PlanName, *sub.CurrentPeriodEnd)
		if err := db.Model(&sub).Update("reminder_sent", true).Error; err != nil {
			return reminded, 0, err
		}
		reminded++
	}

	result := db.Model(&models.Subscription{}).
		Where("status IN ? AND cancel_at_period_end = ? AND is_deleted = ?",
			[]string{models.SubscriptionActive, models.SubscriptionTrialing}, true, false).
		Where("current_period_end IS NOT NULL AND current_period_end < ?", at).
		Updates(map[string]interface{}{"status": models.SubscriptionCanceled, "canceled_at": at})
	if result.Error != nil {
		return reminded, 0, result.Error
	}

	return reminded, result.RowsAffected, nil
}

type meetingRecipient struct {
	Name  string
	Email string
}

// ProcessMeetingSweep reminds enrolled students of meetings starting within the hour
// and closes meetings that are over.
func ProcessMeetingSweep(db *gorm.DB, at time.Time) (reminded int, completed int, err error) {
	var upcoming []models.Meeting
	if err := db.
		Where("status = ? AND reminder_sent = ? AND is_deleted = ?", models.MeetingScheduled, false, false).
		Where("starts_at >= ? AND starts_at <= ?", at, at.Add(meetingReminderWindow)).
		Find(&upcoming).Error; err != nil {
		return 0, 0, err
	}

	for _, meeting := range upcoming {
		var recipients []meetingRecipient
		if err := db.Model(&models.User{}).
			Select("users.name, users.email").
			Joins("JOIN enrollments ON enrollments.user_id = users.id").
			Where("enrollments.course_id = ? AND enrollments.status IN ? AND enrollments.is_deleted = ? AND users.is_deleted = ?",
				meeting.CourseID, []string{courseModels.EnrollmentActive, courseModels.EnrollmentCompleted}, false, false).
			Scan(&recipients).Error; err != nil {
			return reminded, completed, err
		}
		for _, r := range recipients {
			SendMeetingReminderEmail(r.Email, r.Name, meeting.Title, meeting.JoinURL, meeting.StartsAt)
		}
		if err := db.Model(&meeting).Update("reminder_sent", true).Error; err != nil {
			return reminded, completed, err
		}
		reminded++
	}

	var started []models.Meeting
	if err := db.Where("status = ? AND is_deleted = ? AND starts_at < ?", models.MeetingScheduled, false, at).
		Find(&started).Error; err != nil {
		return reminded, completed, err
	}
	for _, meeting := range started {
		if meeting.EndsAt().After(at) {
			continue
		}
		if err := db.Model(&meeting).Update("status", models.MeetingCompleted).Error; err != nil {
			return reminded, completed, err
		}
		completed++
	}

	return reminded, completed, nil
}

// InitializeSchedulers registers the periodic sweeps and starts the cron runner
func InitializeSchedulers() *cron.Cron {
	logScheduler("Initializing schedulers...")

	c := cron.New()

	c.AddFunc("0 9 * * *", func() {
		reminded, canceled, err := ProcessSubscriptionSweep(database.Database.Db, time.Now())
		if err != nil {
			ReportError(err, map[string]interface{}{"area": "scheduler", "job": "subscriptions"})
			return
		}
		logScheduler("subscriptions: %d reminders sent, %d canceled", reminded, canceled)
	})

	c.AddFunc("*/15 * * * *", func() {
		reminded, completed, err := ProcessMeetingSweep(database.Database.Db, time.Now())
		if err != nil {
			ReportError(err, map[string]interface{}{"area": "scheduler", "job": "meetings"})
			return
		}
		logScheduler("meetings: %d reminded, %d completed", reminded, completed)
	})

	c.Start()
	logScheduler("Subscription sweep runs daily at 09:00, meeting sweep every 15 minutes")
	return c
}
