package models

import (
	"time"

	"gorm.io/gorm"
)

// Meeting statuses
const (
	MeetingScheduled = "SCHEDULED"
	MeetingCancelled = "CANCELLED"
	MeetingCompleted = "COMPLETED"
)

// Meeting is a live session scheduled for the students of a course.
type Meeting struct {
	gorm.Model
	CourseID        uint      `json:"course_id" gorm:"index;not null"`
	HostID          uint      `json:"host_id" gorm:"index;not null"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"starts_at" gorm:"index"`
	DurationMinutes int       `json:"duration_minutes" gorm:"default:60"`
	JoinURL         string    `json:"join_url"`
	Provider        string    `json:"provider"`
	ProviderRoomID  string    `json:"provider_room_id"`
	Status          string    `json:"status" gorm:"type:varchar(20);index;default:'SCHEDULED'"`
	ReminderSent    bool      `json:"reminder_sent" gorm:"default:false"`
	IsDeleted       bool      `json:"-" gorm:"default:false"`
}

// EndsAt returns the planned end of the meeting.
func (m Meeting) EndsAt() time.Time {
	return m.StartsAt.Add(time.Duration(m.DurationMinutes) * time.Minute)
}
