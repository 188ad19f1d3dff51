package meetingController

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/services"
	"eduhub/utils"
	"eduhub/validators"
	meetingValidator "eduhub/validators/meeting"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateMeeting schedules a live session for the course and books its room
func CreateMeeting(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	course := middleware.CurrentCourse(c)

	reqData, ok := validators.Get[meetingValidator.MeetingRequest](c, "validatedMeeting")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	room, err := utils.CreateMeetingRoom(reqData.Title, reqData.StartsAt, reqData.DurationMinutes)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to create meeting room!", map[string]interface{}{"area": "meeting-provider", "course_id": course.ID})
	}

	meeting := models.Meeting{
		CourseID:        course.ID,
		HostID:          user.ID,
		Title:           reqData.Title,
		Description:     reqData.Description,
		StartsAt:        reqData.StartsAt,
		DurationMinutes: reqData.DurationMinutes,
		JoinURL:         room.JoinURL,
		Provider:        room.Provider,
		ProviderRoomID:  room.RoomID,
		Status:          models.MeetingScheduled,
	}
	if err := database.Database.Db.Create(&meeting).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to create meeting!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Meeting scheduled successfully!", meeting)
}

// findManagedMeeting loads a scheduled meeting of a course the caller manages
func findManagedMeeting(c *fiber.Ctx, db *gorm.DB) (models.Meeting, error) {
	user, _ := middleware.CurrentUser(c)

	var meeting models.Meeting
	if err := db.Where("id = ? AND is_deleted = ?", validators.ID(c, "meetingID"), false).First(&meeting).Error; err != nil {
		return meeting, fiber.NewError(fiber.StatusNotFound, "Meeting not found!")
	}

	course, err := services.FindCourse(db, meeting.CourseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return meeting, fiber.NewError(fiber.StatusNotFound, "Course not found!")
		}
		return meeting, err
	}
	if !services.CanManageCourse(user, course) {
		return meeting, fiber.NewError(fiber.StatusForbidden, "You can only manage meetings of your own courses!")
	}
	if meeting.Status != models.MeetingScheduled {
		return meeting, fiber.NewError(fiber.StatusConflict, "Only scheduled meetings can be changed!")
	}
	return meeting, nil
}

func lookupError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return middleware.JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return middleware.InternalError(c, err, "Failed to load meeting!", nil)
}

// UpdateMeeting edits a scheduled meeting. Moving it re-arms the reminder.
func UpdateMeeting(c *fiber.Ctx) error {
	db := database.Database.Db

	meeting, err := findManagedMeeting(c, db)
	if err != nil {
		return lookupError(c, err)
	}

	reqData, ok := validators.Get[meetingValidator.UpdateMeetingRequest](c, "validatedMeetingUpdate")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != nil {
		meeting.Title = *reqData.Title
	}
	if reqData.Description != nil {
		meeting.Description = *reqData.Description
	}
	if reqData.StartsAt != nil && !reqData.StartsAt.Equal(meeting.StartsAt) {
		meeting.StartsAt = *reqData.StartsAt
		meeting.ReminderSent = false
	}
	if reqData.DurationMinutes != nil {
		meeting.DurationMinutes = *reqData.DurationMinutes
	}

	if err := db.Save(&meeting).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update meeting!", map[string]interface{}{"meeting_id": meeting.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Meeting updated successfully!", meeting)
}

// CancelMeeting cancels a scheduled meeting
func CancelMeeting(c *fiber.Ctx) error {
	db := database.Database.Db

	meeting, err := findManagedMeeting(c, db)
	if err != nil {
		return lookupError(c, err)
	}

	meeting.Status = models.MeetingCancelled
	if err := db.Model(&meeting).Update("status", models.MeetingCancelled).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to cancel meeting!", map[string]interface{}{"meeting_id": meeting.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Meeting cancelled successfully!", meeting)
}

// CourseMeetings lists the meetings of a course, soonest first
func CourseMeetings(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)

	var meetings []models.Meeting
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("starts_at asc").Find(&meetings).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch meetings!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Meetings fetched successfully!", meetings)
}

// UpcomingMeetings lists the caller's upcoming meetings
func UpcomingMeetings(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	meetings, err := services.UpcomingMeetings(database.Database.Db, user, time.Now(), 0)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch meetings!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Upcoming meetings fetched successfully!", meetings)
}
