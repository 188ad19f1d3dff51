package announcementController

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/utils"
	"eduhub/validators"
	announcementValidator "eduhub/validators/announcement"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// audiencesFor lists the platform audiences a role reads
func audiencesFor(role string) []string {
	switch role {
	case models.RoleStudent:
		return []string{models.AudienceAll, models.AudienceStudents}
	case models.RoleInstructor:
		return []string{models.AudienceAll, models.AudienceInstructors}
	}
	return []string{models.AudienceAll, models.AudienceStudents, models.AudienceInstructors}
}

// notifyStudents emails the students enrolled in a course
func notifyStudents(db *gorm.DB, course courseModels.Course, announcement models.Announcement) {
	var students []models.User
	err := db.Model(&models.User{}).
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.course_id = ? AND enrollments.status IN ? AND enrollments.is_deleted = ?",
			course.ID, []string{courseModels.EnrollmentActive, courseModels.EnrollmentCompleted}, false).
		Where("users.is_deleted = ?", false).
		Find(&students).Error
	if err != nil {
		utils.ReportError(err, map[string]interface{}{"area": "announcement", "announcement_id": announcement.ID})
		return
	}
	for _, s := range students {
		utils.SendAnnouncementEmail(s.Email, s.Name, course.Title, announcement.Title, announcement.Body)
	}
}

// CreateAnnouncement posts an announcement. Instructors post to their own
// courses, admins post anywhere including platform wide.
func CreateAnnouncement(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	reqData, ok := validators.Get[announcementValidator.AnnouncementRequest](c, "validatedAnnouncement")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course *courseModels.Course
	if reqData.CourseID != nil {
		found, err := services.FindCourse(db, *reqData.CourseID)
		if err != nil {
			if errors.Is(err, services.ErrCourseNotFound) {
				return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
			}
			return middleware.InternalError(c, err, "Failed to create announcement!", nil)
		}
		if !services.CanManageCourse(user, found) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only announce to your own courses!", nil)
		}
		course = &found
	} else if user.Role != models.RoleAdmin {
		return middleware.ValidationErrorResponse(c, map[string]string{"course_id": "Course id is required!"})
	}

	announcement := models.Announcement{
		AuthorID:    user.ID,
		CourseID:    reqData.CourseID,
		Title:       reqData.Title,
		Body:        reqData.Body,
		Audience:    reqData.Audience,
		IsPinned:    reqData.IsPinned,
		PublishedAt: time.Now(),
	}
	if err := db.Create(&announcement).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to create announcement!", nil)
	}

	if course != nil {
		notifyStudents(db, *course, announcement)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Announcement posted successfully!", announcement)
}

// ListAnnouncements returns the platform announcements for the caller's role
// and the announcements of the courses the caller studies or teaches
func ListAnnouncements(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	p := validators.GetPagination(c)
	db := database.Database.Db

	courseIDs, err := services.MemberCourseIDs(db, user)
	if err != nil {
		return middleware.InternalError(c, err, "Failed to fetch announcements!", nil)
	}

	query := db.Model(&models.Announcement{}).Where("is_deleted = ?", false)
	if len(courseIDs) > 0 {
		query = query.Where("((course_id IS NULL AND audience IN ?) OR course_id IN ?)", audiencesFor(user.Role), courseIDs)
	} else {
		query = query.Where("course_id IS NULL AND audience IN ?", audiencesFor(user.Role))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch announcements!", nil)
	}

	var announcements []models.Announcement
	if err := query.Order("is_pinned desc").Order("published_at desc").
		Offset(p.Offset()).Limit(p.Limit).Find(&announcements).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch announcements!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcements fetched successfully!", fiber.Map{
		"announcements": announcements,
		"pagination":    p.Meta(total),
	})
}

// CourseAnnouncements lists the announcements of a course
func CourseAnnouncements(c *fiber.Ctx) error {
	course := middleware.CurrentCourse(c)
	p := validators.GetPagination(c)

	query := database.Database.Db.Model(&models.Announcement{}).
		Where("course_id = ? AND is_deleted = ?", course.ID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch announcements!", map[string]interface{}{"course_id": course.ID})
	}

	var announcements []models.Announcement
	if err := query.Order("is_pinned desc").Order("published_at desc").
		Offset(p.Offset()).Limit(p.Limit).Find(&announcements).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch announcements!", map[string]interface{}{"course_id": course.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcements fetched successfully!", fiber.Map{
		"announcements": announcements,
		"pagination":    p.Meta(total),
	})
}

// findOwnAnnouncement loads an announcement the caller authored, admins may edit any
func findOwnAnnouncement(c *fiber.Ctx, db *gorm.DB) (models.Announcement, error) {
	user, _ := middleware.CurrentUser(c)

	var announcement models.Announcement
	if err := db.Where("id = ? AND is_deleted = ?", validators.ID(c, "announcementID"), false).First(&announcement).Error; err != nil {
		return announcement, fiber.NewError(fiber.StatusNotFound, "Announcement not found!")
	}
	if announcement.AuthorID != user.ID && user.Role != models.RoleAdmin {
		return announcement, fiber.NewError(fiber.StatusForbidden, "You can only edit your own announcements!")
	}
	return announcement, nil
}

func lookupError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return middleware.JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return middleware.InternalError(c, err, "Failed to load announcement!", nil)
}

// UpdateAnnouncement edits an announcement
func UpdateAnnouncement(c *fiber.Ctx) error {
	db := database.Database.Db

	announcement, err := findOwnAnnouncement(c, db)
	if err != nil {
		return lookupError(c, err)
	}

	reqData, ok := validators.Get[announcementValidator.UpdateAnnouncementRequest](c, "validatedAnnouncementUpdate")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != nil {
		announcement.Title = *reqData.Title
	}
	if reqData.Body != nil {
		announcement.Body = *reqData.Body
	}
	if reqData.Audience != nil {
		announcement.Audience = *reqData.Audience
	}
	if reqData.IsPinned != nil {
		announcement.IsPinned = *reqData.IsPinned
	}

	if err := db.Save(&announcement).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update announcement!", map[string]interface{}{"announcement_id": announcement.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcement updated successfully!", announcement)
}

// DeleteAnnouncement soft deletes an announcement
func DeleteAnnouncement(c *fiber.Ctx) error {
	db := database.Database.Db

	announcement, err := findOwnAnnouncement(c, db)
	if err != nil {
		return lookupError(c, err)
	}

	if err := db.Model(&announcement).Update("is_deleted", true).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to delete announcement!", map[string]interface{}{"announcement_id": announcement.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Announcement deleted successfully!", nil)
}
