package services_test

import (
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/services"
	"eduhub/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpcomingMeetings(t *testing.T) {
	db := testutil.Setup(t)
	now := time.Now()

	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	enrolled := testutil.CreateCourse(t, db, instructor.ID, 0, true)
	other := testutil.CreateCourse(t, db, instructor.ID, 0, true)
	testutil.CreateEnrollment(t, db, student.ID, enrolled.ID, courseModels.SourceFree)

	meeting := func(courseID uint, startsIn time.Duration, status string) models.Meeting {
		m := models.Meeting{
			CourseID: courseID, HostID: instructor.ID, Title: "Live Q&A",
			StartsAt: now.Add(startsIn), DurationMinutes: 60, Status: status,
		}
		require.NoError(t, db.Create(&m).Error)
		return m
	}
	later := meeting(enrolled.ID, 48*time.Hour, models.MeetingScheduled)
	soon := meeting(enrolled.ID, 2*time.Hour, models.MeetingScheduled)
	meeting(enrolled.ID, -2*time.Hour, models.MeetingScheduled)
	meeting(enrolled.ID, 3*time.Hour, models.MeetingCancelled)
	otherCourse := meeting(other.ID, time.Hour, models.MeetingScheduled)

	meetings, err := services.UpcomingMeetings(db, student, now, 0)
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, soon.ID, meetings[0].ID)
	assert.Equal(t, later.ID, meetings[1].ID)

	limited, err := services.UpcomingMeetings(db, student, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	hosted, err := services.UpcomingMeetings(db, instructor, now, 0)
	require.NoError(t, err)
	assert.Len(t, hosted, 3, "instructors see the meetings of the courses they teach")
	assert.Equal(t, otherCourse.ID, hosted[0].ID)

	outsider := testutil.CreateUser(t, db, models.RoleStudent)
	none, err := services.UpcomingMeetings(db, outsider, now, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
