package utils_test

import (
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/testutil"
	"eduhub/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessSubscriptionSweep(t *testing.T) {
	db := testutil.Setup(t)
	now := time.Now()

	create := func(id string, cancelAtPeriodEnd bool, periodEnd time.Time) models.Subscription {
		user := testutil.CreateUser(t, db, models.RoleStudent)
		sub := models.Subscription{
			UserID:               user.ID,
			StripeSubscriptionID: id,
			PlanName:             "Monthly",
			Status:               models.SubscriptionActive,
			CurrentPeriodEnd:     &periodEnd,
			CancelAtPeriodEnd:    cancelAtPeriodEnd,
		}
		require.NoError(t, db.Create(&sub).Error)
		return sub
	}
	ending := create("sub_ending", true, now.Add(48*time.Hour))
	renewing := create("sub_renewing", false, now.Add(48*time.Hour))
	over := create("sub_over", true, now.Add(-time.Hour))
	later := create("sub_later", true, now.Add(10*24*time.Hour))

	reminded, canceled, err := utils.ProcessSubscriptionSweep(db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, reminded)
	assert.Equal(t, int64(1), canceled)

	reload := func(s models.Subscription) models.Subscription {
		var fresh models.Subscription
		require.NoError(t, db.First(&fresh, s.ID).Error)
		return fresh
	}
	assert.True(t, reload(ending).ReminderSent)
	assert.False(t, reload(renewing).ReminderSent)
	assert.False(t, reload(later).ReminderSent)
	assert.Equal(t, models.SubscriptionCanceled, reload(over).Status)
	assert.NotNil(t, reload(over).CanceledAt)

	reminded, canceled, err = utils.ProcessSubscriptionSweep(db, now)
	require.NoError(t, err)
	assert.Zero(t, reminded, "reminders go out once")
	assert.Zero(t, canceled)
}

func TestProcessMeetingSweep(t *testing.T) {
	db := testutil.Setup(t)
	now := time.Now()

	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	course := testutil.CreateCourse(t, db, instructor.ID, 0, true)
	testutil.CreateEnrollment(t, db, student.ID, course.ID, courseModels.SourceFree)

	create := func(startsIn time.Duration, minutes int) models.Meeting {
		m := models.Meeting{
			CourseID: course.ID, HostID: instructor.ID, Title: "Office hours",
			StartsAt: now.Add(startsIn), DurationMinutes: minutes, Status: models.MeetingScheduled,
			JoinURL: "https://meet.eduhub.test/room",
		}
		require.NoError(t, db.Create(&m).Error)
		return m
	}
	soon := create(30*time.Minute, 60)
	tomorrow := create(24*time.Hour, 60)
	running := create(-30*time.Minute, 60)
	finished := create(-3*time.Hour, 60)

	reminded, completed, err := utils.ProcessMeetingSweep(db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, reminded)
	assert.Equal(t, 1, completed)

	reload := func(m models.Meeting) models.Meeting {
		var fresh models.Meeting
		require.NoError(t, db.First(&fresh, m.ID).Error)
		return fresh
	}
	assert.True(t, reload(soon).ReminderSent)
	assert.False(t, reload(tomorrow).ReminderSent)
	assert.Equal(t, models.MeetingScheduled, reload(running).Status)
	assert.Equal(t, models.MeetingCompleted, reload(finished).Status)

	reminded, _, err = utils.ProcessMeetingSweep(db, now)
	require.NoError(t, err)
	assert.Zero(t, reminded)
}
