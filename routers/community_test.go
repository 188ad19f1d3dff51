package routers_test

import (
	"eduhub/models"
	courseModels "eduhub/models/course"
	"eduhub/testutil"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewList struct {
	Summary struct {
		Average      float64          `json:"average"`
		Count        int64            `json:"count"`
		Distribution map[string]int64 `json:"distribution"`
	} `json:"summary"`
	Reviews []struct {
		Rating   int    `json:"rating"`
		UserName string `json:"user_name"`
	} `json:"reviews"`
}

func TestReviews(t *testing.T) {
	app, db := newApp(t)
	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	course := testutil.CreateCourse(t, db, instructor.ID, 0, true)
	path := fmt.Sprintf("/course/%d/review", course.ID)

	alice := testutil.CreateUser(t, db, models.RoleStudent)
	bob := testutil.CreateUser(t, db, models.RoleStudent)
	aliceToken := testutil.Token(t, alice)

	status, _ := testutil.Do(t, app, http.MethodPost, path, aliceToken, fiber.Map{"rating": 5})
	assert.Equal(t, http.StatusForbidden, status, "reviews need an enrollment")

	testutil.CreateEnrollment(t, db, alice.ID, course.ID, courseModels.SourceFree)
	testutil.CreateEnrollment(t, db, bob.ID, course.ID, courseModels.SourceFree)

	status, _ = testutil.Do(t, app, http.MethodPost, path, aliceToken, fiber.Map{"rating": 6})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body := testutil.Do(t, app, http.MethodPost, path, aliceToken, fiber.Map{"rating": 5, "comment": "  Clear and practical  "})
	require.Equal(t, http.StatusCreated, status, body.Message)
	var review models.Review
	body.DataAs(t, &review)
	assert.Equal(t, "Clear and practical", review.Comment)

	status, _ = testutil.Do(t, app, http.MethodPost, path, aliceToken, fiber.Map{"rating": 4})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = testutil.Do(t, app, http.MethodPost, path, testutil.Token(t, bob), fiber.Map{"rating": 2})
	require.Equal(t, http.StatusCreated, status)

	status, _ = testutil.Do(t, app, http.MethodPut, path, aliceToken, fiber.Map{"rating": 4})
	require.Equal(t, http.StatusOK, status)

	status, body = testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/course/%d/reviews", course.ID), "", nil)
	require.Equal(t, http.StatusOK, status, body.Message)
	var list reviewList
	body.DataAs(t, &list)
	assert.Equal(t, int64(2), list.Summary.Count)
	assert.Equal(t, 3.0, list.Summary.Average)
	assert.Equal(t, int64(1), list.Summary.Distribution["4"])
	assert.Equal(t, int64(0), list.Summary.Distribution["5"])
	require.Len(t, list.Reviews, 2)
	assert.NotEmpty(t, list.Reviews[0].UserName)

	status, _ = testutil.Do(t, app, http.MethodDelete, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = testutil.Do(t, app, http.MethodDelete, path, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/course/%d/reviews", course.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	body.DataAs(t, &list)
	assert.Equal(t, int64(1), list.Summary.Count)

	status, _ = testutil.Do(t, app, http.MethodPost, path, aliceToken, fiber.Map{"rating": 3})
	assert.Equal(t, http.StatusCreated, status, "a deleted review can be written again")

	draft := testutil.CreateCourse(t, db, instructor.ID, 0, false)
	status, _ = testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/course/%d/reviews", draft.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

type announcementList struct {
	Announcements []models.Announcement `json:"announcements"`
}

func TestAnnouncements(t *testing.T) {
	app, db := newApp(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	instructor := testutil.CreateUser(t, db, models.RoleInstructor)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	outsider := testutil.CreateUser(t, db, models.RoleStudent)
	course := testutil.CreateCourse(t, db, instructor.ID, 0, true)
	testutil.CreateEnrollment(t, db, student.ID, course.ID, courseModels.SourceFree)
	instructorToken := testutil.Token(t, instructor)

	status, _ := testutil.Do(t, app, http.MethodPost, "/announcement", instructorToken, fiber.Map{
		"title": "Platform news", "body": "Instructors cannot post platform wide",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	other := testutil.CreateCourse(t, db, admin.ID, 0, true)
	status, _ = testutil.Do(t, app, http.MethodPost, "/announcement", instructorToken, fiber.Map{
		"course_id": other.ID, "title": "Not mine", "body": "Someone else's course",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := testutil.Do(t, app, http.MethodPost, "/announcement", instructorToken, fiber.Map{
		"course_id": course.ID, "title": "Week two", "body": "Lessons for week two are live",
	})
	require.Equal(t, http.StatusCreated, status, body.Message)
	var courseNews models.Announcement
	body.DataAs(t, &courseNews)

	status, _ = testutil.Do(t, app, http.MethodPost, "/announcement", testutil.Token(t, admin), fiber.Map{
		"title": "Maintenance", "body": "Short downtime on Sunday", "audience": "instructors", "is_pinned": true,
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = testutil.Do(t, app, http.MethodPost, "/announcement", testutil.Token(t, admin), fiber.Map{
		"title": "Welcome", "body": "Welcome to the new term",
	})
	require.Equal(t, http.StatusCreated, status)

	titles := func(token string) []string {
		status, body := testutil.Do(t, app, http.MethodGet, "/announcements", token, nil)
		require.Equal(t, http.StatusOK, status, body.Message)
		var list announcementList
		body.DataAs(t, &list)
		result := make([]string, 0, len(list.Announcements))
		for _, a := range list.Announcements {
			result = append(result, a.Title)
		}
		return result
	}

	assert.ElementsMatch(t, []string{"Week two", "Welcome"}, titles(testutil.Token(t, student)))
	assert.ElementsMatch(t, []string{"Welcome"}, titles(testutil.Token(t, outsider)))
	instructorTitles := titles(instructorToken)
	require.Len(t, instructorTitles, 3)
	assert.Equal(t, "Maintenance", instructorTitles[0], "pinned first")

	status, _ = testutil.Do(t, app, http.MethodGet, fmt.Sprintf("/course/%d/announcements", course.ID), testutil.Token(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = testutil.Do(t, app, http.MethodPut, fmt.Sprintf("/announcement/%d", courseNews.ID), testutil.Token(t, testutil.CreateUser(t, db, models.RoleInstructor)), fiber.Map{"title": "Edited"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = testutil.Do(t, app, http.MethodDelete, fmt.Sprintf("/announcement/%d", courseNews.ID), instructorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []string{"Welcome"}, titles(testutil.Token(t, student)))
}

func TestHelpCenter(t *testing.T) {
	app, db := newApp(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	token := testutil.Token(t, admin)

	status, body := testutil.Do(t, app, http.MethodPost, "/admin/help/articles", token, fiber.Map{
		"title": "Resetting your password", "category": "Account", "body": "Use the forgot password link on the login page.",
		"is_published": true,
	})
	require.Equal(t, http.StatusCreated, status, body.Message)
	var article models.HelpArticle
	body.DataAs(t, &article)
	assert.True(t, strings.HasPrefix(article.Slug, "resetting-your-password-"), article.Slug)

	status, body = testutil.Do(t, app, http.MethodPost, "/admin/help/articles", token, fiber.Map{
		"title": "Refund policy", "category": "billing", "body": "Refunds are available for fourteen days.",
	})
	require.Equal(t, http.StatusCreated, status)
	var draft models.HelpArticle
	body.DataAs(t, &draft)

	status, _ = testutil.Do(t, app, http.MethodGet, "/help/articles/"+draft.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, status, "drafts are hidden")

	status, body = testutil.Do(t, app, http.MethodGet, "/help/articles?search=PASSWORD", "", nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Articles []models.HelpArticle `json:"articles"`
	}
	body.DataAs(t, &list)
	require.Len(t, list.Articles, 1)

	status, body = testutil.Do(t, app, http.MethodGet, "/help/articles/"+article.Slug, "", nil)
	require.Equal(t, http.StatusOK, status)
	body.DataAs(t, &article)
	assert.Equal(t, int64(1), article.ViewCount)

	status, _ = testutil.Do(t, app, http.MethodPost, "/help/articles/"+article.Slug+"/feedback", "", fiber.Map{"helpful": true})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, db.First(&article, article.ID).Error)
	assert.Equal(t, int64(1), article.HelpfulCount)

	status, _ = testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/admin/help/articles/%d/publish", draft.ID), token, fiber.Map{"is_published": true})
	require.Equal(t, http.StatusOK, status)
	status, body = testutil.Do(t, app, http.MethodGet, "/help/categories", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), `"category":"billing"`)
}

func TestSupportTickets(t *testing.T) {
	app, db := newApp(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)
	student := testutil.CreateUser(t, db, models.RoleStudent)
	studentToken := testutil.Token(t, student)

	status, _ := testutil.Do(t, app, http.MethodPost, "/support/ticket", studentToken, fiber.Map{"subject": "Hi", "message": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body := testutil.Do(t, app, http.MethodPost, "/support/ticket", studentToken, fiber.Map{
		"subject": "Video does not load", "message": "Lesson three video stays black.", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, status, body.Message)
	var ticket models.SupportTicket
	body.DataAs(t, &ticket)
	assert.Equal(t, models.TicketOpen, ticket.Status)

	status, _ = testutil.Do(t, app, http.MethodGet, "/admin/tickets", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	reply := fmt.Sprintf("/admin/tickets/%d/reply", ticket.ID)
	status, body = testutil.Do(t, app, http.MethodPost, reply, testutil.Token(t, admin), fiber.Map{"reply": "Fixed, please retry.", "status": "closed"})
	require.Equal(t, http.StatusOK, status, body.Message)
	status, _ = testutil.Do(t, app, http.MethodPost, reply, testutil.Token(t, admin), fiber.Map{"reply": "Again", "status": "RESOLVED"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = testutil.Do(t, app, http.MethodGet, "/support/tickets?status=closed", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Tickets []models.SupportTicket `json:"tickets"`
	}
	body.DataAs(t, &list)
	require.Len(t, list.Tickets, 1)
	assert.Equal(t, "Fixed, please retry.", list.Tickets[0].AdminReply)

	status, body = testutil.Do(t, app, http.MethodGet, "/support/tickets", testutil.Token(t, testutil.CreateUser(t, db, models.RoleStudent)), nil)
	require.Equal(t, http.StatusOK, status)
	body.DataAs(t, &list)
	assert.Empty(t, list.Tickets)
}
