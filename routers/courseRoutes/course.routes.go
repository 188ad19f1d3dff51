package courseRoutes

import (
	announcementController "eduhub/controllers/announcement"
	controllers "eduhub/controllers/course"
	meetingController "eduhub/controllers/meeting"
	"eduhub/middleware"
	"eduhub/validators"
	courseValidators "eduhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course")
	anyUser := middleware.RequireRoles()

	// Catalog
	userGroup.Get("/list", courseValidators.CourseList(), validators.Paginate(), controllers.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), controllers.GetCourseDetails)

	// Enrollment
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), controllers.EnrollInCourse)
	userGroup.Delete("/:id/enroll", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), controllers.CancelEnrollment)

	// Reviews
	userGroup.Get("/:id/reviews", courseValidators.CourseParam(), validators.Paginate(), controllers.CourseReviews)
	userGroup.Post("/:id/review", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), courseValidators.Review(), controllers.SubmitReview)
	userGroup.Put("/:id/review", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), courseValidators.Review(), controllers.UpdateReview)
	userGroup.Delete("/:id/review", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), controllers.DeleteReview)

	// Course feed
	userGroup.Get("/:id/announcements", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), middleware.CourseAccess(), validators.Paginate(), announcementController.CourseAnnouncements)
	userGroup.Get("/:id/meetings", middleware.JWTMiddleware, anyUser, courseValidators.CourseParam(), middleware.CourseAccess(), meetingController.CourseMeetings)

	// Progress tracking
	userGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, anyUser, courseValidators.CourseIDParam(), courseValidators.LessonParam(), middleware.CourseAccess(), controllers.MarkLessonComplete)
	userGroup.Get("/:course_id/progress", middleware.JWTMiddleware, anyUser, courseValidators.CourseIDParam(), middleware.CourseAccess(), controllers.GetUserProgress)

	// Quizzes
	userGroup.Get("/:course_id/quiz/:quiz_id", middleware.JWTMiddleware, anyUser, courseValidators.CourseIDParam(), courseValidators.QuizParam(), middleware.CourseAccess(), controllers.GetQuiz)
	userGroup.Post("/:course_id/quiz/:quiz_id/submit", middleware.JWTMiddleware, anyUser, courseValidators.CourseIDParam(), courseValidators.QuizParam(), middleware.CourseAccess(), courseValidators.SubmitQuiz(), controllers.SubmitQuiz)
	userGroup.Get("/:course_id/quiz/:quiz_id/attempts", middleware.JWTMiddleware, anyUser, courseValidators.CourseIDParam(), courseValidators.QuizParam(), middleware.CourseAccess(), controllers.ListAttempts)

	// Certificates
	userGroup.Post("/:course_id/certificate/request", middleware.JWTMiddleware, anyUser, courseValidators.CourseIDParam(), controllers.RequestCertificate)
	app.Get("/certificate/verify/:number", controllers.VerifyCertificate)
}
