package courseRoutes

import (
	controllers "eduhub/controllers/course"
	dashboardController "eduhub/controllers/dashboard"
	meetingController "eduhub/controllers/meeting"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/validators"
	courseValidators "eduhub/validators/course"
	meetingValidators "eduhub/validators/meeting"

	"github.com/gofiber/fiber/v2"
)

// SetupInstructorCourseRoutes sets up course authoring, review and instructor reporting routes.
// Every /instructor/course/:id route passes CourseManager, so instructors only reach their own courses.
func SetupInstructorCourseRoutes(app *fiber.App) {
	staff := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)
	manage := []fiber.Handler{middleware.JWTMiddleware, staff, courseValidators.CourseParam(), middleware.CourseManager()}
	with := func(handlers ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, manage...), handlers...)
	}

	instructor := app.Group("/instructor")

	// Course CRUD
	instructor.Post("/course", middleware.JWTMiddleware, staff, courseValidators.CreateCourse(), controllers.CreateCourse)
	instructor.Get("/courses", middleware.JWTMiddleware, staff, controllers.InstructorCourses)
	instructor.Put("/course/:id", with(courseValidators.UpdateCourse(), controllers.UpdateCourse)...)
	instructor.Delete("/course/:id", with(controllers.DeleteCourse)...)
	instructor.Post("/course/:id/publish", with(courseValidators.Publish(), controllers.PublishCourse)...)
	instructor.Post("/course/:id/thumbnail", with(controllers.UploadThumbnail)...)

	// Module Management
	instructor.Get("/course/:id/modules", with(controllers.ListModules)...)
	instructor.Post("/course/:id/module", with(courseValidators.CreateModule(), controllers.CreateModule)...)
	instructor.Put("/course/:id/module/:module_id", with(courseValidators.ModuleParam(), courseValidators.UpdateModule(), controllers.UpdateModule)...)
	instructor.Delete("/course/:id/module/:module_id", with(courseValidators.ModuleParam(), controllers.DeleteModule)...)

	// Lesson Management
	instructor.Post("/course/:id/lesson", with(courseValidators.CreateLesson(), controllers.CreateLesson)...)
	instructor.Put("/course/:id/lesson/:lesson_id", with(courseValidators.LessonParam(), courseValidators.UpdateLesson(), controllers.UpdateLesson)...)
	instructor.Delete("/course/:id/lesson/:lesson_id", with(courseValidators.LessonParam(), controllers.DeleteLesson)...)
	instructor.Post("/course/:id/lesson/:lesson_id/publish", with(courseValidators.LessonParam(), courseValidators.Publish(), controllers.PublishLesson)...)

	// Quiz Management
	instructor.Post("/course/:id/quiz", with(courseValidators.CreateQuiz(), controllers.CreateQuiz)...)
	instructor.Get("/course/:id/quiz/:quiz_id", with(courseValidators.QuizParam(), controllers.GetQuizForAuthor)...)
	instructor.Put("/course/:id/quiz/:quiz_id", with(courseValidators.QuizParam(), courseValidators.UpdateQuiz(), controllers.UpdateQuiz)...)
	instructor.Delete("/course/:id/quiz/:quiz_id", with(courseValidators.QuizParam(), controllers.DeleteQuiz)...)
	instructor.Post("/course/:id/quiz/:quiz_id/publish", with(courseValidators.QuizParam(), courseValidators.Publish(), controllers.PublishQuiz)...)
	instructor.Post("/course/:id/quiz/:quiz_id/question", with(courseValidators.QuizParam(), courseValidators.Question(), controllers.AddQuestion)...)
	instructor.Put("/course/:id/quiz/:quiz_id/question/:question_id", with(courseValidators.QuizParam(), courseValidators.QuestionParam(), courseValidators.Question(), controllers.UpdateQuestion)...)
	instructor.Delete("/course/:id/quiz/:quiz_id/question/:question_id", with(courseValidators.QuizParam(), courseValidators.QuestionParam(), controllers.DeleteQuestion)...)
	instructor.Get("/quiz/:quiz_id/results", middleware.JWTMiddleware, staff, courseValidators.QuizParam(), controllers.QuizResults)

	// Enrollment & live sessions
	instructor.Get("/course/:id/enrollments", with(courseValidators.EnrollmentList(), validators.Paginate(), controllers.CourseEnrollments)...)
	instructor.Post("/course/:id/meeting", with(meetingValidators.CreateMeeting(), meetingController.CreateMeeting)...)
	instructor.Put("/meeting/:meeting_id", middleware.JWTMiddleware, staff, meetingValidators.MeetingParam(), meetingValidators.UpdateMeeting(), meetingController.UpdateMeeting)
	instructor.Delete("/meeting/:meeting_id", middleware.JWTMiddleware, staff, meetingValidators.MeetingParam(), meetingController.CancelMeeting)

	instructor.Get("/dashboard", middleware.JWTMiddleware, staff, validators.DateRange(), dashboardController.InstructorStats)

	// Certificate review
	certGroup := app.Group("/admin/certificates")
	certGroup.Get("/pending", middleware.JWTMiddleware, staff, validators.Paginate(), controllers.PendingCertificates)
	certGroup.Get("/issued", middleware.JWTMiddleware, staff, validators.Paginate(), controllers.IssuedCertificates)

	certRequestGroup := app.Group("/admin/certificate")
	certRequestGroup.Post("/:request_id/approve", middleware.JWTMiddleware, staff, courseValidators.RequestParam(), controllers.ApproveCertificate)
	certRequestGroup.Post("/:request_id/reject", middleware.JWTMiddleware, staff, courseValidators.RequestParam(), courseValidators.RejectCertificate(), controllers.RejectCertificate)
}
