package registry

import (
	"github.com/labstack/echo/v4"

	"ndara/internal/api/controllers"
	"ndara/internal/api/middleware"
	"ndara/internal/models"
	"ndara/internal/services"
)

// 📝 RegisterActionRoutes registers every mutation endpoint of the platform - godoc
// @Summary Register action routes
// @Description Course authoring, grading and back-office actions. Every action answers {success, error?, id?}.
// @Accept json
// @Produce json
func RegisterActionRoutes(g *echo.Group, svc *services.Service) {
	registerCourseRoutes(g, controllers.NewCourseController(svc))
	registerContentRoutes(g, controllers.NewContentController(svc))
	registerAssignmentRoutes(g, controllers.NewAssignmentController(svc))
	registerAdminRoutes(g, controllers.NewAdminController(svc))
}

func registerCourseRoutes(g *echo.Group, cc *controllers.CourseController) {
	courses := g.Group("/courses")

	// @Summary List courses
	// @Description List courses, newest first, optionally filtered by status
	// @Produce json
	// @Param status query string false "draft, pending_review or published"
	// @Success 200 {object} map[string]interface{}
	// @Failure 401 {object} map[string]string "Unauthorized"
	// @Router /api/v1/courses [get]
	courses.GET("", cc.List)

	authoring := courses.Group("")
	authoring.Use(middleware.RequireAnyPermission(models.PermAuthorContent, models.PermManageCourses))
	// @Summary Create course
	// @Description Create a draft course owned by the caller
	// @Accept json
	// @Produce json
	// @Param course body validator.CourseInput true "Course"
	// @Success 201 {object} services.Result
	// @Failure 400 {object} services.Result "Validation error"
	// @Failure 403 {object} services.Result "Forbidden"
	// @Router /api/v1/courses [post]
	authoring.POST("", cc.Create)
	// @Summary Update course
	// @Param courseId path string true "Course ID"
	// @Param course body validator.CourseInput true "Course"
	// @Success 200 {object} services.Result
	// @Router /api/v1/courses/{courseId} [put]
	authoring.PUT("/:courseId", cc.Update)
	// @Summary Submit course for review
	// @Param courseId path string true "Course ID"
	// @Success 200 {object} services.Result
	// @Router /api/v1/courses/{courseId}/submit [post]
	authoring.POST("/:courseId/submit", cc.SubmitForReview)
	// @Summary Delete course
	// @Description Delete a course and every document beneath it. partial=true means the delete ran in several batches.
	// @Param courseId path string true "Course ID"
	// @Success 200 {object} services.Result
	// @Router /api/v1/courses/{courseId} [delete]
	authoring.DELETE("/:courseId", cc.Delete)

	// @Summary Moderate course
	// @Description Approve or reject a course pending review
	// @Param courseId path string true "Course ID"
	// @Param decision body validator.ModerationInput true "Decision"
	// @Success 200 {object} services.Result
	// @Router /api/v1/courses/{courseId}/moderation [post]
	courses.POST("/:courseId/moderation", cc.Moderate, middleware.RequirePermissions(models.PermModerateCourses))
}

func registerContentRoutes(g *echo.Group, cc *controllers.ContentController) {
	course := g.Group("/courses/:courseId")
	course.Use(middleware.RequireAnyPermission(models.PermAuthorContent, models.PermManageCourses))

	// @Summary Create section
	// @Param courseId path string true "Course ID"
	// @Param section body validator.SectionInput true "Section"
	// @Success 201 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections [post]
	course.POST("/sections", cc.CreateSection)
	// @Summary Reorder sections
	// @Param courseId path string true "Course ID"
	// @Param order body validator.ReorderInput true "New positions"
	// @Success 200 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections/order [put]
	course.PUT("/sections/order", cc.ReorderSections)
	// @Summary Delete section
	// @Param courseId path string true "Course ID"
	// @Param sectionId path string true "Section ID"
	// @Success 200 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections/{sectionId} [delete]
	course.DELETE("/sections/:sectionId", cc.DeleteSection)

	section := course.Group("/sections/:sectionId")
	// @Summary Create lecture
	// @Param lecture body validator.LectureInput true "Lecture"
	// @Success 201 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/lectures [post]
	section.POST("/lectures", cc.CreateLecture)
	// @Summary Reorder lectures
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/lectures/order [put]
	section.PUT("/lectures/order", cc.ReorderLectures)
	// @Summary Delete lecture
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/lectures/{lectureId} [delete]
	section.DELETE("/lectures/:lectureId", cc.DeleteLecture)

	// @Summary Create quiz
	// @Param quiz body validator.QuizInput true "Quiz"
	// @Success 201 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/quizzes [post]
	section.POST("/quizzes", cc.CreateQuiz)
	// @Summary Delete quiz and its questions
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/quizzes/{quizId} [delete]
	section.DELETE("/quizzes/:quizId", cc.DeleteQuiz)
	// @Summary Add question
	// @Param question body validator.QuestionInput true "Question with at least two options, one correct"
	// @Success 201 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/quizzes/{quizId}/questions [post]
	section.POST("/quizzes/:quizId/questions", cc.AddQuestion)
	// @Summary Reorder questions
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/quizzes/{quizId}/questions/order [put]
	section.PUT("/quizzes/:quizId/questions/order", cc.ReorderQuestions)
	// @Summary Delete question
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/quizzes/{quizId}/questions/{questionId} [delete]
	section.DELETE("/quizzes/:quizId/questions/:questionId", cc.DeleteQuestion)

	// @Summary Create resource
	// @Param resource body validator.ResourceInput true "Resource"
	// @Success 201 {object} services.Result
	// @Router /api/v1/courses/{courseId}/resources [post]
	course.POST("/resources", cc.CreateResource)
	// @Summary Delete resource
	// @Router /api/v1/courses/{courseId}/resources/{resourceId} [delete]
	course.DELETE("/resources/:resourceId", cc.DeleteResource)
}

func registerAssignmentRoutes(g *echo.Group, ac *controllers.AssignmentController) {
	assignments := g.Group("/courses/:courseId/sections/:sectionId/assignments")

	// @Summary Create assignment
	// @Param assignment body validator.AssignmentInput true "Assignment"
	// @Success 201 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/assignments [post]
	assignments.POST("", ac.Create, middleware.RequireAnyPermission(models.PermAuthorContent, models.PermManageCourses))
	// @Summary Submit work
	// @Description Store the caller's submission. Only enrolled students may submit.
	// @Param submission body validator.SubmissionInput true "Submission"
	// @Success 200 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/assignments/{assignmentId}/submissions [post]
	assignments.POST("/:assignmentId/submissions", ac.Submit)
	// @Summary Grade submission
	// @Description Grade a student's submission and notify them in the same write
	// @Param grade body validator.GradeInput true "Grade"
	// @Success 200 {object} services.Result
	// @Router /api/v1/courses/{courseId}/sections/{sectionId}/assignments/{assignmentId}/submissions/{studentId}/grade [put]
	assignments.PUT("/:assignmentId/submissions/:studentId/grade", ac.Grade,
		middleware.RequirePermissions(models.PermGradeAssignments))
}

func registerAdminRoutes(g *echo.Group, ac *controllers.AdminController) {
	admin := g.Group("/admin")
	admin.Use(middleware.RequirePermissions(models.PermAdminAccess))

	// @Summary List roles
	// @Success 200 {object} map[string]interface{}
	// @Router /api/v1/admin/roles [get]
	admin.GET("/roles", ac.ListRoles)
	// @Summary Update role permissions
	// @Description Merge a permission patch into a role. The admin role always keeps admin.roles.manage.
	// @Param roleId path string true "Role ID"
	// @Param patch body validator.RolePermissionPatch true "Permission patch"
	// @Success 200 {object} services.Result
	// @Failure 403 {object} services.Result "Forbidden"
	// @Router /api/v1/admin/roles/{roleId} [patch]
	admin.PATCH("/roles/:roleId", ac.UpdateRolePermissions)

	security := admin.Group("/security")
	security.Use(middleware.RequirePermissions(models.PermManageSecurity))
	// @Summary List open security alerts
	// @Router /api/v1/admin/security/alerts [get]
	security.GET("/alerts", ac.OpenAlerts)
	// @Summary Resolve security alert
	// @Param alertId path string true "Alert ID"
	// @Success 200 {object} services.Result
	// @Router /api/v1/admin/security/alerts/{alertId}/resolve [post]
	security.POST("/alerts/:alertId/resolve", ac.ResolveAlert)

	// @Summary Get platform settings
	// @Router /api/v1/admin/settings [get]
	admin.GET("/settings", ac.GetSettings, middleware.RequirePermissions(models.PermManageSettings))
	// @Summary Update platform settings
	// @Param settings body validator.SettingsInput true "Settings"
	// @Success 200 {object} services.Result
	// @Router /api/v1/admin/settings [put]
	admin.PUT("/settings", ac.UpdateSettings)

	// @Summary Read the audit log
	// @Param limit query int false "Entries to return, at most 500"
	// @Router /api/v1/admin/audit-logs [get]
	admin.GET("/audit-logs", ac.AuditLog)
}
