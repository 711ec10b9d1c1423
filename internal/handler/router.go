package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth          *AuthHandler
	Dashboard     *DashboardHandler
	Students      *StudentHandler
	Teachers      *TeacherHandler
	Courses       *CourseHandler
	Enrollments   *EnrollmentHandler
	Grades        *GradeHandler
	Announcements *AnnouncementHandler
	Slides        *SlideHandler
	Portal        *PortalHandler
	Metrics       *MetricsHandler
}

// RouteConfig carries the mount points of the API.
type RouteConfig struct {
	APIPrefix     string
	SlideImageDir string
}

// RegisterRoutes mounts the probes at the root and the API below cfg.APIPrefix.
func RegisterRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenValidator, audits middleware.AuditRecorder, logger *zap.Logger, cfg RouteConfig) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(cfg.APIPrefix)
	authenticated := middleware.JWT(tokens)
	audit := func(resource string) gin.HandlerFunc {
		return middleware.Audit(audits, logger, resource)
	}

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", authenticated, h.Auth.Me)
	auth.POST("/change-password", authenticated, h.Auth.ChangePassword)

	api.GET("/public/courses", h.Courses.Public)

	slides := api.Group("/slides")
	slides.GET("", h.Slides.List)
	slides.GET("/default-image", h.Slides.DefaultImage)
	if cfg.SlideImageDir != "" {
		slides.Static("/image", cfg.SlideImageDir)
	}
	slidesAdmin := slides.Group("", authenticated, middleware.RequireRoles(models.RoleAdmin), audit("slide"))
	slidesAdmin.GET("/admin", h.Slides.ListAll)
	slidesAdmin.POST("", h.Slides.Create)
	slidesAdmin.PUT("/:id", h.Slides.Update)
	slidesAdmin.DELETE("/:id", h.Slides.Delete)

	admin := api.Group("/admin", authenticated, middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/dashboard", h.Dashboard.Admin)

	students := admin.Group("/students", audit("student"))
	students.GET("", h.Students.List)
	students.GET("/:id", h.Students.Get)
	students.POST("", h.Students.Create)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)

	teachers := admin.Group("/teachers", audit("teacher"))
	teachers.GET("", h.Teachers.List)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.POST("", h.Teachers.Create)
	teachers.PUT("/:id", h.Teachers.Update)
	teachers.DELETE("/:id", h.Teachers.Delete)

	courses := admin.Group("/courses", audit("course"))
	courses.GET("", h.Courses.List)
	courses.GET("/:id", h.Courses.Get)
	courses.POST("", h.Courses.Create)
	courses.PUT("/:id", h.Courses.Update)
	courses.DELETE("/:id", h.Courses.Delete)

	enrollments := admin.Group("/enrollments", audit("enrollment"))
	enrollments.GET("", h.Enrollments.List)
	enrollments.POST("", h.Enrollments.Create)
	enrollments.PUT("/:id", h.Enrollments.Update)
	enrollments.DELETE("/:id", h.Enrollments.Delete)

	grades := admin.Group("/grades", audit("grade"))
	grades.GET("", h.Grades.List)
	grades.GET("/export", h.Grades.Export)
	grades.GET("/:id", h.Grades.Get)
	grades.POST("", h.Grades.Create)
	grades.PUT("/:id", h.Grades.Update)
	grades.DELETE("/:id", h.Grades.Delete)

	announcements := admin.Group("/announcements", audit("announcement"))
	announcements.GET("", h.Announcements.List)
	announcements.GET("/:id", h.Announcements.Get)
	announcements.POST("", h.Announcements.Create)
	announcements.PUT("/:id", h.Announcements.Update)
	announcements.DELETE("/:id", h.Announcements.Delete)

	user := api.Group("/user", authenticated, middleware.RequireRoles(models.RoleUser, models.RoleTeacher))
	user.GET("/profile", h.Portal.Profile)
	user.GET("/courses", h.Portal.MyCourses)
	user.GET("/courses/:courseId", h.Portal.MyCourseDetail)
	user.GET("/grades", h.Portal.MyGrades)
	user.GET("/grades/transcript.pdf", h.Portal.Transcript)
	user.GET("/announcements", h.Announcements.Mine)

	teacher := api.Group("/teacher", authenticated, middleware.RequireRoles(models.RoleTeacher))
	teacher.GET("/dashboard", h.Portal.TeacherDashboard)
	teacher.GET("/profile", h.Portal.TeacherProfile)
	teacher.PUT("/profile", h.Portal.UpdateTeacherProfile)
	teacher.GET("/courses", h.Portal.TeacherCourses)
	teacher.GET("/courses/:id", h.Portal.TeacherCourseDetail)
	teacher.GET("/students", h.Portal.TeacherStudents)
	teacher.GET("/students/:id", h.Portal.TeacherStudent)
	teacher.POST("/grades", h.Portal.RecordGrade)
}
