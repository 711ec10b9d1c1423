package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type portalService interface {
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
	MyCourses(ctx context.Context, userID int64) ([]models.EnrolledCourse, error)
	MyGrades(ctx context.Context, userID int64) ([]models.GradeDetail, error)
	MyCourseDetail(ctx context.Context, userID, courseID int64) (*models.CourseEnrollmentView, error)
	Transcript(ctx context.Context, userID int64) (*service.ExportFile, error)

	TeacherDashboard(ctx context.Context, userID int64) (*models.TeacherDashboard, bool, error)
	TeacherProfile(ctx context.Context, userID int64) (*models.TeacherDetail, error)
	UpdateTeacherProfile(ctx context.Context, userID int64, req models.TeacherProfileRequest) error
	TeacherCourses(ctx context.Context, userID int64) ([]models.CourseDetail, error)
	TeacherCourseDetail(ctx context.Context, userID, courseID int64) (*models.TeacherCourseView, error)
	TeacherStudents(ctx context.Context, userID, courseID int64) ([]models.EnrolledStudent, error)
	TeacherStudent(ctx context.Context, userID, studentID int64) (*models.TeacherStudentView, error)
	RecordGrade(ctx context.Context, userID int64, req models.GradeRequest) (*models.Grade, error)
}

// PortalHandler serves the self-service routes. Every lookup is scoped to the caller's token.
type PortalHandler struct {
	portal portalService
}

// NewPortalHandler constructs PortalHandler.
func NewPortalHandler(portal portalService) *PortalHandler {
	return &PortalHandler{portal: portal}
}

// Profile godoc
// @Summary Caller profile
// @Description The user record with student or teacher details depending on role
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /user/profile [get]
func (h *PortalHandler) Profile(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.portal.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// MyCourses godoc
// @Summary Courses the caller is enrolled in
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /user/courses [get]
func (h *PortalHandler) MyCourses(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	courses, err := h.portal.MyCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// MyCourseDetail godoc
// @Summary One enrolled course with the caller's grades
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /user/courses/{courseId} [get]
func (h *PortalHandler) MyCourseDetail(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	view, err := h.portal.MyCourseDetail(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// MyGrades godoc
// @Summary The caller's grades
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /user/grades [get]
func (h *PortalHandler) MyGrades(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	grades, err := h.portal.MyGrades(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades)
}

// Transcript godoc
// @Summary Transcript PDF
// @Tags Portal
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} file
// @Router /user/grades/transcript.pdf [get]
func (h *PortalHandler) Transcript(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	file, err := h.portal.Transcript(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

// TeacherDashboard godoc
// @Summary Teacher workload summary
// @Tags Teacher Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/dashboard [get]
func (h *PortalHandler) TeacherDashboard(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.portal.TeacherDashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, summary, cacheHit, start)
}

// TeacherProfile godoc
// @Summary Teacher's own record
// @Tags Teacher Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/profile [get]
func (h *PortalHandler) TeacherProfile(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	teacher, err := h.portal.TeacherProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// UpdateTeacherProfile godoc
// @Summary Edit teacher's own record
// @Tags Teacher Portal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpdateTeacherRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /teacher/profile [put]
func (h *PortalHandler) UpdateTeacherProfile(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.TeacherProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.portal.UpdateTeacherProfile(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Profile updated successfully")
}

// TeacherCourses godoc
// @Summary Courses taught by the caller
// @Tags Teacher Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/courses [get]
func (h *PortalHandler) TeacherCourses(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	courses, err := h.portal.TeacherCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// TeacherCourseDetail godoc
// @Summary One taught course with its students
// @Tags Teacher Portal
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/courses/{id} [get]
func (h *PortalHandler) TeacherCourseDetail(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.portal.TeacherCourseDetail(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// TeacherStudents godoc
// @Summary Students in the caller's courses
// @Tags Teacher Portal
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "Restrict to one course"
// @Success 200 {object} response.Envelope
// @Router /teacher/students [get]
func (h *PortalHandler) TeacherStudents(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := queryID(c, "courseId")
	if !ok {
		return
	}
	students, err := h.portal.TeacherStudents(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// TeacherStudent godoc
// @Summary One student enrolled with the caller
// @Tags Teacher Portal
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/students/{id} [get]
func (h *PortalHandler) TeacherStudent(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.portal.TeacherStudent(c.Request.Context(), claims.UserID, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// RecordGrade godoc
// @Summary Grade a student in one of the caller's courses
// @Tags Teacher Portal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.GradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teacher/grades [post]
func (h *PortalHandler) RecordGrade(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.GradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.portal.RecordGrade(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Grade recorded successfully", grade.ID)
}
