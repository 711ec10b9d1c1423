package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	Create(ctx context.Context, req models.CreateEnrollmentRequest) (int64, error)
	UpdateStatus(ctx context.Context, id int64, req models.UpdateEnrollmentRequest) error
	Delete(ctx context.Context, id int64) error
}

// EnrollmentHandler manages enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "Filter by student"
// @Param courseId query int false "Filter by course"
// @Param status query string false "active or inactive"
// @Success 200 {object} response.Envelope
// @Router /admin/enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var (
		filter models.EnrollmentFilter
		ok     bool
	)
	if filter.StudentID, ok = queryID(c, "studentId"); !ok {
		return
	}
	if filter.CourseID, ok = queryID(c, "courseId"); !ok {
		return
	}
	filter.Status = models.EnrollmentStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))

	enrollments, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

// Create godoc
// @Summary Enroll student
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req models.CreateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.enrollments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, id)
	response.Created(c, "Student enrolled successfully", id)
}

// Update godoc
// @Summary Change enrollment status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param payload body models.UpdateEnrollmentRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /admin/enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.enrollments.UpdateStatus(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Enrollment updated successfully")
}

// Delete godoc
// @Summary Remove enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /admin/enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.enrollments.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Enrollment deleted successfully")
}
