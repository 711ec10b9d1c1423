package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type gradeService interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
	Get(ctx context.Context, id int64) (*models.GradeDetail, error)
	Create(ctx context.Context, req models.GradeRequest) (*models.Grade, error)
	Update(ctx context.Context, id int64, req models.UpdateGradeRequest) error
	Delete(ctx context.Context, id int64) error
}

type gradeExporter interface {
	Grades(ctx context.Context, rawFormat string, filter models.GradeFilter) (*service.ExportFile, error)
}

// GradeHandler exposes grade bookkeeping for admins.
type GradeHandler struct {
	grades   gradeService
	exporter gradeExporter
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades gradeService, exporter gradeExporter) *GradeHandler {
	return &GradeHandler{grades: grades, exporter: exporter}
}

func gradeFilter(c *gin.Context) (models.GradeFilter, bool) {
	var (
		filter models.GradeFilter
		ok     bool
	)
	if filter.EnrollmentID, ok = queryID(c, "enrollmentId"); !ok {
		return filter, false
	}
	if filter.CourseID, ok = queryID(c, "courseId"); !ok {
		return filter, false
	}
	if filter.StudentID, ok = queryID(c, "studentId"); !ok {
		return filter, false
	}
	return filter, true
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param enrollmentId query int false "Filter by enrollment"
// @Param courseId query int false "Filter by course"
// @Param studentId query int false "Filter by student"
// @Success 200 {object} response.Envelope
// @Router /admin/grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter, ok := gradeFilter(c)
	if !ok {
		return
	}
	grades, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades)
}

// Get godoc
// @Summary Get grade
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /admin/grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	grade, err := h.grades.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade)
}

// Create godoc
// @Summary Record grade
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.GradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /admin/grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req models.GradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.grades.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, grade.ID)
	response.Created(c, "Grade created successfully", grade.ID)
}

// Update godoc
// @Summary Update grade
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grade ID"
// @Param payload body models.UpdateGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /admin/grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.grades.Update(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Grade updated successfully")
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /admin/grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.grades.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Grade deleted successfully")
}

// Export godoc
// @Summary Export grades
// @Tags Grades
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param courseId query int false "Filter by course"
// @Param studentId query int false "Filter by student"
// @Success 200 {file} file
// @Router /admin/grades/export [get]
func (h *GradeHandler) Export(c *gin.Context) {
	filter, ok := gradeFilter(c)
	if !ok {
		return
	}
	file, err := h.exporter.Grades(c.Request.Context(), c.DefaultQuery("format", "csv"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}
