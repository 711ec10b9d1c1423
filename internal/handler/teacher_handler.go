package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type teacherService interface {
	List(ctx context.Context) ([]models.TeacherDetail, error)
	Get(ctx context.Context, id int64) (*models.TeacherDetail, error)
	Create(ctx context.Context, req models.CreateTeacherRequest) (int64, error)
	Update(ctx context.Context, id int64, req models.UpdateTeacherRequest) error
	Delete(ctx context.Context, id int64) error
}

// TeacherHandler exposes admin teacher endpoints.
type TeacherHandler struct {
	teachers teacherService
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(teachers teacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teachers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	teacher, err := h.teachers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// Create godoc
// @Summary Create teacher
// @Description Creates the login account and the teacher record together
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req models.CreateTeacherRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, id)
	response.Created(c, "Teacher created successfully", id)
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param payload body models.UpdateTeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /admin/teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateTeacherRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.teachers.Update(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Teacher updated successfully")
}

// Delete godoc
// @Summary Delete teacher
// @Description Unassigns the teacher's courses, then removes the teacher and the owning user account
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.teachers.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Teacher deleted successfully")
}
