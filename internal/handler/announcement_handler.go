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

type announcementService interface {
	List(ctx context.Context, audience models.Audience) ([]models.Announcement, error)
	ListForRole(ctx context.Context, role models.UserRole) ([]models.Announcement, error)
	Get(ctx context.Context, id int64) (*models.Announcement, error)
	Create(ctx context.Context, authorID int64, req models.AnnouncementRequest) (int64, error)
	Update(ctx context.Context, id int64, req models.AnnouncementRequest) error
	Delete(ctx context.Context, id int64) error
}

// AnnouncementHandler serves the announcement board.
type AnnouncementHandler struct {
	announcements announcementService
}

// NewAnnouncementHandler constructs AnnouncementHandler.
func NewAnnouncementHandler(announcements announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// List godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param audience query string false "all, user or teacher"
// @Success 200 {object} response.Envelope
// @Router /admin/announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	audience := models.Audience(strings.ToLower(strings.TrimSpace(c.Query("audience"))))
	items, err := h.announcements.List(c.Request.Context(), audience)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Mine godoc
// @Summary Announcements visible to the caller
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /user/announcements [get]
func (h *AnnouncementHandler) Mine(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.announcements.ListForRole(c.Request.Context(), claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Get godoc
// @Summary Get announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Router /admin/announcements/{id} [get]
func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.announcements.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Create godoc
// @Summary Publish announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /admin/announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.AnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.announcements.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, id)
	response.Created(c, "Announcement created successfully", id)
}

// Update godoc
// @Summary Update announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Param payload body models.AnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Router /admin/announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.AnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.announcements.Update(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Announcement updated successfully")
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Router /admin/announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Announcement deleted successfully")
}
