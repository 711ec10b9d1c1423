package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

const slideImageField = "image"

type slideService interface {
	ListPublic(ctx context.Context) ([]models.Slide, error)
	ListAll(ctx context.Context) ([]models.Slide, error)
	Create(ctx context.Context, req models.SlideRequest, image *service.SlideImage) (*models.Slide, error)
	Update(ctx context.Context, id int64, req models.SlideRequest, image *service.SlideImage) (*models.Slide, error)
	Delete(ctx context.Context, id int64) error
	DefaultImage() []byte
}

// SlideHandler serves the homepage slide gallery.
type SlideHandler struct {
	slides slideService
}

// NewSlideHandler constructs SlideHandler.
func NewSlideHandler(slides slideService) *SlideHandler {
	return &SlideHandler{slides: slides}
}

// List godoc
// @Summary Active slides
// @Description Active slides, always including the default slide
// @Tags Slides
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slides [get]
func (h *SlideHandler) List(c *gin.Context) {
	slides, err := h.slides.ListPublic(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slides)
}

// ListAll godoc
// @Summary All slides
// @Tags Slides
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /slides/admin [get]
func (h *SlideHandler) ListAll(c *gin.Context) {
	slides, err := h.slides.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slides)
}

// Create godoc
// @Summary Upload slide
// @Tags Slides
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "jpeg, png, gif or webp image"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param orderIndex formData int false "Position"
// @Param isActive formData bool false "Visible on the homepage"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /slides [post]
func (h *SlideHandler) Create(c *gin.Context) {
	req, image, cleanup, ok := bindSlideForm(c)
	if !ok {
		return
	}
	defer cleanup()

	slide, err := h.slides.Create(c.Request.Context(), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResource(c, slide.ID)
	response.JSON(c, http.StatusCreated, slide)
}

// Update godoc
// @Summary Update slide
// @Description Omitted fields keep their values; a new image replaces the stored one
// @Tags Slides
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Param image formData file false "Replacement image"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param orderIndex formData int false "Position"
// @Param isActive formData bool false "Visible on the homepage"
// @Success 200 {object} response.Envelope
// @Router /slides/{id} [put]
func (h *SlideHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, image, cleanup, ok := bindSlideForm(c)
	if !ok {
		return
	}
	defer cleanup()

	slide, err := h.slides.Update(c.Request.Context(), id, req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slide)
}

// Delete godoc
// @Summary Delete slide
// @Tags Slides
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /slides/{id} [delete]
func (h *SlideHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.slides.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Slide deleted successfully")
}

// DefaultImage godoc
// @Summary Default slide placeholder
// @Tags Slides
// @Produce image/svg+xml
// @Success 200 {file} file
// @Router /slides/default-image [get]
func (h *SlideHandler) DefaultImage(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", h.slides.DefaultImage())
}

// bindSlideForm reads slide metadata and the optional image part. cleanup closes the part.
func bindSlideForm(c *gin.Context) (models.SlideRequest, *service.SlideImage, func(), bool) {
	var req models.SlideRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return req, nil, nil, false
	}

	header, err := c.FormFile(slideImageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return req, nil, func() {}, true
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUpload.Code, http.StatusBadRequest, "invalid multipart upload"))
		return req, nil, nil, false
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUpload.Code, http.StatusBadRequest, "invalid multipart upload"))
		return req, nil, nil, false
	}
	image := &service.SlideImage{Filename: header.Filename, Content: file}
	return req, image, func() { _ = file.Close() }, true
}
