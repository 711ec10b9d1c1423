package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/storage"
)

const (
	slideFilePrefix     = "slide"
	slideStoredPathBase = "uploads/slides"
	sniffLength         = 512

	uploadAccepted    = "accepted"
	uploadRejected    = "rejected"
	uploadTooLarge    = "too_large"
	uploadInsertError = "insert_failed"
)

// DefaultSlideSVG is the placeholder artwork of the default slide.
const DefaultSlideSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="1200" height="500" viewBox="0 0 1200 500">
<rect width="1200" height="500" fill="#667eea"/>
<text x="600" y="250" font-family="Arial, sans-serif" font-size="48" font-weight="bold" fill="#ffffff" text-anchor="middle" dominant-baseline="middle">Welcome to Our School</text>
</svg>`

type slideRepository interface {
	ListActive(ctx context.Context) ([]models.Slide, error)
	ListAll(ctx context.Context) ([]models.Slide, error)
	FindByID(ctx context.Context, id int64) (*models.Slide, error)
	FindDefault(ctx context.Context) (*models.Slide, error)
	Create(ctx context.Context, exec sqlx.ExtContext, slide *models.Slide) error
	Update(ctx context.Context, exec sqlx.ExtContext, slide *models.Slide) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type slideStorage interface {
	SaveStream(filename string, r io.Reader, limit int64) (int64, error)
	Delete(filename string) error
}

// SlideImage is an uploaded image part.
type SlideImage struct {
	Filename string
	Content  io.Reader
}

// SlideConfig controls upload limits and the public URL of stored images.
type SlideConfig struct {
	MaxBytes  int64
	PublicURL string
}

// SlideService manages the homepage carousel and its image files.
type SlideService struct {
	slides    slideRepository
	files     slideStorage
	tx        txRunner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    SlideConfig
}

// NewSlideService constructs the slide service.
func NewSlideService(slides slideRepository, files slideStorage, tx txRunner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config SlideConfig) *SlideService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = 5 * 1024 * 1024
	}
	if config.PublicURL == "" {
		config.PublicURL = "/api/slides/image"
	}
	return &SlideService{
		slides:    slides,
		files:     files,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// ListPublic returns the active slides. The default slide is always present and shown as active.
func (s *SlideService) ListPublic(ctx context.Context) ([]models.Slide, error) {
	slides, err := s.slides.ListActive(ctx)
	if err != nil {
		return nil, internalError(err, "list slides")
	}
	for _, slide := range slides {
		if slide.IsDefault {
			return slides, nil
		}
	}

	def, err := s.slides.FindDefault(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return slides, nil
	case err != nil:
		return nil, internalError(err, "load default slide")
	}
	def.IsActive = true
	return append([]models.Slide{*def}, slides...), nil
}

// ListAll returns every slide for administration.
func (s *SlideService) ListAll(ctx context.Context) ([]models.Slide, error) {
	slides, err := s.slides.ListAll(ctx)
	if err != nil {
		return nil, internalError(err, "list slides")
	}
	return slides, nil
}

// Create stores the image and inserts a non-default slide. The file is removed again if the insert fails.
func (s *SlideService) Create(ctx context.Context, req models.SlideRequest, image *SlideImage) (*models.Slide, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	if image == nil || image.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrUpload, "Image file is required")
	}

	name, err := s.store(image)
	if err != nil {
		return nil, err
	}

	slide := &models.Slide{IsActive: true}
	applySlideMeta(slide, req)
	s.attach(slide, name)

	if err := s.slides.Create(ctx, nil, slide); err != nil {
		s.metrics.RecordSlideUpload(uploadInsertError)
		s.removeFile(name)
		return nil, storageError(err, "Slide not found", "create slide")
	}
	return slide, nil
}

// Update changes a slide's metadata and optionally replaces its image. The previous
// file is removed only once the new row is committed.
func (s *SlideService) Update(ctx context.Context, id int64, req models.SlideRequest, image *SlideImage) (*models.Slide, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	current, err := s.slides.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Slide not found", "load slide")
	}

	updated := *current
	applySlideMeta(&updated, req)

	var newName string
	if image != nil && image.Content != nil {
		if newName, err = s.store(image); err != nil {
			return nil, err
		}
		s.attach(&updated, newName)
	}

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		return s.slides.Update(ctx, tx, &updated)
	})
	if err != nil {
		if newName != "" {
			s.removeFile(newName)
		}
		return nil, storageError(err, "Slide not found", "update slide")
	}

	if newName != "" && current.HasStoredImage() {
		s.removeFile(path.Base(*current.ImagePath))
	}
	return &updated, nil
}

// Delete removes a slide and its image. The default slide cannot be deleted.
func (s *SlideService) Delete(ctx context.Context, id int64) error {
	slide, err := s.slides.FindByID(ctx, id)
	if err != nil {
		return storageError(err, "Slide not found", "load slide")
	}
	if slide.IsDefault {
		return appErrors.Clone(appErrors.ErrValidation, "Cannot delete default slide")
	}

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		return s.slides.Delete(ctx, tx, id)
	})
	if err != nil {
		return storageError(err, "Slide not found", "delete slide")
	}

	if slide.HasStoredImage() {
		s.removeFile(path.Base(*slide.ImagePath))
	}
	return nil
}

// DefaultImage returns the placeholder artwork served for the default slide.
func (s *SlideService) DefaultImage() []byte {
	return []byte(DefaultSlideSVG)
}

func (s *SlideService) store(image *SlideImage) (string, error) {
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(image.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", appErrors.Wrap(err, appErrors.ErrUpload.Code, appErrors.ErrUpload.Status, "failed to read upload")
	}
	head = head[:n]

	ext, err := storage.DetectImage(image.Filename, head)
	if err != nil {
		s.metrics.RecordSlideUpload(uploadRejected)
		return "", appErrors.Wrap(err, appErrors.ErrUpload.Code, appErrors.ErrUpload.Status, "Only image files are allowed (jpeg, jpg, png, gif, webp)")
	}

	name := storage.UniqueName(slideFilePrefix, ext)
	if _, err := s.files.SaveStream(name, io.MultiReader(bytes.NewReader(head), image.Content), s.config.MaxBytes); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			s.metrics.RecordSlideUpload(uploadTooLarge)
			msg := fmt.Sprintf("File size too large. Maximum size is %dMB.", s.config.MaxBytes/(1024*1024))
			return "", appErrors.Wrap(err, appErrors.ErrUpload.Code, appErrors.ErrUpload.Status, msg)
		}
		return "", internalError(err, "store image")
	}

	s.metrics.RecordSlideUpload(uploadAccepted)
	return name, nil
}

func (s *SlideService) attach(slide *models.Slide, name string) {
	stored := slideStoredPathBase + "/" + name
	slide.ImagePath = &stored
	slide.ImageURL = s.config.PublicURL + "/" + name
}

func (s *SlideService) removeFile(name string) {
	if err := s.files.Delete(name); err != nil {
		s.logger.Warn("failed to remove slide image", zap.String("file", name), zap.Error(err))
	}
}

// applySlideMeta copies the supplied form fields. Omitted fields keep their current values.
func applySlideMeta(slide *models.Slide, req models.SlideRequest) {
	if req.Title != nil {
		slide.Title = req.Title
	}
	if req.Description != nil {
		slide.Description = req.Description
	}
	if req.OrderIndex != nil {
		slide.OrderIndex = *req.OrderIndex
	}
	if req.IsActive != nil {
		slide.IsActive = *req.IsActive
	}
}
