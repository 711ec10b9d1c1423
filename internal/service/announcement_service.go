package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, audiences []models.Audience) ([]models.Announcement, error)
	FindByID(ctx context.Context, id int64) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id int64) error
}

// AnnouncementService publishes announcements to audiences.
type AnnouncementService struct {
	announcements announcementRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(announcements announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{announcements: announcements, validator: validate, logger: logger}
}

// List returns announcements, newest first. An empty audience lists everything.
func (s *AnnouncementService) List(ctx context.Context, audience models.Audience) ([]models.Announcement, error) {
	var audiences []models.Audience
	if audience != "" {
		if !audience.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "audience must be one of: all user teacher")
		}
		audiences = []models.Audience{audience}
	}
	items, err := s.announcements.List(ctx, audiences)
	if err != nil {
		return nil, internalError(err, "list announcements")
	}
	return items, nil
}

// ListForRole returns the announcements a reader with role may see.
func (s *AnnouncementService) ListForRole(ctx context.Context, role models.UserRole) ([]models.Announcement, error) {
	var audiences []models.Audience
	if role != models.RoleAdmin {
		audiences = []models.Audience{models.AudienceAll, models.Audience(role)}
	}
	items, err := s.announcements.List(ctx, audiences)
	if err != nil {
		return nil, internalError(err, "list announcements")
	}
	return items, nil
}

// Get returns an announcement by id.
func (s *AnnouncementService) Get(ctx context.Context, id int64) (*models.Announcement, error) {
	item, err := s.announcements.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Announcement not found", "load announcement")
	}
	return item, nil
}

// Create publishes an announcement authored by authorID.
func (s *AnnouncementService) Create(ctx context.Context, authorID int64, req models.AnnouncementRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, invalidPayload(err)
	}
	item := &models.Announcement{
		Title:          req.Title,
		Content:        req.Content,
		AuthorID:       authorID,
		TargetAudience: audienceOrAll(req.TargetAudience),
	}
	if err := s.announcements.Create(ctx, item); err != nil {
		return 0, storageError(err, "Announcement not found", "create announcement")
	}
	return item.ID, nil
}

// Update replaces an announcement's content and audience.
func (s *AnnouncementService) Update(ctx context.Context, id int64, req models.AnnouncementRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err)
	}
	item := &models.Announcement{
		ID:             id,
		Title:          req.Title,
		Content:        req.Content,
		TargetAudience: audienceOrAll(req.TargetAudience),
	}
	if err := s.announcements.Update(ctx, item); err != nil {
		return storageError(err, "Announcement not found", "update announcement")
	}
	return nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	if err := s.announcements.Delete(ctx, id); err != nil {
		return storageError(err, "Announcement not found", "delete announcement")
	}
	return nil
}

func audienceOrAll(a models.Audience) models.Audience {
	if a == "" {
		return models.AudienceAll
	}
	return a
}
