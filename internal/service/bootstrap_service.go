package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const defaultSlideImageURL = "/api/slides/default-image"

type adminSeeder interface {
	ExistsByRole(ctx context.Context, role models.UserRole) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, user *models.User) error
}

type defaultSlideSeeder interface {
	EnsureDefault(ctx context.Context, slide *models.Slide) (bool, error)
}

// AdminAccount holds the credentials of the bootstrap administrator.
type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// BootstrapService seeds the records the API cannot run without.
type BootstrapService struct {
	users  adminSeeder
	slides defaultSlideSeeder
	logger *zap.Logger
}

// NewBootstrapService constructs the bootstrap service.
func NewBootstrapService(users adminSeeder, slides defaultSlideSeeder, logger *zap.Logger) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BootstrapService{users: users, slides: slides, logger: logger}
}

// Run seeds the administrator and the default slide.
func (s *BootstrapService) Run(ctx context.Context, admin AdminAccount) error {
	if err := s.EnsureAdmin(ctx, admin); err != nil {
		return err
	}
	return s.EnsureDefaultSlide(ctx)
}

// EnsureAdmin creates the administrator account when no admin exists yet.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, admin AdminAccount) error {
	exists, err := s.users.ExistsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}
	if admin.Username == "" || admin.Password == "" {
		s.logger.Warn("no admin account exists and bootstrap credentials are empty")
		return nil
	}

	hash, err := hashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user := &models.User{
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		FirstName:    "Admin",
		LastName:     "User",
	}
	if err := s.users.Create(ctx, nil, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", zap.String("username", admin.Username))
	return nil
}

// EnsureDefaultSlide inserts the placeholder slide when none is marked default.
func (s *BootstrapService) EnsureDefaultSlide(ctx context.Context) error {
	title := "Welcome to Our School"
	description := "Quality Education for All"
	imagePath := models.DefaultSlidePath
	created, err := s.slides.EnsureDefault(ctx, &models.Slide{
		Title:       &title,
		Description: &description,
		ImageURL:    defaultSlideImageURL,
		ImagePath:   &imagePath,
	})
	if err != nil {
		return fmt.Errorf("seed default slide: %w", err)
	}
	if created {
		s.logger.Info("default slide created")
	}
	return nil
}
