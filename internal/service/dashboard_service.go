package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const adminDashboardKey = "dash:admin"

type dashboardRepository interface {
	AdminCounts(ctx context.Context) (*models.AdminDashboard, error)
	TeacherCounts(ctx context.Context, teacherID int64) (*models.TeacherDashboard, error)
}

// DashboardService composes dashboard payloads and caches them when caching is enabled.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	logger *zap.Logger
	ttl    time.Duration
}

// NewDashboardService constructs a DashboardService. A non-positive ttl uses the cache default.
func NewDashboardService(repo dashboardRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, ttl: ttl}
}

// Admin returns registry counts and reports whether they came from the cache.
func (s *DashboardService) Admin(ctx context.Context) (*models.AdminDashboard, bool, error) {
	var cached models.AdminDashboard
	if s.cache.Get(ctx, adminDashboardKey, &cached) {
		return &cached, true, nil
	}

	summary, err := s.repo.AdminCounts(ctx)
	if err != nil {
		return nil, false, internalError(err, "load dashboard")
	}
	s.cache.Set(ctx, adminDashboardKey, summary, s.ttl)
	return summary, false, nil
}

// Teacher returns the workload counts of one teacher.
func (s *DashboardService) Teacher(ctx context.Context, teacherID int64) (*models.TeacherDashboard, bool, error) {
	key := fmt.Sprintf("dash:teacher:%d", teacherID)
	var cached models.TeacherDashboard
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	summary, err := s.repo.TeacherCounts(ctx, teacherID)
	if err != nil {
		return nil, false, internalError(err, "load dashboard")
	}
	s.cache.Set(ctx, key, summary, s.ttl)
	return summary, false, nil
}
