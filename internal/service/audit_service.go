package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
)

const auditWriteTimeout = 5 * time.Second

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditService writes audit entries in the background so a slow audit table never delays the
// mutation it records.
type AuditService struct {
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

// NewAuditService constructs the service. Start must be called before entries are accepted.
func NewAuditService(repo auditRepository, logger *zap.Logger, cfg jobs.QueueConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	write := func(ctx context.Context, entry *models.AuditLog) error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
		defer cancel()
		return repo.Create(ctx, entry)
	}
	return &AuditService{queue: jobs.NewQueue[*models.AuditLog]("audit", write, cfg), logger: logger}
}

// Start launches the writers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes pending entries.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Create queues entry for writing. The request context is not used by the writer.
func (s *AuditService) Create(_ context.Context, entry *models.AuditLog) error {
	if err := s.queue.Enqueue(entry); err != nil {
		if errors.Is(err, jobs.ErrFull) {
			s.logger.Warn("audit queue full, entry dropped", zap.String("resource", entry.Resource), zap.String("action", entry.Action))
		}
		return err
	}
	return nil
}
