package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
)

type memAudit struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	failN   int
}

func (m *memAudit) Create(_ context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failN > 0 {
		m.failN--
		return errors.New("db down")
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestAuditServiceWritesInBackground(t *testing.T) {
	repo := &memAudit{failN: 1}
	svc := NewAuditService(repo, nil, jobs.QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	svc.Start(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Create(ctx, &models.AuditLog{Action: models.AuditActionCreate, Resource: "course"}))
	cancel()
	svc.Stop()

	require.Len(t, repo.entries, 1)
	assert.Equal(t, "course", repo.entries[0].Resource)
}

func TestAuditServiceRejectsAfterStop(t *testing.T) {
	svc := NewAuditService(&memAudit{}, nil, jobs.QueueConfig{})
	svc.Start(context.Background())
	svc.Stop()

	assert.ErrorIs(t, svc.Create(context.Background(), &models.AuditLog{}), jobs.ErrStopped)
}
