package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// AuditRepository stores the audit trail of admin mutations.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create persists an audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	const query = `INSERT INTO audit_logs (user_id, action, resource, resource_id, new_values, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	var newValues interface{}
	if len(entry.NewValues) > 0 {
		newValues = string(entry.NewValues)
	}
	row := r.db.QueryRowxContext(ctx, query,
		entry.UserID, entry.Action, entry.Resource, entry.ResourceID, newValues, entry.IPAddress, entry.UserAgent)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
