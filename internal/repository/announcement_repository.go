package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) selectQuery() squirrel.SelectBuilder {
	return psql.Select(
		"a.id", "a.title", "a.content", "a.author_id", "a.target_audience", "a.created_at",
		"TRIM(u.first_name || ' ' || u.last_name) AS author_name",
	).
		From("announcements a").
		Join("users u ON u.id = a.author_id")
}

// List returns announcements newest first. An empty audiences slice returns everything.
func (r *AnnouncementRepository) List(ctx context.Context, audiences []models.Audience) ([]models.Announcement, error) {
	builder := r.selectQuery().OrderBy("a.created_at DESC", "a.id DESC")
	if len(audiences) > 0 {
		values := make([]string, 0, len(audiences))
		for _, a := range audiences {
			values = append(values, string(a))
		}
		builder = builder.Where(squirrel.Eq{"a.target_audience": values})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build announcement list query: %w", err)
	}

	announcements := make([]models.Announcement, 0)
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// FindByID returns an announcement with its author name.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id int64) (*models.Announcement, error) {
	query, args, err := r.selectQuery().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build announcement query: %w", err)
	}

	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find announcement: %w", err)
	}
	return &announcement, nil
}

// Create inserts an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	const query = `INSERT INTO announcements (title, content, author_id, target_audience) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, announcement.Title, announcement.Content, announcement.AuthorID, announcement.TargetAudience)
	if err := row.Scan(&announcement.ID, &announcement.CreatedAt); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update replaces the title, content and audience.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	const query = `UPDATE announcements SET title = $2, content = $3, target_audience = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, announcement.ID, announcement.Title, announcement.Content, announcement.TargetAudience)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return affectedOrNotFound(res, "update announcement")
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return affectedOrNotFound(res, "delete announcement")
}
