package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const (
	slideColumns = `id, title, description, image_url, image_path, order_index, is_active, is_default, created_at`
	slideOrder   = ` ORDER BY is_default DESC, order_index ASC, id ASC`
)

// SlideRepository persists homepage carousel slides.
type SlideRepository struct {
	db *sqlx.DB
}

// NewSlideRepository constructs the repository.
func NewSlideRepository(db *sqlx.DB) *SlideRepository {
	return &SlideRepository{db: db}
}

// ListActive returns active slides in display order.
func (r *SlideRepository) ListActive(ctx context.Context) ([]models.Slide, error) {
	return r.list(ctx, `SELECT `+slideColumns+` FROM slides WHERE is_active`+slideOrder)
}

// ListAll returns every slide in display order.
func (r *SlideRepository) ListAll(ctx context.Context) ([]models.Slide, error) {
	return r.list(ctx, `SELECT `+slideColumns+` FROM slides`+slideOrder)
}

func (r *SlideRepository) list(ctx context.Context, query string) ([]models.Slide, error) {
	slides := make([]models.Slide, 0)
	if err := r.db.SelectContext(ctx, &slides, query); err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	return slides, nil
}

// FindByID returns one slide.
func (r *SlideRepository) FindByID(ctx context.Context, id int64) (*models.Slide, error) {
	return r.get(ctx, `SELECT `+slideColumns+` FROM slides WHERE id = $1`, id)
}

// FindDefault returns the default slide.
func (r *SlideRepository) FindDefault(ctx context.Context) (*models.Slide, error) {
	return r.get(ctx, `SELECT `+slideColumns+` FROM slides WHERE is_default ORDER BY id LIMIT 1`)
}

func (r *SlideRepository) get(ctx context.Context, query string, args ...interface{}) (*models.Slide, error) {
	var slide models.Slide
	if err := r.db.GetContext(ctx, &slide, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find slide: %w", err)
	}
	return &slide, nil
}

// Create inserts a slide and fills its id and creation time.
func (r *SlideRepository) Create(ctx context.Context, exec sqlx.ExtContext, slide *models.Slide) error {
	const query = `INSERT INTO slides (title, description, image_url, image_path, order_index, is_active, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	row := executor(r.db, exec).QueryRowxContext(ctx, query,
		slide.Title, slide.Description, slide.ImageURL, slide.ImagePath, slide.OrderIndex, slide.IsActive, slide.IsDefault)
	if err := row.Scan(&slide.ID, &slide.CreatedAt); err != nil {
		return fmt.Errorf("create slide: %w", err)
	}
	return nil
}

// Update replaces the slide's metadata and image reference. is_default is never changed here.
func (r *SlideRepository) Update(ctx context.Context, exec sqlx.ExtContext, slide *models.Slide) error {
	const query = `UPDATE slides SET title = $2, description = $3, image_url = $4, image_path = $5, order_index = $6, is_active = $7
WHERE id = $1`
	res, err := executor(r.db, exec).ExecContext(ctx, query,
		slide.ID, slide.Title, slide.Description, slide.ImageURL, slide.ImagePath, slide.OrderIndex, slide.IsActive)
	if err != nil {
		return fmt.Errorf("update slide: %w", err)
	}
	return affectedOrNotFound(res, "update slide")
}

// Delete removes a non-default slide. The default slide never matches.
func (r *SlideRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	res, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM slides WHERE id = $1 AND NOT is_default`, id)
	if err != nil {
		return fmt.Errorf("delete slide: %w", err)
	}
	return affectedOrNotFound(res, "delete slide")
}

// EnsureDefault inserts slide as the default when no default exists yet. It reports whether a row was inserted.
func (r *SlideRepository) EnsureDefault(ctx context.Context, slide *models.Slide) (bool, error) {
	const query = `INSERT INTO slides (title, description, image_url, image_path, order_index, is_active, is_default)
SELECT $1::text, $2::text, $3::text, $4::text, $5::integer, TRUE, TRUE
WHERE NOT EXISTS (SELECT 1 FROM slides WHERE is_default)
ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, slide.Title, slide.Description, slide.ImageURL, slide.ImagePath, slide.OrderIndex)
	if err != nil {
		return false, fmt.Errorf("ensure default slide: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure default slide rows affected: %w", err)
	}
	return n > 0, nil
}
