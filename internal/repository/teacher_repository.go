package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const teacherDetailSelect = `SELECT t.id, t.user_id, t.employee_id, t.department, t.specialization,
	u.username, u.email, u.first_name, u.last_name
FROM teachers t
JOIN users u ON u.id = t.user_id`

// TeacherRepository handles persistence for teacher records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns all teachers with their account data.
func (r *TeacherRepository) List(ctx context.Context) ([]models.TeacherDetail, error) {
	teachers := make([]models.TeacherDetail, 0)
	if err := r.db.SelectContext(ctx, &teachers, teacherDetailSelect+` ORDER BY t.id DESC`); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID returns a teacher by surrogate id.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	var teacher models.TeacherDetail
	if err := r.db.GetContext(ctx, &teacher, teacherDetailSelect+` WHERE t.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}
	return &teacher, nil
}

// FindByUserID returns the teacher record owned by userID.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	const query = `SELECT id, user_id, employee_id, department, specialization FROM teachers WHERE user_id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by user: %w", err)
	}
	return &teacher, nil
}

// ExistsByEmployeeID reports whether the business key is taken.
func (r *TeacherRepository) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM teachers WHERE employee_id = $1)`, employeeID); err != nil {
		return false, fmt.Errorf("check employee id: %w", err)
	}
	return exists, nil
}

// Create inserts a teacher row.
func (r *TeacherRepository) Create(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error {
	const query = `INSERT INTO teachers (user_id, employee_id, department, specialization) VALUES ($1, $2, $3, $4) RETURNING id`
	row := executor(r.db, exec).QueryRowxContext(ctx, query, teacher.UserID, teacher.EmployeeID, teacher.Department, teacher.Specialization)
	if err := row.Scan(&teacher.ID); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update replaces the editable teacher fields.
func (r *TeacherRepository) Update(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error {
	const query = `UPDATE teachers SET department = $2, specialization = $3 WHERE id = $1`
	res, err := executor(r.db, exec).ExecContext(ctx, query, teacher.ID, teacher.Department, teacher.Specialization)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return affectedOrNotFound(res, "update teacher")
}

// Delete removes a teacher row.
func (r *TeacherRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	res, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return affectedOrNotFound(res, "delete teacher")
}
