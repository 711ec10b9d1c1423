package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const studentDetailSelect = `SELECT s.id, s.user_id, s.student_id, s.grade, s.section, s.parent_name, s.parent_email, s.parent_phone,
	u.username, u.email, u.first_name, u.last_name
FROM students s
JOIN users u ON u.id = s.user_id`

// StudentRepository handles persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students with their account data.
func (r *StudentRepository) List(ctx context.Context) ([]models.StudentDetail, error) {
	students := make([]models.StudentDetail, 0)
	if err := r.db.SelectContext(ctx, &students, studentDetailSelect+` ORDER BY s.id DESC`); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID returns a student by surrogate id.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, studentDetailSelect+` WHERE s.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByUserID returns the student record owned by userID.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	const query = `SELECT id, user_id, student_id, grade, section, parent_name, parent_email, parent_phone FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by user: %w", err)
	}
	return &student, nil
}

// ExistsByStudentID reports whether the business key is taken.
func (r *StudentRepository) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM students WHERE student_id = $1)`, studentID); err != nil {
		return false, fmt.Errorf("check student id: %w", err)
	}
	return exists, nil
}

// Create inserts a student row.
func (r *StudentRepository) Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	const query = `INSERT INTO students (user_id, student_id, grade, section, parent_name, parent_email, parent_phone)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	row := executor(r.db, exec).QueryRowxContext(ctx, query,
		student.UserID, student.StudentID, student.Grade, student.Section, student.ParentName, student.ParentEmail, student.ParentPhone)
	if err := row.Scan(&student.ID); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update replaces the editable student fields.
func (r *StudentRepository) Update(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	const query = `UPDATE students SET grade = $2, section = $3, parent_name = $4, parent_email = $5, parent_phone = $6 WHERE id = $1`
	res, err := executor(r.db, exec).ExecContext(ctx, query,
		student.ID, student.Grade, student.Section, student.ParentName, student.ParentEmail, student.ParentPhone)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return affectedOrNotFound(res, "update student")
}

// Delete removes a student row.
func (r *StudentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	res, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return affectedOrNotFound(res, "delete student")
}
