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

const gradeColumns = `id, enrollment_id, assignment, score, max_score, grade, remarks, date_recorded`

// GradeRepository handles persistence for grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

func (r *GradeRepository) detailQuery() squirrel.SelectBuilder {
	return psql.Select(
		"g.id", "g.enrollment_id", "g.assignment", "g.score", "g.max_score", "g.grade", "g.remarks", "g.date_recorded",
		"e.student_id", "e.course_id",
		"s.student_id AS student_code",
		"TRIM(u.first_name || ' ' || u.last_name) AS student_name",
		"c.course_code", "c.course_name",
	).
		From("grades g").
		Join("enrollments e ON e.id = g.enrollment_id").
		Join("students s ON s.id = e.student_id").
		Join("users u ON u.id = s.user_id").
		Join("courses c ON c.id = e.course_id")
}

// List returns grades with student and course labels, narrowed by filter.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	builder := r.detailQuery().OrderBy("g.date_recorded DESC", "g.id DESC")
	if filter.EnrollmentID > 0 {
		builder = builder.Where(squirrel.Eq{"g.enrollment_id": filter.EnrollmentID})
	}
	if filter.StudentID > 0 {
		builder = builder.Where(squirrel.Eq{"e.student_id": filter.StudentID})
	}
	if filter.CourseID > 0 {
		builder = builder.Where(squirrel.Eq{"e.course_id": filter.CourseID})
	}
	if filter.TeacherID > 0 {
		builder = builder.Where(squirrel.Eq{"c.teacher_id": filter.TeacherID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build grade list query: %w", err)
	}

	grades := make([]models.GradeDetail, 0)
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	for i := range grades {
		grades[i].ComputePercentage()
	}
	return grades, nil
}

// FindByID returns a grade with its student and course labels.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.GradeDetail, error) {
	query, args, err := r.detailQuery().Where(squirrel.Eq{"g.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build grade query: %w", err)
	}

	var grade models.GradeDetail
	if err := r.db.GetContext(ctx, &grade, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find grade: %w", err)
	}
	grade.ComputePercentage()
	return &grade, nil
}

// ListByEnrollment returns the grades of one enrollment, newest first.
func (r *GradeRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Grade, error) {
	const query = `SELECT ` + gradeColumns + ` FROM grades WHERE enrollment_id = $1 ORDER BY date_recorded DESC, id DESC`
	grades := make([]models.Grade, 0)
	if err := r.db.SelectContext(ctx, &grades, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list enrollment grades: %w", err)
	}
	for i := range grades {
		grades[i].ComputePercentage()
	}
	return grades, nil
}

// Create inserts a grade and fills its id and recording date.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	const query = `INSERT INTO grades (enrollment_id, assignment, score, max_score, grade, remarks)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, date_recorded`
	row := r.db.QueryRowxContext(ctx, query,
		grade.EnrollmentID, grade.Assignment, grade.Score, grade.MaxScore, grade.Grade, grade.Remarks)
	if err := row.Scan(&grade.ID, &grade.DateRecorded); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	grade.ComputePercentage()
	return nil
}

// Update replaces a grade's fields.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	const query = `UPDATE grades SET enrollment_id = $2, assignment = $3, score = $4, max_score = $5, grade = $6, remarks = $7
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		grade.ID, grade.EnrollmentID, grade.Assignment, grade.Score, grade.MaxScore, grade.Grade, grade.Remarks)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	grade.ComputePercentage()
	return affectedOrNotFound(res, "update grade")
}

// Delete removes one grade.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return affectedOrNotFound(res, "delete grade")
}

// DeleteByEnrollment removes all grades of an enrollment.
func (r *GradeRepository) DeleteByEnrollment(ctx context.Context, exec sqlx.ExtContext, enrollmentID int64) error {
	if _, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM grades WHERE enrollment_id = $1`, enrollmentID); err != nil {
		return fmt.Errorf("delete enrollment grades: %w", err)
	}
	return nil
}

// DeleteByStudent removes all grades across a student's enrollments.
func (r *GradeRepository) DeleteByStudent(ctx context.Context, exec sqlx.ExtContext, studentID int64) error {
	const query = `DELETE FROM grades WHERE enrollment_id IN (SELECT id FROM enrollments WHERE student_id = $1)`
	if _, err := executor(r.db, exec).ExecContext(ctx, query, studentID); err != nil {
		return fmt.Errorf("delete student grades: %w", err)
	}
	return nil
}

// DeleteByCourse removes all grades across a course's enrollments.
func (r *GradeRepository) DeleteByCourse(ctx context.Context, exec sqlx.ExtContext, courseID int64) error {
	const query = `DELETE FROM grades WHERE enrollment_id IN (SELECT id FROM enrollments WHERE course_id = $1)`
	if _, err := executor(r.db, exec).ExecContext(ctx, query, courseID); err != nil {
		return fmt.Errorf("delete course grades: %w", err)
	}
	return nil
}
