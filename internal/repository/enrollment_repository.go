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

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const enrollmentColumns = `id, student_id, course_id, enrollment_date, status`

// EnrollmentRepository handles persistence for student course enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments with student and course labels, narrowed by filter.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	builder := psql.Select(
		"e.id", "e.student_id", "e.course_id", "e.enrollment_date", "e.status",
		"s.student_id AS student_code",
		"TRIM(u.first_name || ' ' || u.last_name) AS student_name",
		"c.course_code", "c.course_name",
	).
		From("enrollments e").
		Join("students s ON s.id = e.student_id").
		Join("users u ON u.id = s.user_id").
		Join("courses c ON c.id = e.course_id").
		OrderBy("e.id DESC")

	if filter.StudentID > 0 {
		builder = builder.Where(squirrel.Eq{"e.student_id": filter.StudentID})
	}
	if filter.CourseID > 0 {
		builder = builder.Where(squirrel.Eq{"e.course_id": filter.CourseID})
	}
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"e.status": filter.Status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build enrollment list query: %w", err)
	}

	enrollments := make([]models.EnrollmentDetail, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns a single enrollment.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// FindByStudentAndCourse returns the enrollment of studentID in courseID.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment by pair: %w", err)
	}
	return &enrollment, nil
}

// Create inserts an enrollment and fills its id and date.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollments (student_id, course_id, status) VALUES ($1, $2, $3) RETURNING id, enrollment_date`
	row := r.db.QueryRowxContext(ctx, query, enrollment.StudentID, enrollment.CourseID, enrollment.Status)
	if err := row.Scan(&enrollment.ID, &enrollment.EnrollmentDate); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus changes the status of an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE enrollments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return affectedOrNotFound(res, "update enrollment status")
}

// Delete removes a single enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	res, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return affectedOrNotFound(res, "delete enrollment")
}

// DeleteByStudent removes every enrollment of studentID.
func (r *EnrollmentRepository) DeleteByStudent(ctx context.Context, exec sqlx.ExtContext, studentID int64) error {
	if _, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete student enrollments: %w", err)
	}
	return nil
}

// DeleteByCourse removes every enrollment in courseID.
func (r *EnrollmentRepository) DeleteByCourse(ctx context.Context, exec sqlx.ExtContext, courseID int64) error {
	if _, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM enrollments WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete course enrollments: %w", err)
	}
	return nil
}

// ListCoursesByStudent returns the courses studentID is enrolled in. activeOnly drops inactive enrollments.
func (r *EnrollmentRepository) ListCoursesByStudent(ctx context.Context, studentID int64, activeOnly bool) ([]models.EnrolledCourse, error) {
	builder := psql.Select(
		"c.id", "c.course_code", "c.course_name", "c.description", "c.teacher_id", "c.credits", "c.schedule",
		"t.employee_id",
		"NULLIF(TRIM(tu.first_name || ' ' || tu.last_name), '') AS teacher_name",
		"e.id AS enrollment_id", "e.enrollment_date", "e.status AS enrollment_status",
	).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		LeftJoin("teachers t ON t.id = c.teacher_id").
		LeftJoin("users tu ON tu.id = t.user_id").
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("c.course_name", "c.id")
	if activeOnly {
		builder = builder.Where(squirrel.Eq{"e.status": models.EnrollmentActive})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build student courses query: %w", err)
	}

	courses := make([]models.EnrolledCourse, 0)
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}

// ListStudentsByTeacher returns enrollments of students in courses taught by teacherID.
// Non-zero courseID or studentID narrow the result.
func (r *EnrollmentRepository) ListStudentsByTeacher(ctx context.Context, teacherID, courseID, studentID int64) ([]models.EnrolledStudent, error) {
	builder := psql.Select(
		"s.id", "s.user_id", "s.student_id", "s.grade", "s.section", "s.parent_name", "s.parent_email", "s.parent_phone",
		"u.username", "u.email", "u.first_name", "u.last_name",
		"e.id AS enrollment_id", "c.id AS course_id", "c.course_code", "c.course_name", "e.status AS enrollment_status",
	).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Join("students s ON s.id = e.student_id").
		Join("users u ON u.id = s.user_id").
		Where(squirrel.Eq{"c.teacher_id": teacherID}).
		OrderBy("u.last_name", "u.first_name", "c.course_name")
	if courseID > 0 {
		builder = builder.Where(squirrel.Eq{"c.id": courseID})
	}
	if studentID > 0 {
		builder = builder.Where(squirrel.Eq{"s.id": studentID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build teacher students query: %w", err)
	}

	students := make([]models.EnrolledStudent, 0)
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher students: %w", err)
	}
	return students, nil
}
