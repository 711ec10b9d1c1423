package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const courseDetailSelect = `SELECT c.id, c.course_code, c.course_name, c.description, c.teacher_id, c.credits, c.schedule,
	t.employee_id, NULLIF(TRIM(u.first_name || ' ' || u.last_name), '') AS teacher_name
FROM courses c
LEFT JOIN teachers t ON t.id = c.teacher_id
LEFT JOIN users u ON u.id = t.user_id`

// CourseRepository handles persistence for the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns every course with its teacher, newest first.
func (r *CourseRepository) List(ctx context.Context) ([]models.CourseDetail, error) {
	return r.selectCourses(ctx, courseDetailSelect+` ORDER BY c.id DESC`)
}

// ListPublic returns every course ordered by name.
func (r *CourseRepository) ListPublic(ctx context.Context) ([]models.CourseDetail, error) {
	return r.selectCourses(ctx, courseDetailSelect+` ORDER BY c.course_name, c.id`)
}

// ListByTeacher returns the courses taught by teacherID.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.CourseDetail, error) {
	return r.selectCourses(ctx, courseDetailSelect+` WHERE c.teacher_id = $1 ORDER BY c.course_name, c.id`, teacherID)
}

func (r *CourseRepository) selectCourses(ctx context.Context, query string, args ...interface{}) ([]models.CourseDetail, error) {
	courses := make([]models.CourseDetail, 0)
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course with its teacher.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.CourseDetail, error) {
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, courseDetailSelect+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// ExistsByCode reports whether another course already uses code. excludeID skips the course being updated.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM courses WHERE course_code = $1 AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code, excludeID); err != nil {
		return false, fmt.Errorf("check course code: %w", err)
	}
	return exists, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (course_code, course_name, description, teacher_id, credits, schedule)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query,
		course.CourseCode, course.CourseName, course.Description, course.TeacherID, course.Credits, course.Schedule)
	if err := row.Scan(&course.ID); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update replaces a course's fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET course_code = $2, course_name = $3, description = $4, teacher_id = $5, credits = $6, schedule = $7
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		course.ID, course.CourseCode, course.CourseName, course.Description, course.TeacherID, course.Credits, course.Schedule)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return affectedOrNotFound(res, "update course")
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	res, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return affectedOrNotFound(res, "delete course")
}

// UnassignTeacher clears the teacher of every course taught by teacherID.
func (r *CourseRepository) UnassignTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID int64) error {
	if _, err := executor(r.db, exec).ExecContext(ctx, `UPDATE courses SET teacher_id = NULL WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("unassign teacher courses: %w", err)
	}
	return nil
}
