package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the dashboards.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// AdminCounts returns the registry totals.
func (r *DashboardRepository) AdminCounts(ctx context.Context) (*models.AdminDashboard, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM students) AS students,
	(SELECT COUNT(*) FROM teachers) AS teachers,
	(SELECT COUNT(*) FROM courses) AS courses,
	(SELECT COUNT(*) FROM enrollments) AS enrollments`
	var dashboard models.AdminDashboard
	if err := r.db.GetContext(ctx, &dashboard, query); err != nil {
		return nil, fmt.Errorf("admin dashboard counts: %w", err)
	}
	return &dashboard, nil
}

// TeacherCounts returns workload totals for teacherID.
func (r *DashboardRepository) TeacherCounts(ctx context.Context, teacherID int64) (*models.TeacherDashboard, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM courses WHERE teacher_id = $1) AS courses,
	(SELECT COUNT(DISTINCT e.student_id) FROM enrollments e JOIN courses c ON c.id = e.course_id WHERE c.teacher_id = $1) AS students,
	(SELECT COUNT(DISTINCT e.student_id) FROM enrollments e JOIN courses c ON c.id = e.course_id
		WHERE c.teacher_id = $1 AND e.status = 'active') AS active_students,
	(SELECT COUNT(*) FROM grades g JOIN enrollments e ON e.id = g.enrollment_id JOIN courses c ON c.id = e.course_id
		WHERE c.teacher_id = $1) AS grades_recorded`
	var dashboard models.TeacherDashboard
	if err := r.db.GetContext(ctx, &dashboard, query, teacherID); err != nil {
		return nil, fmt.Errorf("teacher dashboard counts: %w", err)
	}
	return &dashboard, nil
}
