package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

var courseDetailColumns = []string{"id", "course_code", "course_name", "description", "teacher_id", "credits", "schedule", "employee_id", "teacher_name"}

func TestCourseRepositoryListPublicOrdersByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows(courseDetailColumns).
		AddRow(2, "BIO101", "Biology", nil, 1, 3, nil, "T001", "Carol C").
		AddRow(1, "MTH101", "Math", nil, nil, 4, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.course_name, c.id")).WillReturnRows(rows)

	courses, err := repo.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Carol C", *courses[0].TeacherName)
	assert.Nil(t, courses[1].TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE course_code = $1 AND id <> $2")).
		WithArgs("MTH101", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsByCode(context.Background(), "MTH101", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs("MTH101", "Math", nil, nil, 4, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	course := &models.Course{CourseCode: "MTH101", CourseName: "Math", Credits: 4}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(5), course.ID)
}

func TestCourseRepositoryUnassignTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET teacher_id = NULL WHERE teacher_id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UnassignTeacher(context.Background(), nil, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
