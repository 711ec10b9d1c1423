package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

var teacherDetailColumns = []string{"id", "user_id", "employee_id", "department", "specialization", "username", "email", "first_name", "last_name"}

func TestTeacherRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows(teacherDetailColumns).AddRow(2, 20, "T001", "Science", nil, "carol", "c@x.com", "Carol", "C")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1")).WithArgs(int64(2)).WillReturnRows(rows)

	teacher, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "T001", teacher.EmployeeID)
	assert.Equal(t, "Science", *teacher.Department)
	assert.Nil(t, teacher.Specialization)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindByUserIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE user_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "employee_id", "department", "specialization"}))

	_, err := repo.FindByUserID(context.Background(), 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTeacherRepositoryCreateInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)
	tx := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO teachers").
		WithArgs(int64(8), "T009", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	teacher := &models.Teacher{UserID: 8, EmployeeID: "T009"}
	err := tx.WithinTx(context.Background(), func(exec sqlx.ExtContext) error {
		return repo.Create(context.Background(), exec, teacher)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), teacher.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
