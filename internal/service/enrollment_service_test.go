package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

func newTestEnrollmentService(db *memDB) *EnrollmentService {
	return NewEnrollmentService(memEnrollments{db}, memStudents{db}, memCourses{db}, memGrades{db}, &fakeTx{db: db}, nil, nil, nil)
}

func TestEnrollmentCreateDefaultsToActive(t *testing.T) {
	db := newMemDB()
	student := db.seedStudent("sam", "S-1")
	course := db.seedCourse("CS101", nil)
	svc := newTestEnrollmentService(db)

	id, err := svc.Create(context.Background(), models.CreateEnrollmentRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentActive, db.enrollments[id].Status)
}

func TestEnrollmentCreateDuplicateIsConflict(t *testing.T) {
	db := newMemDB()
	student := db.seedStudent("sam", "S-1")
	course := db.seedCourse("CS101", nil)
	db.seedEnrollment(student.ID, course.ID)
	svc := newTestEnrollmentService(db)

	_, err := svc.Create(context.Background(), models.CreateEnrollmentRequest{StudentID: student.ID, CourseID: course.ID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Student already enrolled in this course", appErr.Message)
	assert.Len(t, db.enrollments, 1)
}

func TestEnrollmentCreateRaceMapsUniqueViolation(t *testing.T) {
	db := newMemDB()
	student := db.seedStudent("sam", "S-1")
	course := db.seedCourse("CS101", nil)
	db.fail["enrollments.Create"] = uniqueViolation(enrollmentPairConstraint)
	svc := newTestEnrollmentService(db)

	_, err := svc.Create(context.Background(), models.CreateEnrollmentRequest{StudentID: student.ID, CourseID: course.ID})
	require.Error(t, err)
	assert.Equal(t, "Student already enrolled in this course", appErrors.FromError(err).Message)
}

func TestEnrollmentCreateRequiresExistingRecords(t *testing.T) {
	db := newMemDB()
	student := db.seedStudent("sam", "S-1")
	svc := newTestEnrollmentService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CreateEnrollmentRequest{StudentID: student.ID, CourseID: 999})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Create(ctx, models.CreateEnrollmentRequest{StudentID: 999, CourseID: 1})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Create(ctx, models.CreateEnrollmentRequest{StudentID: student.ID, CourseID: 1, Status: "paused"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEnrollmentListAndUpdateStatus(t *testing.T) {
	db := newMemDB()
	student := db.seedStudent("sam", "S-1")
	c1 := db.seedCourse("CS101", nil)
	c2 := db.seedCourse("CS102", nil)
	e1 := db.seedEnrollment(student.ID, c1.ID)
	db.seedEnrollment(student.ID, c2.ID)
	svc := newTestEnrollmentService(db)
	ctx := context.Background()

	require.NoError(t, svc.UpdateStatus(ctx, e1.ID, models.UpdateEnrollmentRequest{Status: models.EnrollmentInactive}))

	inactive, err := svc.List(ctx, models.EnrollmentFilter{Status: models.EnrollmentInactive})
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, e1.ID, inactive[0].ID)

	byCourse, err := svc.List(ctx, models.EnrollmentFilter{CourseID: c2.ID})
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)

	_, err = svc.List(ctx, models.EnrollmentFilter{Status: "paused"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, 999, models.UpdateEnrollmentRequest{Status: models.EnrollmentActive}), appErrors.ErrNotFound)
}

func TestEnrollmentDeleteRemovesGrades(t *testing.T) {
	db := newMemDB()
	student := db.seedStudent("sam", "S-1")
	course := db.seedCourse("CS101", nil)
	e := db.seedEnrollment(student.ID, course.ID)
	db.seedGrade(e.ID, 8, 10)
	svc := newTestEnrollmentService(db)

	require.NoError(t, svc.Delete(context.Background(), e.ID))
	assert.Empty(t, db.enrollments)
	assert.Empty(t, db.grades)

	assert.ErrorIs(t, svc.Delete(context.Background(), e.ID), appErrors.ErrNotFound)
}
