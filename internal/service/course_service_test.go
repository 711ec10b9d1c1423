package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

func newTestCourseService(db *memDB) *CourseService {
	return NewCourseService(memCourses{db}, memTeachers{db}, memEnrollments{db}, memGrades{db}, &fakeTx{db: db}, nil, nil, nil)
}

func TestCourseCreate(t *testing.T) {
	db := newMemDB()
	teacher := db.seedTeacher("grace", "EMP-1")
	svc := newTestCourseService(db)
	ctx := context.Background()

	id, err := svc.Create(ctx, models.CourseRequest{CourseCode: "CS101", CourseName: "Intro", TeacherID: int64Ptr(teacher.ID)})
	require.NoError(t, err)

	course, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, course.Credits)
	require.NotNil(t, course.EmployeeID)
	assert.Equal(t, "EMP-1", *course.EmployeeID)
}

func TestCourseCreateRejectsDuplicateCodeAndUnknownTeacher(t *testing.T) {
	db := newMemDB()
	db.seedCourse("CS101", nil)
	svc := newTestCourseService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CourseRequest{CourseCode: "CS101", CourseName: "Again"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "Course code already exists", appErrors.FromError(err).Message)

	_, err = svc.Create(ctx, models.CourseRequest{CourseCode: "CS102", CourseName: "Ghost", TeacherID: int64Ptr(404)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Len(t, db.courses, 1)
}

func TestCourseUpdateKeepsOwnCode(t *testing.T) {
	db := newMemDB()
	course := db.seedCourse("CS101", nil)
	db.seedCourse("CS102", nil)
	svc := newTestCourseService(db)
	ctx := context.Background()

	require.NoError(t, svc.Update(ctx, course.ID, models.CourseRequest{CourseCode: "CS101", CourseName: "Renamed", Credits: intPtr(4)}))
	assert.Equal(t, "Renamed", db.courses[course.ID].CourseName)
	assert.Equal(t, 4, db.courses[course.ID].Credits)

	err := svc.Update(ctx, course.ID, models.CourseRequest{CourseCode: "CS102", CourseName: "Clash"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	err = svc.Update(ctx, 999, models.CourseRequest{CourseCode: "X", CourseName: "Y"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCourseDeleteRemovesEnrollmentsAndGrades(t *testing.T) {
	db := newMemDB()
	student := db.seedStudent("sam", "S-1")
	course := db.seedCourse("CS101", nil)
	other := db.seedCourse("CS102", nil)
	e1 := db.seedEnrollment(student.ID, course.ID)
	e2 := db.seedEnrollment(student.ID, other.ID)
	db.seedGrade(e1.ID, 5, 10)
	kept := db.seedGrade(e2.ID, 7, 10)
	svc := newTestCourseService(db)

	require.NoError(t, svc.Delete(context.Background(), course.ID))

	assert.NotContains(t, db.courses, course.ID)
	assert.NotContains(t, db.enrollments, e1.ID)
	assert.Contains(t, db.enrollments, e2.ID)
	assert.Len(t, db.grades, 1)
	assert.Contains(t, db.grades, kept.ID)
}

func TestCourseDeleteRollsBack(t *testing.T) {
	db := newMemDB()
	student := db.seedStudent("sam", "S-1")
	course := db.seedCourse("CS101", nil)
	db.seedEnrollment(student.ID, course.ID)
	db.fail["courses.Delete"] = errBoom
	svc := newTestCourseService(db)

	require.Error(t, svc.Delete(context.Background(), course.ID))
	assert.Len(t, db.enrollments, 1)
	assert.Len(t, db.courses, 1)
}

func TestCourseListPublicOrdersByName(t *testing.T) {
	db := newMemDB()
	db.courses[1] = models.Course{ID: 1, CourseCode: "B", CourseName: "Zoology"}
	db.courses[2] = models.Course{ID: 2, CourseCode: "A", CourseName: "Algebra"}
	svc := newTestCourseService(db)

	courses, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Algebra", courses[0].CourseName)
}

func intPtr(v int) *int { return &v }
