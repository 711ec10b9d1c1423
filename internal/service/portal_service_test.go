package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

func newTestPortalService(db *memDB) *PortalService {
	return NewPortalService(PortalServiceParams{
		Users:       memUsers{db},
		Students:    memStudents{db},
		Teachers:    memTeachers{db},
		Courses:     memCourses{db},
		Enrollments: memEnrollments{db},
		Grades:      memGrades{db},
		GradeWriter: newTestGradeService(db),
		TeacherEdit: newTestTeacherService(db),
		Dashboard:   NewDashboardService(&memDashboard{db: db}, nil, 0, nil),
		Exporter:    NewExportService(memGrades{db}, nil, nil, nil),
	})
}

type portalFixture struct {
	db        *memDB
	svc       *PortalService
	student   models.Student
	teacher   models.Teacher
	taught    models.Course
	untaught  models.Course
	enrolled  models.Enrollment
	elsewhere models.Enrollment
}

func newPortalFixture() *portalFixture {
	db := newMemDB()
	f := &portalFixture{db: db}
	f.student = db.seedStudent("sam", "S-1")
	f.teacher = db.seedTeacher("grace", "EMP-1")
	f.taught = db.seedCourse("CS101", int64Ptr(f.teacher.ID))
	f.untaught = db.seedCourse("ART1", nil)
	f.enrolled = db.seedEnrollment(f.student.ID, f.taught.ID)
	f.elsewhere = db.seedEnrollment(f.student.ID, f.untaught.ID)
	db.seedGrade(f.enrolled.ID, 9, 10)
	db.seedGrade(f.elsewhere.ID, 6, 10)
	f.svc = newTestPortalService(db)
	return f
}

func TestPortalProfileByRole(t *testing.T) {
	f := newPortalFixture()
	ctx := context.Background()

	studentProfile, err := f.svc.Profile(ctx, f.student.UserID)
	require.NoError(t, err)
	require.NotNil(t, studentProfile.StudentDetails)
	assert.Equal(t, "S-1", studentProfile.StudentDetails.StudentID)
	assert.Nil(t, studentProfile.TeacherDetails)

	teacherProfile, err := f.svc.Profile(ctx, f.teacher.UserID)
	require.NoError(t, err)
	require.NotNil(t, teacherProfile.TeacherDetails)
	assert.Nil(t, teacherProfile.StudentDetails)
}

func TestPortalStudentViews(t *testing.T) {
	f := newPortalFixture()
	ctx := context.Background()

	courses, err := f.svc.MyCourses(ctx, f.student.UserID)
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	grades, err := f.svc.MyGrades(ctx, f.student.UserID)
	require.NoError(t, err)
	assert.Len(t, grades, 2)

	detail, err := f.svc.MyCourseDetail(ctx, f.student.UserID, f.taught.ID)
	require.NoError(t, err)
	assert.Equal(t, f.enrolled.ID, detail.Enrollment.ID)
	assert.Len(t, detail.Grades, 1)
	assert.Equal(t, 90.0, detail.Grades[0].Percentage)

	other := f.db.seedCourse("BIO", nil)
	_, err = f.svc.MyCourseDetail(ctx, f.student.UserID, other.ID)
	require.Error(t, err)
	assert.Equal(t, "Not enrolled in this course", appErrors.FromError(err).Message)
}

func TestPortalMyCoursesSkipsInactiveEnrollments(t *testing.T) {
	f := newPortalFixture()
	e := f.db.enrollments[f.elsewhere.ID]
	e.Status = models.EnrollmentInactive
	f.db.enrollments[e.ID] = e

	courses, err := f.svc.MyCourses(context.Background(), f.student.UserID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, f.taught.ID, courses[0].ID)
}

func TestPortalTeacherTokenHasNoStudentRecord(t *testing.T) {
	f := newPortalFixture()

	_, err := f.svc.MyCourses(context.Background(), f.teacher.UserID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Student record not found", appErr.Message)
}

func TestPortalTranscript(t *testing.T) {
	f := newPortalFixture()

	file, err := f.svc.Transcript(context.Background(), f.student.UserID)
	require.NoError(t, err)
	assert.Equal(t, "transcript-S-1.pdf", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestPortalTeacherScope(t *testing.T) {
	f := newPortalFixture()
	ctx := context.Background()
	userID := f.teacher.UserID

	courses, err := f.svc.TeacherCourses(ctx, userID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, f.taught.ID, courses[0].ID)

	view, err := f.svc.TeacherCourseDetail(ctx, userID, f.taught.ID)
	require.NoError(t, err)
	require.Len(t, view.Students, 1)
	assert.Equal(t, "S-1", view.Students[0].StudentID)

	_, err = f.svc.TeacherCourseDetail(ctx, userID, f.untaught.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	students, err := f.svc.TeacherStudents(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, students, 1)

	student, err := f.svc.TeacherStudent(ctx, userID, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, student.Grades, 1)
	assert.Equal(t, f.taught.ID, student.Grades[0].CourseID)

	stranger := f.db.seedStudent("kim", "S-2")
	_, err = f.svc.TeacherStudent(ctx, userID, stranger.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	counts, _, err := f.svc.TeacherDashboard(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Courses)
	assert.Equal(t, 1, counts.Students)

	_, err = f.svc.TeacherCourses(ctx, f.student.UserID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestPortalTeacherProfileUpdate(t *testing.T) {
	f := newPortalFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.UpdateTeacherProfile(ctx, f.teacher.UserID, models.TeacherProfileRequest{Department: strPtr("CS")}))
	profile, err := f.svc.TeacherProfile(ctx, f.teacher.UserID)
	require.NoError(t, err)
	assert.Equal(t, "CS", *profile.Department)
}

func TestPortalRecordGradeChecksOwnership(t *testing.T) {
	f := newPortalFixture()
	ctx := context.Background()
	before := len(f.db.grades)

	_, err := f.svc.RecordGrade(ctx, f.teacher.UserID, models.GradeRequest{
		EnrollmentID: f.elsewhere.ID, Assignment: "Sneaky", Score: floatPtr(10), MaxScore: floatPtr(10),
	})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Len(t, f.db.grades, before)

	grade, err := f.svc.RecordGrade(ctx, f.teacher.UserID, models.GradeRequest{
		EnrollmentID: f.enrolled.ID, Assignment: "Lab", Score: floatPtr(7), MaxScore: floatPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "C", *grade.Grade)
	assert.Len(t, f.db.grades, before+1)

	_, err = f.svc.RecordGrade(ctx, f.teacher.UserID, models.GradeRequest{
		EnrollmentID: 999, Assignment: "Lab", Score: floatPtr(7), MaxScore: floatPtr(10),
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
