package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type portalUserReader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type portalStudentReader interface {
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	FindByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

type portalTeacherReader interface {
	FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error)
	FindByUserID(ctx context.Context, userID int64) (*models.Teacher, error)
}

type portalCourseReader interface {
	FindByID(ctx context.Context, id int64) (*models.CourseDetail, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.CourseDetail, error)
}

type portalEnrollmentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	FindByStudentAndCourse(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	ListCoursesByStudent(ctx context.Context, studentID int64, activeOnly bool) ([]models.EnrolledCourse, error)
	ListStudentsByTeacher(ctx context.Context, teacherID, courseID, studentID int64) ([]models.EnrolledStudent, error)
}

type portalGradeReader interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
	ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Grade, error)
}

type gradeRecorder interface {
	Create(ctx context.Context, req models.GradeRequest) (*models.Grade, error)
}

type teacherProfileUpdater interface {
	Update(ctx context.Context, id int64, req models.UpdateTeacherRequest) error
}

type teacherDashboardProvider interface {
	Teacher(ctx context.Context, teacherID int64) (*models.TeacherDashboard, bool, error)
}

type transcriptRenderer interface {
	Transcript(student *models.StudentDetail, grades []models.GradeDetail) (*ExportFile, error)
}

// PortalServiceParams groups the portal's collaborators.
type PortalServiceParams struct {
	Users       portalUserReader
	Students    portalStudentReader
	Teachers    portalTeacherReader
	Courses     portalCourseReader
	Enrollments portalEnrollmentReader
	Grades      portalGradeReader
	GradeWriter gradeRecorder
	TeacherEdit teacherProfileUpdater
	Dashboard   teacherDashboardProvider
	Exporter    transcriptRenderer
	Logger      *zap.Logger
}

// PortalService serves the self-service views of students and teachers. Every operation
// resolves the acting student or teacher from the authenticated user id.
type PortalService struct {
	users       portalUserReader
	students    portalStudentReader
	teachers    portalTeacherReader
	courses     portalCourseReader
	enrollments portalEnrollmentReader
	grades      portalGradeReader
	gradeWriter gradeRecorder
	teacherEdit teacherProfileUpdater
	dashboard   teacherDashboardProvider
	exporter    transcriptRenderer
	logger      *zap.Logger
}

// NewPortalService constructs the portal service.
func NewPortalService(params PortalServiceParams) *PortalService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortalService{
		users:       params.Users,
		students:    params.Students,
		teachers:    params.Teachers,
		courses:     params.Courses,
		enrollments: params.Enrollments,
		grades:      params.Grades,
		gradeWriter: params.GradeWriter,
		teacherEdit: params.TeacherEdit,
		dashboard:   params.Dashboard,
		exporter:    params.Exporter,
		logger:      logger,
	}
}

// Profile returns the caller with the extension record matching their role.
func (s *PortalService) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storageError(err, "User not found", "load user")
	}
	profile := &models.Profile{UserInfo: user.Public(), CreatedAt: user.CreatedAt}

	switch user.Role {
	case models.RoleUser:
		student, err := s.students.FindByUserID(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, internalError(err, "load student")
		}
		profile.StudentDetails = student
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByUserID(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, internalError(err, "load teacher")
		}
		profile.TeacherDetails = teacher
	}
	return profile, nil
}

// MyCourses returns the caller's active enrollments.
func (s *PortalService) MyCourses(ctx context.Context, userID int64) ([]models.EnrolledCourse, error) {
	student, err := s.studentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.enrollments.ListCoursesByStudent(ctx, student.ID, true)
	if err != nil {
		return nil, internalError(err, "list courses")
	}
	return courses, nil
}

// MyGrades returns every grade across the caller's enrollments.
func (s *PortalService) MyGrades(ctx context.Context, userID int64) ([]models.GradeDetail, error) {
	student, err := s.studentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{StudentID: student.ID})
	if err != nil {
		return nil, internalError(err, "list grades")
	}
	return grades, nil
}

// MyCourseDetail returns one of the caller's courses with the enrollment and its grades.
func (s *PortalService) MyCourseDetail(ctx context.Context, userID, courseID int64) (*models.CourseEnrollmentView, error) {
	student, err := s.studentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollments.FindByStudentAndCourse(ctx, student.ID, courseID)
	if err != nil {
		return nil, storageError(err, "Not enrolled in this course", "load enrollment")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, storageError(err, "Course not found", "load course")
	}
	grades, err := s.grades.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, internalError(err, "list grades")
	}
	return &models.CourseEnrollmentView{Course: *course, Enrollment: *enrollment, Grades: grades}, nil
}

// Transcript renders the caller's grades as a PDF.
func (s *PortalService) Transcript(ctx context.Context, userID int64) (*ExportFile, error) {
	student, err := s.studentFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	detail, err := s.students.FindByID(ctx, student.ID)
	if err != nil {
		return nil, storageError(err, "Student record not found", "load student")
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{StudentID: student.ID})
	if err != nil {
		return nil, internalError(err, "list grades")
	}
	return s.exporter.Transcript(detail, grades)
}

// TeacherDashboard returns the caller's workload counts.
func (s *PortalService) TeacherDashboard(ctx context.Context, userID int64) (*models.TeacherDashboard, bool, error) {
	teacher, err := s.teacherFor(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return s.dashboard.Teacher(ctx, teacher.ID)
}

// TeacherProfile returns the caller's teacher record.
func (s *PortalService) TeacherProfile(ctx context.Context, userID int64) (*models.TeacherDetail, error) {
	teacher, err := s.teacherFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	detail, err := s.teachers.FindByID(ctx, teacher.ID)
	if err != nil {
		return nil, storageError(err, "Teacher record not found", "load teacher")
	}
	return detail, nil
}

// UpdateTeacherProfile edits the caller's own teacher record.
func (s *PortalService) UpdateTeacherProfile(ctx context.Context, userID int64, req models.TeacherProfileRequest) error {
	teacher, err := s.teacherFor(ctx, userID)
	if err != nil {
		return err
	}
	return s.teacherEdit.Update(ctx, teacher.ID, req)
}

// TeacherCourses returns the courses the caller teaches.
func (s *PortalService) TeacherCourses(ctx context.Context, userID int64) ([]models.CourseDetail, error) {
	teacher, err := s.teacherFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, internalError(err, "list courses")
	}
	return courses, nil
}

// TeacherCourseDetail returns one course taught by the caller with its enrolled students.
// Courses taught by someone else are reported as missing.
func (s *PortalService) TeacherCourseDetail(ctx context.Context, userID, courseID int64) (*models.TeacherCourseView, error) {
	teacher, err := s.teacherFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, storageError(err, "Course not found", "load course")
	}
	if course.TeacherID == nil || *course.TeacherID != teacher.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
	}
	students, err := s.enrollments.ListStudentsByTeacher(ctx, teacher.ID, courseID, 0)
	if err != nil {
		return nil, internalError(err, "list students")
	}
	return &models.TeacherCourseView{Course: *course, Students: students}, nil
}

// TeacherStudents lists students enrolled in the caller's courses, optionally narrowed to one course.
func (s *PortalService) TeacherStudents(ctx context.Context, userID, courseID int64) ([]models.EnrolledStudent, error) {
	teacher, err := s.teacherFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	students, err := s.enrollments.ListStudentsByTeacher(ctx, teacher.ID, courseID, 0)
	if err != nil {
		return nil, internalError(err, "list students")
	}
	return students, nil
}

// TeacherStudent returns a student enrolled in one of the caller's courses with the grades
// recorded in those courses.
func (s *PortalService) TeacherStudent(ctx context.Context, userID, studentID int64) (*models.TeacherStudentView, error) {
	teacher, err := s.teacherFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListStudentsByTeacher(ctx, teacher.ID, 0, studentID)
	if err != nil {
		return nil, internalError(err, "list students")
	}
	if len(enrollments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{StudentID: studentID, TeacherID: teacher.ID})
	if err != nil {
		return nil, internalError(err, "list grades")
	}
	return &models.TeacherStudentView{Student: enrollments[0].StudentDetail, Courses: enrollments, Grades: grades}, nil
}

// RecordGrade records a grade on an enrollment in one of the caller's courses.
func (s *PortalService) RecordGrade(ctx context.Context, userID int64, req models.GradeRequest) (*models.Grade, error) {
	teacher, err := s.teacherFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.EnrollmentID > 0 {
		enrollment, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
		if err != nil {
			return nil, storageError(err, "Enrollment not found", "load enrollment")
		}
		course, err := s.courses.FindByID(ctx, enrollment.CourseID)
		if err != nil {
			return nil, storageError(err, "Course not found", "load course")
		}
		if course.TeacherID == nil || *course.TeacherID != teacher.ID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "You do not teach this course")
		}
	}
	return s.gradeWriter.Create(ctx, req)
}

func (s *PortalService) studentFor(ctx context.Context, userID int64) (*models.Student, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(err, "Student record not found", "load student")
	}
	return student, nil
}

func (s *PortalService) teacherFor(ctx context.Context, userID int64) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(err, "Teacher record not found", "load teacher")
	}
	return teacher, nil
}
