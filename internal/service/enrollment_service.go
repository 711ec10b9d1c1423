package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/dberrors"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

const enrollmentPairConstraint = "enrollments_student_course_key"

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	FindByStudentAndCourse(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
}

type courseLookup interface {
	FindByID(ctx context.Context, id int64) (*models.CourseDetail, error)
}

type enrollmentGradeCascade interface {
	DeleteByEnrollment(ctx context.Context, exec sqlx.ExtContext, enrollmentID int64) error
}

// errAlreadyEnrolled keeps the 400 status clients of the enrollment endpoint expect.
var errAlreadyEnrolled = appErrors.New(appErrors.ErrConflict.Code, http.StatusBadRequest, "Student already enrolled in this course")

// EnrollmentService links students to courses.
type EnrollmentService struct {
	enrollments enrollmentRepository
	students    studentLookup
	courses     courseLookup
	grades      enrollmentGradeCascade
	tx          txRunner
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(enrollments enrollmentRepository, students studentLookup, courses courseLookup, grades enrollmentGradeCascade, tx txRunner, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		students:    students,
		courses:     courses,
		grades:      grades,
		tx:          tx,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// List returns enrollments narrowed by filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be active or inactive")
	}
	enrollments, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "list enrollments")
	}
	return enrollments, nil
}

// Create enrolls a student into a course. A student can be enrolled in a course only once.
func (s *EnrollmentService) Create(ctx context.Context, req models.CreateEnrollmentRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, invalidPayload(err)
	}
	status := req.Status
	if status == "" {
		status = models.EnrollmentActive
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return 0, storageError(err, "Student not found", "load student")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return 0, storageError(err, "Course not found", "load course")
	}

	if _, err := s.enrollments.FindByStudentAndCourse(ctx, req.StudentID, req.CourseID); err == nil {
		return 0, appErrors.Clone(errAlreadyEnrolled, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, internalError(err, "check enrollment")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, CourseID: req.CourseID, Status: status}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if dberrors.IsUniqueViolation(err, enrollmentPairConstraint) {
			return 0, appErrors.Wrap(err, errAlreadyEnrolled.Code, errAlreadyEnrolled.Status, errAlreadyEnrolled.Message)
		}
		return 0, storageError(err, "Enrollment not found", "create enrollment")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return enrollment.ID, nil
}

// UpdateStatus activates or deactivates an enrollment.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, id int64, req models.UpdateEnrollmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err)
	}
	if err := s.enrollments.UpdateStatus(ctx, id, req.Status); err != nil {
		return storageError(err, "Enrollment not found", "update enrollment")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

// Delete removes an enrollment and its grades.
func (s *EnrollmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.enrollments.FindByID(ctx, id); err != nil {
		return storageError(err, "Enrollment not found", "load enrollment")
	}

	err := s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.grades.DeleteByEnrollment(ctx, tx, id); err != nil {
			return err
		}
		return s.enrollments.Delete(ctx, tx, id)
	})
	if err != nil {
		return storageError(err, "Enrollment not found", "delete enrollment")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}
