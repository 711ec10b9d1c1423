package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.CourseDetail, error)
	ListPublic(ctx context.Context) ([]models.CourseDetail, error)
	FindByID(ctx context.Context, id int64) (*models.CourseDetail, error)
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type teacherLookup interface {
	FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error)
}

type courseCascade interface {
	DeleteByCourse(ctx context.Context, exec sqlx.ExtContext, courseID int64) error
}

// CourseService manages the course catalog.
type CourseService struct {
	courses     courseRepository
	teachers    teacherLookup
	enrollments courseCascade
	grades      courseCascade
	tx          txRunner
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses courseRepository, teachers teacherLookup, enrollments, grades courseCascade, tx txRunner, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		courses:     courses,
		teachers:    teachers,
		enrollments: enrollments,
		grades:      grades,
		tx:          tx,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// List returns every course, newest first.
func (s *CourseService) List(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, internalError(err, "list courses")
	}
	return courses, nil
}

// ListPublic returns the catalog ordered by name for anonymous visitors.
func (s *CourseService) ListPublic(ctx context.Context) ([]models.CourseDetail, error) {
	courses, err := s.courses.ListPublic(ctx)
	if err != nil {
		return nil, internalError(err, "list courses")
	}
	return courses, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.CourseDetail, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Course not found", "load course")
	}
	return course, nil
}

// Create adds a course to the catalog.
func (s *CourseService) Create(ctx context.Context, req models.CourseRequest) (int64, error) {
	course, err := s.prepare(ctx, 0, req)
	if err != nil {
		return 0, err
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return 0, courseStorageError(err, "create course")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return course.ID, nil
}

// Update replaces a course.
func (s *CourseService) Update(ctx context.Context, id int64, req models.CourseRequest) error {
	if _, err := s.courses.FindByID(ctx, id); err != nil {
		return storageError(err, "Course not found", "load course")
	}
	course, err := s.prepare(ctx, id, req)
	if err != nil {
		return err
	}
	course.ID = id
	if err := s.courses.Update(ctx, course); err != nil {
		return courseStorageError(err, "update course")
	}
	return nil
}

// Delete removes a course together with its enrollments and their grades.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if _, err := s.courses.FindByID(ctx, id); err != nil {
		return storageError(err, "Course not found", "load course")
	}

	err := s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.grades.DeleteByCourse(ctx, tx, id); err != nil {
			return err
		}
		if err := s.enrollments.DeleteByCourse(ctx, tx, id); err != nil {
			return err
		}
		return s.courses.Delete(ctx, tx, id)
	})
	if err != nil {
		return storageError(err, "Course not found", "delete course")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

func (s *CourseService) prepare(ctx context.Context, id int64, req models.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	taken, err := s.courses.ExistsByCode(ctx, req.CourseCode, id)
	if err != nil {
		return nil, internalError(err, "check course code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Course code already exists")
	}

	if req.TeacherID != nil {
		if _, err := s.teachers.FindByID(ctx, *req.TeacherID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "Teacher not found")
			}
			return nil, internalError(err, "load teacher")
		}
	}

	course := &models.Course{
		CourseCode:  req.CourseCode,
		CourseName:  req.CourseName,
		Description: req.Description,
		TeacherID:   req.TeacherID,
		Schedule:    req.Schedule,
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	return course, nil
}

func courseStorageError(err error, action string) error {
	mapped := storageError(err, "Course not found", action)
	if appErrors.FromError(mapped).Code == appErrors.ErrConflict.Code {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "Course code already exists")
	}
	return mapped
}
