package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
	FindByID(ctx context.Context, id int64) (*models.GradeDetail, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id int64) error
}

type enrollmentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
}

// GradeService records assessment results against enrollments.
type GradeService struct {
	grades      gradeRepository
	enrollments enrollmentLookup
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(grades gradeRepository, enrollments enrollmentLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// List returns grades narrowed by filter, newest first.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	grades, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "list grades")
	}
	return grades, nil
}

// Get returns a grade by id.
func (s *GradeService) Get(ctx context.Context, id int64) (*models.GradeDetail, error) {
	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Grade not found", "load grade")
	}
	return grade, nil
}

// Create records a grade. The enrollment must exist.
func (s *GradeService) Create(ctx context.Context, req models.GradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	if _, err := s.enrollments.FindByID(ctx, req.EnrollmentID); err != nil {
		return nil, storageError(err, "Enrollment not found", "load enrollment")
	}

	grade := buildGrade(req.EnrollmentID, req.Assignment, *req.Score, *req.MaxScore, req.Grade, req.Remarks)
	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, storageError(err, "Grade not found", "create grade")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return grade, nil
}

// Update replaces the score data of a grade.
func (s *GradeService) Update(ctx context.Context, id int64, req models.UpdateGradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err)
	}
	current, err := s.grades.FindByID(ctx, id)
	if err != nil {
		return storageError(err, "Grade not found", "load grade")
	}

	grade := buildGrade(current.EnrollmentID, req.Assignment, *req.Score, *req.MaxScore, req.Grade, req.Remarks)
	grade.ID = id
	if err := s.grades.Update(ctx, grade); err != nil {
		return storageError(err, "Grade not found", "update grade")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

// Delete removes a grade.
func (s *GradeService) Delete(ctx context.Context, id int64) error {
	if err := s.grades.Delete(ctx, id); err != nil {
		return storageError(err, "Grade not found", "delete grade")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}

// buildGrade derives the letter from the percentage when none is supplied.
func buildGrade(enrollmentID int64, assignment string, score, maxScore float64, letter, remarks *string) *models.Grade {
	grade := &models.Grade{
		EnrollmentID: enrollmentID,
		Assignment:   assignment,
		Score:        score,
		MaxScore:     maxScore,
		Grade:        letter,
		Remarks:      remarks,
	}
	grade.ComputePercentage()
	if grade.Grade == nil || *grade.Grade == "" {
		derived := models.LetterGrade(grade.Percentage)
		grade.Grade = &derived
	}
	return grade
}
