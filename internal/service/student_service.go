package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.StudentDetail, error)
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Update(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

// accountRepository is the slice of the user store needed to manage accounts owned by registry records.
type accountRepository interface {
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, user *models.User) error
	UpdateProfile(ctx context.Context, exec sqlx.ExtContext, id int64, firstName, lastName *string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type studentCascade interface {
	DeleteByStudent(ctx context.Context, exec sqlx.ExtContext, studentID int64) error
}

// StudentService handles student use-cases.
type StudentService struct {
	students    studentRepository
	users       accountRepository
	enrollments studentCascade
	grades      studentCascade
	tx          txRunner
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students studentRepository, users accountRepository, enrollments, grades studentCascade, tx txRunner, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students:    students,
		users:       users,
		enrollments: enrollments,
		grades:      grades,
		tx:          tx,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// List returns every student.
func (s *StudentService) List(ctx context.Context) ([]models.StudentDetail, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, internalError(err, "list students")
	}
	return students, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Student not found", "load student")
	}
	return student, nil
}

// Create registers a user account with role user and its student record.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, invalidPayload(err)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return 0, internalError(err, "check existing user")
	}
	if exists {
		return 0, appErrors.Clone(appErrors.ErrConflict, "Username or email already exists")
	}
	taken, err := s.students.ExistsByStudentID(ctx, req.StudentID)
	if err != nil {
		return 0, internalError(err, "check student id")
	}
	if taken {
		return 0, appErrors.Clone(appErrors.ErrConflict, "Student ID already exists")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return 0, internalError(err, "hash password")
	}

	student := &models.Student{
		StudentID:   req.StudentID,
		Grade:       req.Grade,
		Section:     req.Section,
		ParentName:  req.ParentName,
		ParentEmail: req.ParentEmail,
		ParentPhone: req.ParentPhone,
	}
	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		user := &models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         models.RoleUser,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		}
		if err := s.users.Create(ctx, tx, user); err != nil {
			return err
		}
		student.UserID = user.ID
		return s.students.Create(ctx, tx, student)
	})
	if err != nil {
		return 0, storageError(err, "Student not found", "create student")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return student.ID, nil
}

// Update replaces the student's record fields and optionally renames the owning user.
func (s *StudentService) Update(ctx context.Context, id int64, req models.UpdateStudentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err)
	}

	current, err := s.students.FindByID(ctx, id)
	if err != nil {
		return storageError(err, "Student not found", "load student")
	}

	updated := current.Student
	updated.Grade = req.Grade
	updated.Section = req.Section
	updated.ParentName = req.ParentName
	updated.ParentEmail = req.ParentEmail
	updated.ParentPhone = req.ParentPhone

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.students.Update(ctx, tx, &updated); err != nil {
			return err
		}
		if req.FirstName == nil && req.LastName == nil {
			return nil
		}
		return s.users.UpdateProfile(ctx, tx, current.UserID, req.FirstName, req.LastName)
	})
	if err != nil {
		return storageError(err, "Student not found", "update student")
	}
	return nil
}

// Delete removes the student's grades, enrollments, record and user account in one transaction.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return storageError(err, "Student not found", "load student")
	}

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.grades.DeleteByStudent(ctx, tx, student.ID); err != nil {
			return err
		}
		if err := s.enrollments.DeleteByStudent(ctx, tx, student.ID); err != nil {
			return err
		}
		if err := s.students.Delete(ctx, tx, student.ID); err != nil {
			return err
		}
		return s.users.Delete(ctx, tx, student.UserID)
	})
	if err != nil {
		return storageError(err, "Student not found", "delete student")
	}

	s.logger.Info("student deleted", zap.Int64("student_id", student.ID), zap.Int64("user_id", student.UserID))
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}
