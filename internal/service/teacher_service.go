package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.TeacherDetail, error)
	FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error)
	ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error
	Update(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type courseUnassigner interface {
	UnassignTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID int64) error
}

// TeacherService handles teacher use-cases.
type TeacherService struct {
	teachers  teacherRepository
	users     accountRepository
	courses   courseUnassigner
	tx        txRunner
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(teachers teacherRepository, users accountRepository, courses courseUnassigner, tx txRunner, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{teachers: teachers, users: users, courses: courses, tx: tx, cache: cache, validator: validate, logger: logger}
}

// List returns every teacher.
func (s *TeacherService) List(ctx context.Context) ([]models.TeacherDetail, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, internalError(err, "list teachers")
	}
	return teachers, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Teacher not found", "load teacher")
	}
	return teacher, nil
}

// Create registers a user account with role teacher and its teacher record.
func (s *TeacherService) Create(ctx context.Context, req models.CreateTeacherRequest) (int64, error) {
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
	taken, err := s.teachers.ExistsByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		return 0, internalError(err, "check employee id")
	}
	if taken {
		return 0, appErrors.Clone(appErrors.ErrConflict, "Employee ID already exists")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return 0, internalError(err, "hash password")
	}

	teacher := &models.Teacher{
		EmployeeID:     req.EmployeeID,
		Department:     req.Department,
		Specialization: req.Specialization,
	}
	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		user := &models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         models.RoleTeacher,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		}
		if err := s.users.Create(ctx, tx, user); err != nil {
			return err
		}
		teacher.UserID = user.ID
		return s.teachers.Create(ctx, tx, teacher)
	})
	if err != nil {
		return 0, storageError(err, "Teacher not found", "create teacher")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	return teacher.ID, nil
}

// Update replaces department and specialization and optionally renames the owning user.
func (s *TeacherService) Update(ctx context.Context, id int64, req models.UpdateTeacherRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err)
	}

	current, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		return storageError(err, "Teacher not found", "load teacher")
	}
	return s.apply(ctx, current, req)
}

func (s *TeacherService) apply(ctx context.Context, current *models.TeacherDetail, req models.UpdateTeacherRequest) error {
	updated := current.Teacher
	updated.Department = req.Department
	updated.Specialization = req.Specialization

	err := s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.teachers.Update(ctx, tx, &updated); err != nil {
			return err
		}
		if req.FirstName == nil && req.LastName == nil {
			return nil
		}
		return s.users.UpdateProfile(ctx, tx, current.UserID, req.FirstName, req.LastName)
	})
	if err != nil {
		return storageError(err, "Teacher not found", "update teacher")
	}
	return nil
}

// Delete unassigns the teacher's courses and removes the record and user account in one transaction.
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		return storageError(err, "Teacher not found", "load teacher")
	}

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.courses.UnassignTeacher(ctx, tx, teacher.ID); err != nil {
			return err
		}
		if err := s.teachers.Delete(ctx, tx, teacher.ID); err != nil {
			return err
		}
		return s.users.Delete(ctx, tx, teacher.UserID)
	})
	if err != nil {
		return storageError(err, "Teacher not found", "delete teacher")
	}

	s.logger.Info("teacher deleted", zap.Int64("teacher_id", teacher.ID), zap.Int64("user_id", teacher.UserID))
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return nil
}
