package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// passwordHashCost is lowered by tests.
var passwordHashCost = bcrypt.DefaultCost

var (
	unknownUserHashOnce sync.Once
	unknownUserHash     []byte
)

// unknownUserPasswordHash is compared against when a login matches no account.
func unknownUserPasswordHash() []byte {
	unknownUserHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), passwordHashCost)
		if err == nil {
			unknownUserHash = hash
		}
	})
	return unknownUserHash
}

type authUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type studentCreator interface {
	Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
}

type teacherCreator interface {
	Create(ctx context.Context, exec sqlx.ExtContext, teacher *models.Teacher) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService provides registration, login and token validation.
type AuthService struct {
	users       authUserRepository
	students    studentCreator
	teachers    teacherCreator
	tx          txRunner
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
	compareHash func(hash, password []byte) error
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, students studentCreator, teachers teacherCreator, tx txRunner, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiration <= 0 {
		config.Expiration = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:       users,
		students:    students,
		teachers:    teachers,
		tx:          tx,
		validator:   validate,
		logger:      logger,
		config:      config,
		compareHash: bcrypt.CompareHashAndPassword,
	}
}

// Register creates an account together with its student or teacher record and signs a token for it.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	role, err := models.ParseRole(req.Role)
	if err != nil || role == models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be user or teacher")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, internalError(err, "check existing user")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Username or email already exists")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, internalError(err, "hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if err := s.users.Create(ctx, tx, user); err != nil {
			return err
		}
		switch {
		case role == models.RoleUser && req.StudentID != "":
			return s.students.Create(ctx, tx, &models.Student{
				UserID:      user.ID,
				StudentID:   req.StudentID,
				Grade:       req.Grade,
				Section:     req.Section,
				ParentName:  req.ParentName,
				ParentEmail: req.ParentEmail,
				ParentPhone: req.ParentPhone,
			})
		case role == models.RoleTeacher && req.EmployeeID != "":
			return s.teachers.Create(ctx, tx, &models.Teacher{
				UserID:         user.ID,
				EmployeeID:     req.EmployeeID,
				Department:     req.Department,
				Specialization: req.Specialization,
			})
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "user not found", "register user")
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return s.issue(user)
}

// Login authenticates by username or email. Unknown users and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}

	user, err := s.users.FindByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.compareHash(unknownUserPasswordHash(), []byte(req.Password))
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid credentials")
		}
		return nil, internalError(err, "fetch user")
	}
	if err := s.compareHash([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid credentials")
	}

	return s.issue(user)
}

// Me returns the public record of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storageError(err, "User not found", "load user")
	}
	info := user.Public()
	return &info, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return storageError(err, "User not found", "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return internalError(err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return storageError(err, "User not found", "update password")
	}
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || !claims.Role.Valid() || claims.UserID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, internalError(err, "create access token")
	}
	return &models.AuthResponse{
		Token:     signed,
		ExpiresIn: int64(s.config.Expiration.Seconds()),
		User:      user.Public(),
	}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
