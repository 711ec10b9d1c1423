package models

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest creates an account, optionally with a student or teacher record.
// StudentID applies to role user and EmployeeID to role teacher.
type RegisterRequest struct {
	Username       string  `json:"username" validate:"required,min=3,max=50"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	FirstName      string  `json:"firstName" validate:"required"`
	LastName       string  `json:"lastName" validate:"required"`
	Role           string  `json:"role" validate:"omitempty,oneof=user teacher"`
	StudentID      string  `json:"studentId"`
	Grade          *string `json:"grade"`
	Section        *string `json:"section"`
	ParentName     *string `json:"parentName"`
	ParentEmail    *string `json:"parentEmail" validate:"omitempty,email"`
	ParentPhone    *string `json:"parentPhone"`
	EmployeeID     string  `json:"employeeId"`
	Department     *string `json:"department"`
	Specialization *string `json:"specialization"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the issued token and user info.
type AuthResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expiresIn"`
	User      UserInfo `json:"user"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
