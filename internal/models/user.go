package models

import "time"

// User represents an application account stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Public strips credentials for API responses.
func (u User) Public() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// UserInfo describes a user in responses.
type UserInfo struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
}

// Profile is the self-service view of the caller with its extension record.
type Profile struct {
	UserInfo
	CreatedAt      time.Time `json:"createdAt"`
	StudentDetails *Student  `json:"studentDetails,omitempty"`
	TeacherDetails *Teacher  `json:"teacherDetails,omitempty"`
}
