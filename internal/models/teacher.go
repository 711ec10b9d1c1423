package models

// Teacher is the extension record of a user with role teacher.
type Teacher struct {
	ID             int64   `db:"id" json:"id"`
	UserID         int64   `db:"user_id" json:"userId"`
	EmployeeID     string  `db:"employee_id" json:"employeeId"`
	Department     *string `db:"department" json:"department"`
	Specialization *string `db:"specialization" json:"specialization"`
}

// TeacherDetail joins a teacher with its owning user.
type TeacherDetail struct {
	Teacher
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
}

// CreateTeacherRequest creates the user and teacher rows together.
type CreateTeacherRequest struct {
	Username       string  `json:"username" validate:"required,min=3,max=50"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	FirstName      string  `json:"firstName" validate:"required"`
	LastName       string  `json:"lastName" validate:"required"`
	EmployeeID     string  `json:"employeeId" validate:"required"`
	Department     *string `json:"department"`
	Specialization *string `json:"specialization"`
}

// UpdateTeacherRequest replaces a teacher's editable fields. Name fields are optional.
type UpdateTeacherRequest struct {
	Department     *string `json:"department"`
	Specialization *string `json:"specialization"`
	FirstName      *string `json:"firstName" validate:"omitempty,min=1"`
	LastName       *string `json:"lastName" validate:"omitempty,min=1"`
}
