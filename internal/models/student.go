package models

// Student is the extension record of a user with role user.
type Student struct {
	ID          int64   `db:"id" json:"id"`
	UserID      int64   `db:"user_id" json:"userId"`
	StudentID   string  `db:"student_id" json:"studentId"`
	Grade       *string `db:"grade" json:"grade"`
	Section     *string `db:"section" json:"section"`
	ParentName  *string `db:"parent_name" json:"parentName"`
	ParentEmail *string `db:"parent_email" json:"parentEmail"`
	ParentPhone *string `db:"parent_phone" json:"parentPhone"`
}

// StudentDetail joins a student with its owning user.
type StudentDetail struct {
	Student
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
}

// CreateStudentRequest creates the user and student rows together.
type CreateStudentRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	StudentID   string  `json:"studentId" validate:"required"`
	Grade       *string `json:"grade"`
	Section     *string `json:"section"`
	ParentName  *string `json:"parentName"`
	ParentEmail *string `json:"parentEmail" validate:"omitempty,email"`
	ParentPhone *string `json:"parentPhone"`
}

// UpdateStudentRequest replaces the student's editable fields. Name fields are optional.
type UpdateStudentRequest struct {
	Grade       *string `json:"grade"`
	Section     *string `json:"section"`
	ParentName  *string `json:"parentName"`
	ParentEmail *string `json:"parentEmail" validate:"omitempty,email"`
	ParentPhone *string `json:"parentPhone"`
	FirstName   *string `json:"firstName" validate:"omitempty,min=1"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1"`
}

// FullName joins the owning user's first and last name.
func (s StudentDetail) FullName() string {
	return User{FirstName: s.FirstName, LastName: s.LastName}.FullName()
}
