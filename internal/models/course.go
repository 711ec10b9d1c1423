package models

// Course is a catalog entry optionally taught by a teacher.
type Course struct {
	ID          int64   `db:"id" json:"id"`
	CourseCode  string  `db:"course_code" json:"courseCode"`
	CourseName  string  `db:"course_name" json:"courseName"`
	Description *string `db:"description" json:"description"`
	TeacherID   *int64  `db:"teacher_id" json:"teacherId"`
	Credits     int     `db:"credits" json:"credits"`
	Schedule    *string `db:"schedule" json:"schedule"`
}

// CourseDetail adds the assigned teacher's identity.
type CourseDetail struct {
	Course
	EmployeeID  *string `db:"employee_id" json:"employeeId"`
	TeacherName *string `db:"teacher_name" json:"teacherName"`
}

// CourseRequest creates or replaces a course.
type CourseRequest struct {
	CourseCode  string  `json:"courseCode" validate:"required,max=32"`
	CourseName  string  `json:"courseName" validate:"required"`
	Description *string `json:"description"`
	TeacherID   *int64  `json:"teacherId" validate:"omitempty,gt=0"`
	Credits     *int    `json:"credits" validate:"omitempty,gte=0"`
	Schedule    *string `json:"schedule"`
}
