package models

import "time"

// EnrollmentStatus tracks whether a student is still taking a course.
type EnrollmentStatus string

const (
	EnrollmentActive   EnrollmentStatus = "active"
	EnrollmentInactive EnrollmentStatus = "inactive"
)

// Valid reports whether the status is known.
func (s EnrollmentStatus) Valid() bool {
	return s == EnrollmentActive || s == EnrollmentInactive
}

// Enrollment links one student to one course.
type Enrollment struct {
	ID             int64            `db:"id" json:"id"`
	StudentID      int64            `db:"student_id" json:"studentId"`
	CourseID       int64            `db:"course_id" json:"courseId"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollmentDate"`
	Status         EnrollmentStatus `db:"status" json:"status"`
}

// EnrollmentDetail joins the student and course labels.
type EnrollmentDetail struct {
	Enrollment
	StudentCode string `db:"student_code" json:"studentCode"`
	StudentName string `db:"student_name" json:"studentName"`
	CourseCode  string `db:"course_code" json:"courseCode"`
	CourseName  string `db:"course_name" json:"courseName"`
}

// EnrolledCourse is a course seen from an enrolled student's perspective.
type EnrolledCourse struct {
	CourseDetail
	EnrollmentID     int64            `db:"enrollment_id" json:"enrollmentId"`
	EnrollmentDate   time.Time        `db:"enrollment_date" json:"enrollmentDate"`
	EnrollmentStatus EnrollmentStatus `db:"enrollment_status" json:"enrollmentStatus"`
}

// EnrollmentFilter narrows enrollment listings. Zero values are ignored.
type EnrollmentFilter struct {
	StudentID int64
	CourseID  int64
	Status    EnrollmentStatus
}

// CreateEnrollmentRequest enrolls a student into a course.
type CreateEnrollmentRequest struct {
	StudentID int64            `json:"studentId" validate:"required,gt=0"`
	CourseID  int64            `json:"courseId" validate:"required,gt=0"`
	Status    EnrollmentStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateEnrollmentRequest changes an enrollment's status.
type UpdateEnrollmentRequest struct {
	Status EnrollmentStatus `json:"status" validate:"required,oneof=active inactive"`
}
