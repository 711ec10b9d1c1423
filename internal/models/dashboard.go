package models

// AdminDashboard aggregates registry counts.
type AdminDashboard struct {
	Students    int `db:"students" json:"students"`
	Teachers    int `db:"teachers" json:"teachers"`
	Courses     int `db:"courses" json:"courses"`
	Enrollments int `db:"enrollments" json:"enrollments"`
}

// TeacherDashboard summarises a teacher's workload.
type TeacherDashboard struct {
	Courses        int `db:"courses" json:"courses"`
	Students       int `db:"students" json:"students"`
	ActiveStudents int `db:"active_students" json:"activeStudents"`
	GradesRecorded int `db:"grades_recorded" json:"gradesRecorded"`
}

// CourseEnrollmentView is a student's view of one enrolled course.
type CourseEnrollmentView struct {
	Course     CourseDetail `json:"course"`
	Enrollment Enrollment   `json:"enrollment"`
	Grades     []Grade      `json:"grades"`
}

// TeacherCourseView is a teacher's view of one course they teach.
type TeacherCourseView struct {
	Course   CourseDetail      `json:"course"`
	Students []EnrolledStudent `json:"students"`
}

// EnrolledStudent is a student seen through an enrollment in a teacher's course.
type EnrolledStudent struct {
	StudentDetail
	EnrollmentID     int64            `db:"enrollment_id" json:"enrollmentId"`
	CourseID         int64            `db:"course_id" json:"courseId"`
	CourseCode       string           `db:"course_code" json:"courseCode"`
	CourseName       string           `db:"course_name" json:"courseName"`
	EnrollmentStatus EnrollmentStatus `db:"enrollment_status" json:"enrollmentStatus"`
}

// TeacherStudentView is a teacher's view of one student and their grades in the teacher's courses.
type TeacherStudentView struct {
	Student StudentDetail     `json:"student"`
	Courses []EnrolledStudent `json:"enrollments"`
	Grades  []GradeDetail     `json:"grades"`
}

// TeacherProfileRequest lets a teacher edit their own record.
type TeacherProfileRequest = UpdateTeacherRequest
