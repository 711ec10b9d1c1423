package models

import (
	"math"
	"time"
)

// Grade is one scored assignment attached to an enrollment.
type Grade struct {
	ID           int64     `db:"id" json:"id"`
	EnrollmentID int64     `db:"enrollment_id" json:"enrollmentId"`
	Assignment   string    `db:"assignment" json:"assignment"`
	Score        float64   `db:"score" json:"score"`
	MaxScore     float64   `db:"max_score" json:"maxScore"`
	Grade        *string   `db:"grade" json:"grade"`
	Remarks      *string   `db:"remarks" json:"remarks"`
	DateRecorded time.Time `db:"date_recorded" json:"dateRecorded"`
	Percentage   float64   `db:"-" json:"percentage"`
}

// ComputePercentage fills Percentage from score and max score, rounded to two decimals.
func (g *Grade) ComputePercentage() {
	g.Percentage = Percentage(g.Score, g.MaxScore)
}

// Percentage returns score/maxScore*100 rounded to two decimals, or 0 when maxScore is not positive.
func Percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return math.Round(score/maxScore*10000) / 100
}

// LetterGrade maps a percentage to the A-F scale.
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

// GradeDetail joins the student and course of the grade's enrollment.
type GradeDetail struct {
	Grade
	StudentID   int64  `db:"student_id" json:"studentId"`
	CourseID    int64  `db:"course_id" json:"courseId"`
	StudentCode string `db:"student_code" json:"studentCode"`
	StudentName string `db:"student_name" json:"studentName"`
	CourseCode  string `db:"course_code" json:"courseCode"`
	CourseName  string `db:"course_name" json:"courseName"`
}

// GradeFilter narrows grade listings. Zero values are ignored.
type GradeFilter struct {
	EnrollmentID int64
	StudentID    int64
	CourseID     int64
	TeacherID    int64
}

// GradeRequest creates or replaces a grade. Score and MaxScore are pointers so a
// missing value is distinguishable from zero.
type GradeRequest struct {
	EnrollmentID int64    `json:"enrollmentId" validate:"required,gt=0"`
	Assignment   string   `json:"assignment" validate:"required"`
	Score        *float64 `json:"score" validate:"required,gte=0"`
	MaxScore     *float64 `json:"maxScore" validate:"required,gt=0"`
	Grade        *string  `json:"grade" validate:"omitempty,max=4"`
	Remarks      *string  `json:"remarks"`
}

// UpdateGradeRequest replaces a grade's score data. The enrollment never changes.
type UpdateGradeRequest struct {
	Assignment string   `json:"assignment" validate:"required"`
	Score      *float64 `json:"score" validate:"required,gte=0"`
	MaxScore   *float64 `json:"maxScore" validate:"required,gt=0"`
	Grade      *string  `json:"grade" validate:"omitempty,max=4"`
	Remarks    *string  `json:"remarks"`
}
