package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
)

func TestExportGradesCSV(t *testing.T) {
	db := newMemDB()
	e := seedEnrollmentFixture(db)
	g := db.seedGrade(e.ID, 45, 50)
	g.Grade = strPtr("A")
	db.grades[g.ID] = g

	svc := NewExportService(memGrades{db}, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	file, err := svc.Grades(context.Background(), "", models.GradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, "grades-20240301.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	body := string(file.Content)
	assert.True(t, strings.HasPrefix(body, "Student ID,Student,Course Code"))
	assert.Contains(t, body, "S-1")
	assert.Contains(t, body, "CS101")
	assert.Contains(t, body, ",90,A,")
}

func TestExportGradesPDFAndUnknownFormat(t *testing.T) {
	db := newMemDB()
	e := seedEnrollmentFixture(db)
	db.seedGrade(e.ID, 7, 10)
	svc := NewExportService(memGrades{db}, nil, nil, nil)

	file, err := svc.Grades(context.Background(), "pdf", models.GradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))

	_, err = svc.Grades(context.Background(), "xlsx", models.GradeFilter{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportTranscript(t *testing.T) {
	svc := NewExportService(nil, nil, nil, nil)
	student := &models.StudentDetail{Student: models.Student{StudentID: "S-9"}, FirstName: "Sam", LastName: "Lee"}

	file, err := svc.Transcript(student, []models.GradeDetail{{
		Grade:      models.Grade{Assignment: "Final", Score: 9, MaxScore: 10, Percentage: 90, Grade: strPtr("A")},
		CourseCode: "CS101",
		CourseName: "Intro",
	}})
	require.NoError(t, err)
	assert.Equal(t, "transcript-S-9.pdf", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

type stubGradeLister []models.GradeDetail

func (s stubGradeLister) List(context.Context, models.GradeFilter) ([]models.GradeDetail, error) {
	return s, nil
}

type capturingRenderer struct{ last export.Dataset }

func (r *capturingRenderer) Render(data export.Dataset) ([]byte, error) {
	r.last = data
	return []byte("ok"), nil
}

func TestExportRowsCarryLetterGrade(t *testing.T) {
	details := stubGradeLister{
		{
			Grade:       models.Grade{Assignment: "Midterm", Score: 45, MaxScore: 50, Percentage: 90, Grade: strPtr("A-")},
			StudentCode: "S-1",
			StudentName: "Sam Lee",
			CourseCode:  "CS101",
			CourseName:  "Intro",
		},
		{
			Grade:      models.Grade{Assignment: "Quiz", Score: 3, MaxScore: 10, Percentage: 30},
			CourseCode: "CS102",
		},
	}
	csv := &capturingRenderer{}
	pdf := &capturingRenderer{}
	svc := NewExportService(details, csv, pdf, nil)

	_, err := svc.Grades(context.Background(), "csv", models.GradeFilter{})
	require.NoError(t, err)
	require.Len(t, csv.last.Rows, 2)
	assert.Equal(t, "A-", csv.last.Rows[0]["Grade"])
	assert.Equal(t, "Sam Lee", csv.last.Rows[0]["Student"])
	assert.Equal(t, "", csv.last.Rows[1]["Grade"])

	student := &models.StudentDetail{Student: models.Student{StudentID: "S-1"}, FirstName: "Sam", LastName: "Lee"}
	_, err = svc.Transcript(student, details)
	require.NoError(t, err)
	require.Len(t, pdf.last.Rows, 2)
	assert.Equal(t, "A-", pdf.last.Rows[0]["Grade"])
	assert.Equal(t, "45 / 50", pdf.last.Rows[0]["Score"])
}
