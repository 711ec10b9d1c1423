package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
)

var gradeExportHeaders = []string{"Student ID", "Student", "Course Code", "Course", "Assignment", "Score", "Max Score", "Percentage", "Grade", "Date"}

var transcriptHeaders = []string{"Course Code", "Course", "Assignment", "Score", "Percentage", "Grade", "Date"}

type gradeLister interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
}

// ExportFile is a rendered document ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders grade listings as CSV or PDF documents.
type ExportService struct {
	grades    gradeLister
	renderers map[export.Format]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(grades gradeLister, csv, pdf export.Renderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		grades:    grades,
		renderers: map[export.Format]export.Renderer{export.FormatCSV: csv, export.FormatPDF: pdf},
		logger:    logger,
		now:       time.Now,
	}
}

// Grades renders every grade matching filter in the requested format.
func (s *ExportService) Grades(ctx context.Context, rawFormat string, filter models.GradeFilter) (*ExportFile, error) {
	format, ok := export.ParseFormat(rawFormat)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	grades, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "list grades")
	}

	data := export.Dataset{
		Title:    "Grade Report",
		Subtitle: []string{"Generated " + s.now().UTC().Format(time.RFC1123), fmt.Sprintf("Records: %d", len(grades))},
		Headers:  gradeExportHeaders,
		Rows:     make([]map[string]string, 0, len(grades)),
	}
	for _, g := range grades {
		data.Rows = append(data.Rows, map[string]string{
			"Student ID":  g.StudentCode,
			"Student":     g.StudentName,
			"Course Code": g.CourseCode,
			"Course":      g.CourseName,
			"Assignment":  g.Assignment,
			"Score":       formatScore(g.Score),
			"Max Score":   formatScore(g.MaxScore),
			"Percentage":  formatScore(g.Percentage),
			"Grade":       deref(g.Grade.Grade),
			"Date":        g.DateRecorded.Format("2006-01-02"),
		})
	}
	return s.render(format, data, "grades-"+s.now().UTC().Format("20060102"))
}

// Transcript renders one student's grades as a PDF.
func (s *ExportService) Transcript(student *models.StudentDetail, grades []models.GradeDetail) (*ExportFile, error) {
	data := export.Dataset{
		Title: "Academic Transcript",
		Subtitle: []string{
			"Student: " + student.FullName(),
			"Student ID: " + student.StudentID,
			"Issued " + s.now().UTC().Format("2006-01-02"),
		},
		Headers: transcriptHeaders,
		Rows:    make([]map[string]string, 0, len(grades)),
	}
	for _, g := range grades {
		data.Rows = append(data.Rows, map[string]string{
			"Course Code": g.CourseCode,
			"Course":      g.CourseName,
			"Assignment":  g.Assignment,
			"Score":       formatScore(g.Score) + " / " + formatScore(g.MaxScore),
			"Percentage":  formatScore(g.Percentage) + "%",
			"Grade":       deref(g.Grade.Grade),
			"Date":        g.DateRecorded.Format("2006-01-02"),
		})
	}
	return s.render(export.FormatPDF, data, "transcript-"+student.StudentID)
}

func (s *ExportService) render(format export.Format, data export.Dataset, basename string) (*ExportFile, error) {
	content, err := s.renderers[format].Render(data)
	if err != nil {
		return nil, internalError(err, "render export")
	}
	s.logger.Debug("export rendered", zap.String("format", string(format)), zap.Int("rows", len(data.Rows)))
	return &ExportFile{
		Filename:    basename + "." + string(format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
