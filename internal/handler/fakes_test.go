package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := t[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

var testTokens = tokenTable{
	"admin":   {UserID: 1, Username: "admin", Role: models.RoleAdmin},
	"teacher": {UserID: 2, Username: "tina", Role: models.RoleTeacher},
	"student": {UserID: 3, Username: "sam", Role: models.RoleUser},
}

type fakeAuth struct {
	registered *models.RegisterRequest
	meUserID   int64
	changedFor int64
	err        error
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	f.registered = &req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AuthResponse{Token: "tok", User: models.UserInfo{Username: req.Username, Role: models.RoleUser}}, nil
}

func (f *fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AuthResponse{Token: "tok", User: models.UserInfo{Username: req.Username}}, nil
}

func (f *fakeAuth) Me(_ context.Context, userID int64) (*models.UserInfo, error) {
	f.meUserID = userID
	return &models.UserInfo{ID: userID}, f.err
}

func (f *fakeAuth) ChangePassword(_ context.Context, userID int64, _ models.ChangePasswordRequest) error {
	f.changedFor = userID
	return f.err
}

type fakeStudents struct {
	created *models.CreateStudentRequest
	deleted int64
	err     error
}

func (f *fakeStudents) List(context.Context) ([]models.StudentDetail, error) {
	return []models.StudentDetail{}, f.err
}

func (f *fakeStudents) Get(_ context.Context, id int64) (*models.StudentDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	detail := &models.StudentDetail{}
	detail.ID = id
	return detail, nil
}

func (f *fakeStudents) Create(_ context.Context, req models.CreateStudentRequest) (int64, error) {
	f.created = &req
	return 11, f.err
}

func (f *fakeStudents) Update(context.Context, int64, models.UpdateStudentRequest) error {
	return f.err
}

func (f *fakeStudents) Delete(_ context.Context, id int64) error {
	f.deleted = id
	return f.err
}

type fakeTeachers struct{}

func (fakeTeachers) List(context.Context) ([]models.TeacherDetail, error) { return nil, nil }
func (fakeTeachers) Get(context.Context, int64) (*models.TeacherDetail, error) {
	return &models.TeacherDetail{}, nil
}
func (fakeTeachers) Create(context.Context, models.CreateTeacherRequest) (int64, error) {
	return 5, nil
}
func (fakeTeachers) Update(context.Context, int64, models.UpdateTeacherRequest) error { return nil }
func (fakeTeachers) Delete(context.Context, int64) error { return nil }

type fakeCourses struct {
	publicCalls int
}

func (f *fakeCourses) List(context.Context) ([]models.CourseDetail, error) { return nil, nil }
func (f *fakeCourses) ListPublic(context.Context) ([]models.CourseDetail, error) {
	f.publicCalls++
	return []models.CourseDetail{}, nil
}
func (f *fakeCourses) Get(context.Context, int64) (*models.CourseDetail, error) {
	return &models.CourseDetail{}, nil
}
func (f *fakeCourses) Create(context.Context, models.CourseRequest) (int64, error) { return 7, nil }
func (f *fakeCourses) Update(context.Context, int64, models.CourseRequest) error { return nil }
func (f *fakeCourses) Delete(context.Context, int64) error { return nil }

type fakeEnrollments struct {
	filter models.EnrollmentFilter
	err    error
}

func (f *fakeEnrollments) List(_ context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	f.filter = filter
	return []models.EnrollmentDetail{}, f.err
}

func (f *fakeEnrollments) Create(context.Context, models.CreateEnrollmentRequest) (int64, error) {
	return 21, f.err
}

func (f *fakeEnrollments) UpdateStatus(context.Context, int64, models.UpdateEnrollmentRequest) error {
	return f.err
}

func (f *fakeEnrollments) Delete(context.Context, int64) error { return f.err }

type fakeGrades struct {
	filter models.GradeFilter
	format string
}

func (f *fakeGrades) List(_ context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	f.filter = filter
	return []models.GradeDetail{}, nil
}
func (f *fakeGrades) Get(context.Context, int64) (*models.GradeDetail, error) {
	return &models.GradeDetail{}, nil
}
func (f *fakeGrades) Create(context.Context, models.GradeRequest) (*models.Grade, error) {
	return &models.Grade{ID: 31}, nil
}
func (f *fakeGrades) Update(context.Context, int64, models.UpdateGradeRequest) error { return nil }
func (f *fakeGrades) Delete(context.Context, int64) error { return nil }

func (f *fakeGrades) Grades(_ context.Context, format string, filter models.GradeFilter) (*service.ExportFile, error) {
	f.format = format
	f.filter = filter
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return &service.ExportFile{Filename: "grades-20240101." + format, ContentType: "text/csv", Content: []byte("a,b\n")}, nil
}

type fakeAnnouncements struct {
	role     models.UserRole
	audience models.Audience
	authorID int64
}

func (f *fakeAnnouncements) List(_ context.Context, audience models.Audience) ([]models.Announcement, error) {
	f.audience = audience
	return []models.Announcement{}, nil
}
func (f *fakeAnnouncements) ListForRole(_ context.Context, role models.UserRole) ([]models.Announcement, error) {
	f.role = role
	return []models.Announcement{}, nil
}
func (f *fakeAnnouncements) Get(context.Context, int64) (*models.Announcement, error) {
	return &models.Announcement{}, nil
}
func (f *fakeAnnouncements) Create(_ context.Context, authorID int64, _ models.AnnouncementRequest) (int64, error) {
	f.authorID = authorID
	return 41, nil
}
func (f *fakeAnnouncements) Update(context.Context, int64, models.AnnouncementRequest) error {
	return nil
}
func (f *fakeAnnouncements) Delete(context.Context, int64) error { return nil }

type fakeSlides struct {
	req      models.SlideRequest
	image    []byte
	filename string
	hadImage bool
	err      error
}

func (f *fakeSlides) capture(req models.SlideRequest, image *service.SlideImage) {
	f.req = req
	f.hadImage = image != nil
	if image != nil {
		f.filename = image.Filename
		f.image, _ = io.ReadAll(image.Content)
	}
}

func (f *fakeSlides) ListPublic(context.Context) ([]models.Slide, error) {
	return []models.Slide{{ID: 1, IsDefault: true, IsActive: true}}, nil
}
func (f *fakeSlides) ListAll(context.Context) ([]models.Slide, error) { return nil, nil }
func (f *fakeSlides) Create(_ context.Context, req models.SlideRequest, image *service.SlideImage) (*models.Slide, error) {
	f.capture(req, image)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Slide{ID: 9}, nil
}
func (f *fakeSlides) Update(_ context.Context, id int64, req models.SlideRequest, image *service.SlideImage) (*models.Slide, error) {
	f.capture(req, image)
	return &models.Slide{ID: id}, f.err
}
func (f *fakeSlides) Delete(context.Context, int64) error { return f.err }
func (f *fakeSlides) DefaultImage() []byte { return []byte("<svg/>") }

type fakePortal struct {
	userID   int64
	courseID int64
	err      error
}

func (f *fakePortal) seen(userID int64) { f.userID = userID }

func (f *fakePortal) Profile(_ context.Context, userID int64) (*models.Profile, error) {
	f.seen(userID)
	return &models.Profile{}, f.err
}
func (f *fakePortal) MyCourses(_ context.Context, userID int64) ([]models.EnrolledCourse, error) {
	f.seen(userID)
	if f.err != nil {
		return nil, f.err
	}
	return []models.EnrolledCourse{}, nil
}
func (f *fakePortal) MyGrades(_ context.Context, userID int64) ([]models.GradeDetail, error) {
	f.seen(userID)
	return []models.GradeDetail{}, f.err
}
func (f *fakePortal) MyCourseDetail(_ context.Context, userID, courseID int64) (*models.CourseEnrollmentView, error) {
	f.seen(userID)
	f.courseID = courseID
	return &models.CourseEnrollmentView{}, f.err
}
func (f *fakePortal) Transcript(_ context.Context, userID int64) (*service.ExportFile, error) {
	f.seen(userID)
	return &service.ExportFile{Filename: "transcript-S100.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}, f.err
}
func (f *fakePortal) TeacherDashboard(_ context.Context, userID int64) (*models.TeacherDashboard, bool, error) {
	f.seen(userID)
	return &models.TeacherDashboard{Courses: 2}, false, f.err
}
func (f *fakePortal) TeacherProfile(_ context.Context, userID int64) (*models.TeacherDetail, error) {
	f.seen(userID)
	return &models.TeacherDetail{}, f.err
}
func (f *fakePortal) UpdateTeacherProfile(_ context.Context, userID int64, _ models.TeacherProfileRequest) error {
	f.seen(userID)
	return f.err
}
func (f *fakePortal) TeacherCourses(_ context.Context, userID int64) ([]models.CourseDetail, error) {
	f.seen(userID)
	return []models.CourseDetail{}, f.err
}
func (f *fakePortal) TeacherCourseDetail(_ context.Context, userID, courseID int64) (*models.TeacherCourseView, error) {
	f.seen(userID)
	f.courseID = courseID
	return &models.TeacherCourseView{}, f.err
}
func (f *fakePortal) TeacherStudents(_ context.Context, userID, courseID int64) ([]models.EnrolledStudent, error) {
	f.seen(userID)
	f.courseID = courseID
	return []models.EnrolledStudent{}, f.err
}
func (f *fakePortal) TeacherStudent(_ context.Context, userID, _ int64) (*models.TeacherStudentView, error) {
	f.seen(userID)
	return &models.TeacherStudentView{}, f.err
}
func (f *fakePortal) RecordGrade(_ context.Context, userID int64, _ models.GradeRequest) (*models.Grade, error) {
	f.seen(userID)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Grade{ID: 51}, nil
}

type fakeAudit struct {
	entries []*models.AuditLog
}

func (f *fakeAudit) Create(_ context.Context, entry *models.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type testApp struct {
	router        *gin.Engine
	auth          *fakeAuth
	students      *fakeStudents
	courses       *fakeCourses
	enrollments   *fakeEnrollments
	grades        *fakeGrades
	announcements *fakeAnnouncements
	slides        *fakeSlides
	portal        *fakePortal
	audit         *fakeAudit
}

func newTestApp(slideDir string) *testApp {
	gin.SetMode(gin.TestMode)
	app := &testApp{
		router:        gin.New(),
		auth:          &fakeAuth{},
		students:      &fakeStudents{},
		courses:       &fakeCourses{},
		enrollments:   &fakeEnrollments{},
		grades:        &fakeGrades{},
		announcements: &fakeAnnouncements{},
		slides:        &fakeSlides{},
		portal:        &fakePortal{},
		audit:         &fakeAudit{},
	}
	handlers := Handlers{
		Auth:          NewAuthHandler(app.auth),
		Dashboard:     NewDashboardHandler(&fakeDashboardSrv{adminResp: &models.AdminDashboard{}}),
		Students:      NewStudentHandler(app.students),
		Teachers:      NewTeacherHandler(fakeTeachers{}),
		Courses:       NewCourseHandler(app.courses),
		Enrollments:   NewEnrollmentHandler(app.enrollments),
		Grades:        NewGradeHandler(app.grades, app.grades),
		Announcements: NewAnnouncementHandler(app.announcements),
		Slides:        NewSlideHandler(app.slides),
		Portal:        NewPortalHandler(app.portal),
		Metrics:       NewMetricsHandler(nil, nil),
	}
	RegisterRoutes(app.router, handlers, testTokens, app.audit, nil, RouteConfig{APIPrefix: "/api", SlideImageDir: slideDir})
	return app
}

func (a *testApp) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}
