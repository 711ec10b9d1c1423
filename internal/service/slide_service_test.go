package service

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/storage"
)

const mib = 1024 * 1024

func pngImage(size int) []byte {
	head := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	return append(head, make([]byte, size-len(head))...)
}

type slideFixture struct {
	db      *memDB
	store   *storage.LocalStorage
	metrics *MetricsService
	svc     *SlideService
}

func newSlideFixture(t *testing.T) *slideFixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	db := newMemDB()
	metrics := NewMetricsService()
	svc := NewSlideService(memSlides{db}, store, &fakeTx{db: db}, metrics, nil, nil, SlideConfig{MaxBytes: 5 * mib})
	return &slideFixture{db: db, store: store, metrics: metrics, svc: svc}
}

func (f *slideFixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.store.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f *slideFixture) seedDefault() models.Slide {
	title := "Welcome to Our School"
	p := models.DefaultSlidePath
	s := models.Slide{ID: f.db.next(), Title: &title, ImageURL: defaultSlideImageURL, ImagePath: &p, IsActive: false, IsDefault: true}
	f.db.slides[s.ID] = s
	return s
}

func (f *slideFixture) scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestSlideCreateStoresImage(t *testing.T) {
	f := newSlideFixture(t)

	slide, err := f.svc.Create(context.Background(), models.SlideRequest{Title: strPtr("Open day")}, &SlideImage{
		Filename: "banner.png",
		Content:  bytes.NewReader(pngImage(2 * mib)),
	})
	require.NoError(t, err)

	assert.False(t, slide.IsDefault)
	assert.True(t, slide.IsActive)
	name := path.Base(*slide.ImagePath)
	assert.True(t, strings.HasPrefix(name, "slide-"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Equal(t, "/api/slides/image/"+name, slide.ImageURL)
	assert.Equal(t, "uploads/slides/"+name, *slide.ImagePath)
	assert.FileExists(t, filepath.Join(f.store.Dir(), name))

	info, err := os.Stat(f.store.Dir() + "/" + name)
	require.NoError(t, err)
	assert.Equal(t, int64(2*mib), info.Size())
	assert.Contains(t, f.scrape(t), `slide_uploads_total{outcome="accepted"} 1`)
}

func TestSlideCreateRejectsOversizedImage(t *testing.T) {
	f := newSlideFixture(t)

	_, err := f.svc.Create(context.Background(), models.SlideRequest{}, &SlideImage{
		Filename: "huge.png",
		Content:  bytes.NewReader(pngImage(6 * mib)),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpload.Code, appErr.Code)
	assert.Equal(t, "File size too large. Maximum size is 5MB.", appErr.Message)
	assert.Empty(t, f.db.slides)
	assert.Empty(t, f.files(t))
	assert.Contains(t, f.scrape(t), `slide_uploads_total{outcome="too_large"} 1`)
}

func TestSlideCreateRejectsNonImagesAndMissingFile(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, models.SlideRequest{}, &SlideImage{Filename: "notes.png", Content: strings.NewReader("plain text")})
	assert.ErrorIs(t, err, appErrors.ErrUpload)

	_, err = f.svc.Create(ctx, models.SlideRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, "Image file is required", appErrors.FromError(err).Message)
	assert.Empty(t, f.files(t))
}

func TestSlideCreateRemovesFileWhenInsertFails(t *testing.T) {
	f := newSlideFixture(t)
	f.db.fail["slides.Create"] = errBoom

	_, err := f.svc.Create(context.Background(), models.SlideRequest{}, &SlideImage{Filename: "a.png", Content: bytes.NewReader(pngImage(1024))})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.Empty(t, f.files(t))
}

func TestSlideUpdateReplacesImageAfterCommit(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, models.SlideRequest{OrderIndex: intPtr(2)}, &SlideImage{Filename: "a.png", Content: bytes.NewReader(pngImage(1024))})
	require.NoError(t, err)
	oldName := path.Base(*created.ImagePath)

	updated, err := f.svc.Update(ctx, created.ID, models.SlideRequest{Title: strPtr("New")}, &SlideImage{Filename: "b.png", Content: bytes.NewReader(pngImage(2048))})
	require.NoError(t, err)
	newName := path.Base(*updated.ImagePath)

	assert.NotEqual(t, oldName, newName)
	assert.NoFileExists(t, filepath.Join(f.store.Dir(), oldName))
	assert.FileExists(t, filepath.Join(f.store.Dir(), newName))
	assert.Equal(t, 2, f.db.slides[created.ID].OrderIndex)
	assert.Equal(t, "New", *f.db.slides[created.ID].Title)
}

func TestSlideUpdateFailureKeepsOldImage(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, models.SlideRequest{}, &SlideImage{Filename: "a.png", Content: bytes.NewReader(pngImage(1024))})
	require.NoError(t, err)
	oldName := path.Base(*created.ImagePath)

	f.db.fail["slides.Update"] = errBoom
	_, err = f.svc.Update(ctx, created.ID, models.SlideRequest{}, &SlideImage{Filename: "b.png", Content: bytes.NewReader(pngImage(1024))})
	require.Error(t, err)

	assert.Equal(t, []string{oldName}, f.files(t))
}

func TestSlideUpdateDefaultKeepsFlag(t *testing.T) {
	f := newSlideFixture(t)
	def := f.seedDefault()

	updated, err := f.svc.Update(context.Background(), def.ID, models.SlideRequest{Title: strPtr("Hello")}, &SlideImage{Filename: "a.png", Content: bytes.NewReader(pngImage(1024))})
	require.NoError(t, err)
	assert.True(t, f.db.slides[def.ID].IsDefault)
	assert.FileExists(t, filepath.Join(f.store.Dir(), path.Base(*updated.ImagePath)))

	_, err = f.svc.Update(context.Background(), 999, models.SlideRequest{}, nil)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSlideDelete(t *testing.T) {
	f := newSlideFixture(t)
	def := f.seedDefault()
	ctx := context.Background()

	err := f.svc.Delete(ctx, def.ID)
	require.Error(t, err)
	assert.Equal(t, "Cannot delete default slide", appErrors.FromError(err).Message)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Len(t, f.db.slides, 1)

	created, err := f.svc.Create(ctx, models.SlideRequest{}, &SlideImage{Filename: "a.gif", Content: strings.NewReader("GIF89a\x01\x00\x01\x00")})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.Empty(t, f.files(t))
	assert.Len(t, f.db.slides, 1)

	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), appErrors.ErrNotFound)
}

func TestSlideListPublicAlwaysIncludesDefault(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()

	empty, err := f.svc.ListPublic(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	def := f.seedDefault()
	only, err := f.svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, def.ID, only[0].ID)
	assert.True(t, only[0].IsActive)

	_, err = f.svc.Create(ctx, models.SlideRequest{}, &SlideImage{Filename: "a.png", Content: bytes.NewReader(pngImage(1024))})
	require.NoError(t, err)
	withOthers, err := f.svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, withOthers, 2)
	assert.True(t, withOthers[0].IsDefault)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSlideListPublicInjectsInactiveDefaultFirst(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	def := f.seedDefault()
	require.False(t, f.db.slides[def.ID].IsActive)

	first, err := f.svc.Create(ctx, models.SlideRequest{Title: strPtr("Sports day")}, &SlideImage{Filename: "a.png", Content: bytes.NewReader(pngImage(1024))})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, models.SlideRequest{Title: strPtr("Science fair")}, &SlideImage{Filename: "b.png", Content: bytes.NewReader(pngImage(1024))})
	require.NoError(t, err)

	slides, err := f.svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, slides, 3)
	assert.Equal(t, def.ID, slides[0].ID)
	assert.True(t, slides[0].IsDefault)
	assert.True(t, slides[0].IsActive)
	assert.ElementsMatch(t, []int64{first.ID, second.ID}, []int64{slides[1].ID, slides[2].ID})
	assert.False(t, f.db.slides[def.ID].IsActive)
}

func TestSlideDefaultImageIsSVG(t *testing.T) {
	f := newSlideFixture(t)
	body := string(f.svc.DefaultImage())
	assert.True(t, strings.HasPrefix(body, "<svg"))
	assert.Contains(t, body, "Welcome to Our School")
}
