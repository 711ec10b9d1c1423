package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

func slideForm(t *testing.T, method, path string, fields map[string]string, filename string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile(slideImageField, filename)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSlideCreateMultipart(t *testing.T) {
	app := newTestApp("")

	req := slideForm(t, http.MethodPost, "/api/slides", map[string]string{
		"title":      "Sports day",
		"orderIndex": "2",
		"isActive":   "false",
	}, "banner.png", []byte("png-bytes"))
	rec := app.send(req, "admin")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, app.slides.hadImage)
	assert.Equal(t, "banner.png", app.slides.filename)
	assert.Equal(t, []byte("png-bytes"), app.slides.image)
	require.NotNil(t, app.slides.req.Title)
	assert.Equal(t, "Sports day", *app.slides.req.Title)
	require.NotNil(t, app.slides.req.OrderIndex)
	assert.Equal(t, 2, *app.slides.req.OrderIndex)
	require.NotNil(t, app.slides.req.IsActive)
	assert.False(t, *app.slides.req.IsActive)
	assert.Nil(t, app.slides.req.Description)
}

func TestSlideCreateWithoutImageReachesService(t *testing.T) {
	app := newTestApp("")
	app.slides.err = appErrors.Clone(appErrors.ErrUpload, "Image file is required")

	req := slideForm(t, http.MethodPost, "/api/slides", map[string]string{"title": "x"}, "", nil)
	rec := app.send(req, "admin")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, app.slides.hadImage)
	assert.Contains(t, rec.Body.String(), "Image file is required")
}

func TestSlideUpdateKeepsOmittedFields(t *testing.T) {
	app := newTestApp("")

	req := slideForm(t, http.MethodPut, "/api/slides/5", map[string]string{"description": "new"}, "", nil)
	rec := app.send(req, "admin")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, app.slides.req.Title)
	assert.Nil(t, app.slides.req.IsActive)
	require.NotNil(t, app.slides.req.Description)
	assert.Equal(t, "new", *app.slides.req.Description)
}

func TestSlideDeleteDefaultRejected(t *testing.T) {
	app := newTestApp("")
	app.slides.err = appErrors.Clone(appErrors.ErrValidation, "Cannot delete default slide")

	rec := app.do(http.MethodDelete, "/api/slides/1", "admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlideWritesRequireAdmin(t *testing.T) {
	app := newTestApp("")

	req := slideForm(t, http.MethodPost, "/api/slides", nil, "a.png", []byte("x"))
	assert.Equal(t, http.StatusUnauthorized, app.send(req, "").Code)

	req = slideForm(t, http.MethodPost, "/api/slides", nil, "a.png", []byte("x"))
	assert.Equal(t, http.StatusForbidden, app.send(req, "teacher").Code)
	assert.False(t, app.slides.hadImage)
}

func TestSlideDefaultImage(t *testing.T) {
	app := newTestApp("")

	rec := app.do(http.MethodGet, "/api/slides/default-image", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<svg/>", rec.Body.String())
}

func TestSlideImagesServedFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slide-abc.png"), []byte("stored"), 0o644))
	app := newTestApp(dir)

	rec := app.do(http.MethodGet, "/api/slides/image/slide-abc.png", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stored", rec.Body.String())

	rec = app.do(http.MethodGet, "/api/slides/image/missing.png", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
