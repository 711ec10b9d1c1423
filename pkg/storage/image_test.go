package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	pngHead  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHead = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	gifHead  = []byte("GIF89a\x01\x00\x01\x00")
)

func TestDetectImageAccepts(t *testing.T) {
	ext, err := DetectImage("Photo.PNG", pngHead)
	assert.NoError(t, err)
	assert.Equal(t, ".png", ext)

	ext, err = DetectImage("a.jpg", jpegHead)
	assert.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	_, err = DetectImage("a.gif", gifHead)
	assert.NoError(t, err)
}

func TestDetectImageRejects(t *testing.T) {
	_, err := DetectImage("notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = DetectImage("fake.png", []byte("<html></html>"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = DetectImage("mismatch.gif", pngHead)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
