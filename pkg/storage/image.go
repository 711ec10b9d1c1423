package storage

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned when a file is not an accepted image type.
var ErrUnsupportedImage = errors.New("only image files are allowed (jpeg, jpg, png, gif, webp)")

var imageExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// DetectImage checks both the file extension and the sniffed content of head and
// returns the normalised extension. The two must describe the same image type.
func DetectImage(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	expected, ok := imageExtensions[ext]
	if !ok {
		return "", ErrUnsupportedImage
	}
	detected := mimetype.Detect(head)
	if !detected.Is(expected) {
		return "", ErrUnsupportedImage
	}
	return ext, nil
}
