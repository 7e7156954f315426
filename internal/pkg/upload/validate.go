package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// Upload policy enforced at the transport boundary, before any file reaches
// the ingestion service.
const (
	MaxFiles    = 5
	MaxFileSize = 10 * 1024 * 1024 // 10 MiB
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var (
	ErrTooManyFiles    = errors.New("too many files: at most 5 images per report")
	ErrFileTooLarge    = errors.New("file exceeds the 10 MiB upload limit")
	ErrUnsupportedType = errors.New("only JPEG, PNG and GIF images are supported")
)

// ValidateImageBySniff checks the provided filename (extension) and the
// first bytes (head) against the accepted image types. The detected mime is
// what gets persisted; client-declared content types are ignored.
func ValidateImageBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	detected := http.DetectContentType(head)

	// Block obvious scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrUnsupportedType
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", ErrUnsupportedType
	}

	if allowedMime[detected] {
		return detected, nil
	}

	return "", ErrUnsupportedType
}
