package imageprocessor

import (
	"fmt"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
)

// ThumbnailSize is the bounding box width for dashboard thumbnails.
const ThumbnailSize = 320

// ThumbnailPrefix marks generated thumbnail files in the upload directory.
const ThumbnailPrefix = "thumb_"

// GenerateThumbnail renders a small preview next to the stored original so
// report dashboards never have to ship multi-megabyte photos. Thumbnails are
// best-effort: any failure is logged and the original stays authoritative.
func GenerateThumbnail(originalPath string) (string, error) {
	img, err := imaging.Open(originalPath)
	if err != nil {
		return "", fmt.Errorf("error opening image for thumbnail: %w", err)
	}

	thumb := imaging.Resize(img, ThumbnailSize, 0, imaging.Lanczos)

	dir := filepath.Dir(originalPath)
	name := filepath.Base(originalPath)
	thumbPath := filepath.Join(dir, ThumbnailPrefix+name)

	if err := imaging.Save(thumb, thumbPath); err != nil {
		return "", fmt.Errorf("error saving thumbnail: %w", err)
	}

	log.Debugf("[ImageProcessor] Generated thumbnail %s", thumbPath)
	return thumbPath, nil
}
