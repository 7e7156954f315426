package imageprocessor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"github.com/TobiasKrause/DamageDesk/app/models"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// GPSPosition holds decimal-degree coordinates extracted from EXIF GPS tags.
type GPSPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ImageMetadata is the best-effort result of EXIF extraction. Every field
// may be absent; a zero value means the image carried no usable tags.
type ImageMetadata struct {
	Exif      map[string]string `json:"exif,omitempty"`
	GPS       *GPSPosition      `json:"gps,omitempty"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
}

// IsEmpty reports whether extraction produced nothing at all.
func (m ImageMetadata) IsEmpty() bool {
	return len(m.Exif) == 0 && m.GPS == nil && m.Timestamp == nil
}

// ToJSON renders the metadata as a models.JSON blob for the image row.
// Returns nil when there is nothing to store.
func (m ImageMetadata) ToJSON() *models.JSON {
	if m.IsEmpty() {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		log.Error(fmt.Sprintf("Error marshaling metadata to JSON: %v", err))
		return nil
	}
	doc := models.JSON(raw)
	return &doc
}

// ExtractMetadata reads EXIF metadata from an image file. Extraction must
// never fail the enclosing upload: corrupt or missing EXIF data yields an
// empty result and is only logged.
func ExtractMetadata(filePath string) ImageMetadata {
	meta := ImageMetadata{}

	f, err := os.Open(filePath)
	if err != nil {
		log.Warn(fmt.Sprintf("Cannot open image %s for metadata extraction: %v", filePath, err))
		return meta
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// Some images don't have EXIF data, this is not a critical error
		log.Info(fmt.Sprintf("No EXIF data found for image %s: %v", filePath, err))
		return meta
	}

	// Walk through common EXIF tags to avoid type issues
	allTags := make(map[string]string)
	for _, tag := range []exif.FieldName{
		exif.Model, exif.Make, exif.Software, exif.Artist,
		exif.Copyright, exif.ExposureTime, exif.FNumber, exif.ISOSpeedRatings,
		exif.FocalLength, exif.ExposureProgram, exif.MeteringMode,
		exif.Flash, exif.FocalLengthIn35mmFilm, exif.WhiteBalance,
		exif.SceneCaptureType, exif.GPSLatitude, exif.GPSLongitude,
		exif.GPSAltitude, exif.DateTime, exif.DateTimeOriginal,
		exif.DateTimeDigitized, exif.Orientation, exif.ExposureMode,
	} {
		if tagVal, err := x.Get(tag); err == nil {
			raw := tagVal.String()
			clean := strings.Trim(raw, `"`)
			allTags[string(tag)] = clean
		}
	}
	if len(allTags) > 0 {
		meta.Exif = allTags
	}

	// Capture timestamp: taken from EXIF DateTime, never defaulted to now
	if dt, err := x.DateTime(); err == nil {
		meta.Timestamp = &dt
	}

	// GPS coordinates as decimal latitude/longitude
	if lat, long, err := x.LatLong(); err == nil {
		meta.GPS = &GPSPosition{Latitude: lat, Longitude: long}
	}

	return meta
}
