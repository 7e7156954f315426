package reports

import (
	"io"
	"time"

	"github.com/TobiasKrause/DamageDesk/app/models"
)

// IncomingFile is one upload that already passed the transport boundary:
// count/size limits checked and mimetype sniffed from the actual bytes.
type IncomingFile struct {
	OriginalName string
	Mimetype     string
	Open         func() (io.ReadCloser, error)
}

// SubmissionResult is the outcome of one report submission: the created
// report plus the image rows that were durably persisted. With the
// best-effort per-file policy, Images may be shorter than the accepted
// file list.
type SubmissionResult struct {
	Report *models.DamageReport `json:"report"`
	Images []models.DamageImage `json:"images"`
}

// Cache is the optional read-side cache for single-report lookups. A nil
// cache (and any cache error) degrades to plain database reads.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
}
