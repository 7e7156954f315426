package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Store persists raw upload bytes and resolves stored files to fetchable
// URLs. The service layer only depends on this interface so alternative
// backends can be swapped in.
type Store interface {
	Save(r io.Reader, originalName string) (*StoredFile, error)
	FileURL(fileName string) string
	FilePath(fileName string) string
	Remove(fileName string) error
}

// StoredFile describes a successfully persisted upload.
type StoredFile struct {
	FileName string // server-generated unique name
	Path     string // absolute path on disk
	Size     int64  // actual bytes written
}

// LocalStore writes uploads to a directory on local disk and serves them
// under a public URL prefix. The directory is created lazily on first use;
// MkdirAll is idempotent, so concurrent first uses cannot race each other
// into an error.
type LocalStore struct {
	root      string
	urlPrefix string
	initOnce  sync.Once
	initErr   error
}

// NewLocalStore creates a store rooted at dir, serving files under urlPrefix.
func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{
		root:      dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

func (s *LocalStore) ensureRoot() error {
	s.initOnce.Do(func() {
		s.initErr = os.MkdirAll(s.root, 0755)
	})
	return s.initErr
}

// GenerateFileName builds a collision-resistant name from the current time,
// a random token and the original extension. Name uniqueness is the only
// concurrency-safety mechanism for the shared upload directory, so two
// uploads in the same millisecond still get distinct names.
func GenerateFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("images-%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
}

// Save persists the reader under a freshly generated name and reports the
// byte count actually written. Errors are storage failures and fatal to the
// enclosing upload.
func (s *LocalStore) Save(r io.Reader, originalName string) (*StoredFile, error) {
	if err := s.ensureRoot(); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", s.root, err)
	}

	fileName := GenerateFileName(originalName)
	fullPath := filepath.Join(s.root, fileName)

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	bytesWritten, err := io.Copy(file, r)
	if err != nil {
		// Clean up partial file
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	log.Debugf("[Storage] Saved %s (%d bytes)", fileName, bytesWritten)

	return &StoredFile{
		FileName: fileName,
		Path:     fullPath,
		Size:     bytesWritten,
	}, nil
}

// FileURL resolves a stored filename to its public URL.
func (s *LocalStore) FileURL(fileName string) string {
	return s.urlPrefix + "/" + fileName
}

// FilePath resolves a stored filename to its location on disk.
func (s *LocalStore) FilePath(fileName string) string {
	return filepath.Join(s.root, fileName)
}

// Remove deletes a stored file. Used to clean up after a failed image row
// insert so the upload directory does not accumulate orphans.
func (s *LocalStore) Remove(fileName string) error {
	return os.Remove(filepath.Join(s.root, fileName))
}
