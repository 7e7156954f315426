package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/TobiasKrause/DamageDesk/app/models"
	"github.com/TobiasKrause/DamageDesk/app/repository"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/imageprocessor"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/storage"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/usercontext"
)

const reportCacheTTL = 30 * time.Second

// Service orchestrates damage-report ingestion and the read/review side.
// Repositories and the blob store are injected; the cache is optional.
type Service struct {
	repos *repository.Repositories
	store storage.Store
	cache Cache
}

// NewService creates a reports service from injected collaborators.
func NewService(repos *repository.Repositories, store storage.Store) *Service {
	return &Service{repos: repos, store: store}
}

// NewServiceFromDB creates a reports service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, store storage.Store) *Service {
	return NewService(repository.NewRepositories(db), store)
}

// WithCache attaches a read-side cache for single-report lookups.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// SubmitReport creates the report row first, then ingests each accepted
// file: store bytes, extract metadata (best-effort), persist the image row.
// One file failing does not abort the submission; the failure is logged and
// the remaining files continue.
func (s *Service) SubmitReport(creator usercontext.UserContext, itemSKU string, files []IncomingFile) (*SubmissionResult, error) {
	itemSKU = strings.TrimSpace(itemSKU)
	if itemSKU == "" {
		return nil, fmt.Errorf("%w: item_sku is required", ErrValidation)
	}

	report := &models.DamageReport{
		ItemSKU:        itemSKU,
		CreatedByID:    creator.UserID,
		CreatedByEmail: creator.Email,
		Status:         models.StatusPending,
	}
	if creator.Name != "" {
		name := creator.Name
		report.CreatedByName = &name
	}

	// The owning report row must exist before any file is processed.
	if err := s.repos.Report.Create(report); err != nil {
		if isValidatorError(err) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	images := make([]models.DamageImage, 0, len(files))
	for _, file := range files {
		image, err := s.ingestFile(report.ID, file)
		if err != nil {
			log.Errorf("[Reports] Skipping file %s for report %d: %v", file.OriginalName, report.ID, err)
			continue
		}
		images = append(images, *image)
	}

	report.Images = images
	return &SubmissionResult{Report: report, Images: images}, nil
}

// ingestFile stores one file, extracts its metadata and persists the row.
func (s *Service) ingestFile(reportID uint, file IncomingFile) (*models.DamageImage, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	stored, err := s.store.Save(src, file.OriginalName)
	if err != nil {
		return nil, fmt.Errorf("storage failure: %w", err)
	}

	// Metadata extraction never aborts ingestion; a failed parse yields an
	// empty blob and is logged inside the extractor.
	meta := imageprocessor.ExtractMetadata(stored.Path)

	image := &models.DamageImage{
		ReportID:     reportID,
		ImageURL:     s.store.FileURL(stored.FileName),
		FileName:     stored.FileName,
		OriginalName: file.OriginalName,
		Size:         stored.Size,
		Mimetype:     file.Mimetype,
		Metadata:     meta.ToJSON(),
	}
	if err := s.repos.Image.Create(image); err != nil {
		// Remove the stored file so a failed insert leaves no orphan behind.
		if rmErr := s.store.Remove(stored.FileName); rmErr != nil {
			log.Warnf("[Reports] Failed to clean up stored file %s: %v", stored.FileName, rmErr)
		}
		return nil, fmt.Errorf("failed to persist image row: %w", err)
	}

	if _, err := imageprocessor.GenerateThumbnail(stored.Path); err != nil {
		log.Infof("[Reports] No thumbnail for %s: %v", stored.FileName, err)
	}

	return image, nil
}

// GetReport returns a report with its images and analysis results.
func (s *Service) GetReport(id uint) (*models.DamageReport, error) {
	if report, ok := s.cachedReport(id); ok {
		return report, nil
	}

	report, err := s.repos.Report.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.cacheReport(report)
	return report, nil
}

// ListReports returns reports newest-first, optionally filtered by status.
// An unknown status value is a client error, not silently ignored.
func (s *Service) ListReports(status string) ([]models.DamageReport, error) {
	if status != "" && !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repos.Report.List(status)
}

// ReviewReport applies a review decision. PENDING is the only state reviews
// can move away from; reapplying the same decision is a no-op so retried
// reviews stay safe.
func (s *Service) ReviewReport(id uint, status string, finalConfidence *decimal.Decimal) (*models.DamageReport, error) {
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if err := validateConfidence(finalConfidence); err != nil {
		return nil, err
	}

	report, err := s.repos.Report.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if report.Status == status {
		return report, nil
	}
	if !models.CanTransition(report.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, report.Status, status)
	}

	if err := s.repos.Report.UpdateStatus(id, status, finalConfidence); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: report was reviewed concurrently", ErrInvalidStatus)
		}
		return nil, err
	}
	s.invalidateReport(id)

	return s.repos.Report.GetByID(id)
}

// AttachAnalysis appends an external classifier verdict to a report.
func (s *Service) AttachAnalysis(id uint, result string, confidence decimal.Decimal, rawResponse json.RawMessage) (*models.AnalysisResult, error) {
	if strings.TrimSpace(result) == "" {
		return nil, fmt.Errorf("%w: result is required", ErrValidation)
	}
	if err := validateConfidence(&confidence); err != nil {
		return nil, err
	}

	analysis := &models.AnalysisResult{
		ReportID:   id,
		Result:     result,
		Confidence: confidence,
	}
	if len(rawResponse) > 0 {
		raw := models.JSON(rawResponse)
		analysis.RawResponse = &raw
	}

	if err := s.repos.Analysis.Create(analysis); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidateReport(id)

	return analysis, nil
}

func validateConfidence(confidence *decimal.Decimal) error {
	if confidence == nil {
		return nil
	}
	if confidence.IsNegative() || confidence.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: confidence must be between 0.00 and 100.00", ErrValidation)
	}
	return nil
}

func isValidatorError(err error) bool {
	var vErrs validator.ValidationErrors
	return errors.As(err, &vErrs)
}

func reportCacheKey(id uint) string {
	return fmt.Sprintf("report:%d", id)
}

func (s *Service) cachedReport(id uint) (*models.DamageReport, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(reportCacheKey(id))
	if err != nil || raw == "" {
		return nil, false
	}
	var report models.DamageReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (s *Service) cacheReport(report *models.DamageReport) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(reportCacheKey(report.ID), string(raw), reportCacheTTL); err != nil {
		log.Debugf("[Reports] Cache write failed for report %d: %v", report.ID, err)
	}
}

func (s *Service) invalidateReport(id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(reportCacheKey(id)); err != nil {
		log.Debugf("[Reports] Cache invalidation failed for report %d: %v", id, err)
	}
}
