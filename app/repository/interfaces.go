package repository

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/TobiasKrause/DamageDesk/app/models"
)

// ErrStatusConflict reports that a conditional status write matched no row
// because a concurrent review changed the status first.
var ErrStatusConflict = errors.New("report status changed concurrently")

// ReportRepository defines the interface for damage-report database operations
type ReportRepository interface {
	Create(report *models.DamageReport) error
	GetByID(id uint) (*models.DamageReport, error)
	List(status string) ([]models.DamageReport, error)
	UpdateStatus(id uint, status string, finalConfidence *decimal.Decimal) error
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// ImageRepository defines the interface for damage-image database operations
type ImageRepository interface {
	Create(image *models.DamageImage) error
	GetByID(id uint) (*models.DamageImage, error)
	GetByReportID(reportID uint) ([]models.DamageImage, error)
	GetByFileName(fileName string) (*models.DamageImage, error)
	Count() (int64, error)
}

// AnalysisResultRepository defines the interface for analysis-result database operations
type AnalysisResultRepository interface {
	Create(result *models.AnalysisResult) error
	GetByReportID(reportID uint) ([]models.AnalysisResult, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Report   ReportRepository
	Image    ImageRepository
	Analysis AnalysisResultRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Report:   NewReportRepository(db),
		Image:    NewImageRepository(db),
		Analysis: NewAnalysisResultRepository(db),
	}
}
