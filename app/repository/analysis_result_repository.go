package repository

import (
	"gorm.io/gorm"

	"github.com/TobiasKrause/DamageDesk/app/models"
)

// analysisResultRepository implements the AnalysisResultRepository interface
type analysisResultRepository struct {
	db *gorm.DB
}

// NewAnalysisResultRepository creates a new analysis-result repository instance
func NewAnalysisResultRepository(db *gorm.DB) AnalysisResultRepository {
	return &analysisResultRepository{db: db}
}

// Create inserts a classifier verdict. Same FK rule as images: the owning
// report must exist.
func (r *analysisResultRepository) Create(result *models.AnalysisResult) error {
	var count int64
	if err := r.db.Model(&models.DamageReport{}).Where("id = ?", result.ReportID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.db.Create(result).Error
}

// GetByReportID retrieves all analysis results attached to a report
func (r *analysisResultRepository) GetByReportID(reportID uint) ([]models.AnalysisResult, error) {
	var results []models.AnalysisResult
	err := r.db.Where("report_id = ?", reportID).Order("created_at ASC").Find(&results).Error
	return results, err
}
