package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/TobiasKrause/DamageDesk/app/models"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create inserts a new report. The PENDING default is part of the insert,
// so a report never exists without a valid status.
func (r *reportRepository) Create(report *models.DamageReport) error {
	if report.Status == "" {
		report.Status = models.StatusPending
	}
	if err := report.Validate(); err != nil {
		return err
	}
	return r.db.Create(report).Error
}

// GetByID retrieves a report with its images and analysis results
func (r *reportRepository) GetByID(id uint) (*models.DamageReport, error) {
	var report models.DamageReport
	err := r.db.Preload("Images").Preload("AnalysisResults").First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List retrieves reports with their images, newest first. An empty status
// returns the full list.
func (r *reportRepository) List(status string) ([]models.DamageReport, error) {
	var reports []models.DamageReport
	q := r.db.Preload("Images").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&reports).Error
	return reports, err
}

// UpdateStatus writes a review decision. The write is conditional on the
// current status so two overlapping reviews cannot both land: only a PENDING
// row, or one already carrying the same decision, is updated.
func (r *reportRepository) UpdateStatus(id uint, status string, finalConfidence *decimal.Decimal) error {
	updates := map[string]any{"status": status}
	if finalConfidence != nil {
		updates["final_confidence"] = *finalConfidence
	}

	res := r.db.Model(&models.DamageReport{}).
		Where("id = ? AND (status = ? OR status = ?)", id, models.StatusPending, status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var current models.DamageReport
	if err := r.db.Select("status").First(&current, id).Error; err != nil {
		return err
	}
	if current.Status == status {
		// a concurrent review already applied the same decision
		return nil
	}
	return ErrStatusConflict
}

// Count returns the total number of reports
func (r *reportRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.DamageReport{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of reports in a given status
func (r *reportRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.DamageReport{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
