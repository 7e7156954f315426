package repository

import (
	"gorm.io/gorm"

	"github.com/TobiasKrause/DamageDesk/app/models"
)

// imageRepository implements the ImageRepository interface
type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image repository instance
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

// Create inserts a new image row. The owning report must exist: the check
// runs here as well as in the schema, so the invariant holds on databases
// without enforced foreign keys.
func (r *imageRepository) Create(image *models.DamageImage) error {
	var count int64
	if err := r.db.Model(&models.DamageReport{}).Where("id = ?", image.ReportID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.db.Create(image).Error
}

// GetByID retrieves an image by its ID
func (r *imageRepository) GetByID(id uint) (*models.DamageImage, error) {
	var image models.DamageImage
	err := r.db.First(&image, id).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByReportID retrieves all images attached to a report
func (r *imageRepository) GetByReportID(reportID uint) ([]models.DamageImage, error) {
	var images []models.DamageImage
	err := r.db.Where("report_id = ?", reportID).Order("created_at ASC").Find(&images).Error
	return images, err
}

// GetByFileName retrieves an image by its stored filename
func (r *imageRepository) GetByFileName(fileName string) (*models.DamageImage, error) {
	var image models.DamageImage
	err := r.db.Where("file_name = ?", fileName).First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// Count returns the total number of images
func (r *imageRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.DamageImage{}).Count(&count).Error
	return count, err
}
