package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinatlas/pinatlasbackend/database"
	"github.com/pinatlas/pinatlasbackend/models"
)

// GormPhotoRepository handles database operations for Photo entities
type GormPhotoRepository struct {
	DB     *gorm.DB
	Writer *database.Writer
}

// NewPhotoRepository creates a new instance of GormPhotoRepository
func NewPhotoRepository(db *gorm.DB, writer *database.Writer) *GormPhotoRepository {
	return &GormPhotoRepository{DB: db, Writer: writer}
}

// ListByPin returns a pin's album ordered by url ascending, the order
// the grid view iterates in
func (r *GormPhotoRepository) ListByPin(pinID string) ([]models.Photo, error) {
	var photos []models.Photo
	if err := r.DB.Where("pin_id = ?", pinID).Order("url ASC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list photos for pin %s: %w", pinID, err)
	}
	return photos, nil
}

// CountByPin reports how many photos a pin currently owns
func (r *GormPhotoRepository) CountByPin(pinID string) (int64, error) {
	var count int64
	if err := r.DB.Model(&models.Photo{}).Where("pin_id = ?", pinID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count photos for pin %s: %w", pinID, err)
	}
	return count, nil
}

// GetByID retrieves a photo by its ID
func (r *GormPhotoRepository) GetByID(id string) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.Where("id = ?", id).First(&photo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo %s: %w", id, err)
	}
	return &photo, nil
}

// CreateBatch persists a populate batch as one durable save: either all
// placeholders land or none do
func (r *GormPhotoRepository) CreateBatch(ctx context.Context, photos []models.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	err := r.Writer.Do(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&photos).Error
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create photo batch of %d: %w", len(photos), err)
	}
	return nil
}

// Delete removes exactly one photo, individually durable
func (r *GormPhotoRepository) Delete(ctx context.Context, id string) error {
	err := r.Writer.Do(ctx, func(db *gorm.DB) error {
		result := db.Where("id = ?", id).Delete(&models.Photo{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return err
		}
		return fmt.Errorf("failed to delete photo %s: %w", id, err)
	}
	return nil
}

// SetImageData writes downloaded bytes onto a photo if it still exists.
// Returns false when the row is gone, which makes a byte load that
// raced a deletion a silent no-op rather than an error.
func (r *GormPhotoRepository) SetImageData(ctx context.Context, id string, data []byte) (bool, error) {
	var applied bool
	err := r.Writer.Do(ctx, func(db *gorm.DB) error {
		result := db.Model(&models.Photo{}).Where("id = ?", id).Update("image_data", data)
		if result.Error != nil {
			return result.Error
		}
		applied = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to set image data for photo %s: %w", id, err)
	}
	return applied, nil
}
