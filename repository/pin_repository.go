package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pinatlas/pinatlasbackend/database"
	"github.com/pinatlas/pinatlasbackend/models"
)

// GormPinRepository handles database operations for Pin entities.
// Reads go straight to the DB; every mutation is funnelled through the
// single writer.
type GormPinRepository struct {
	DB     *gorm.DB
	Writer *database.Writer
}

// NewPinRepository creates a new instance of GormPinRepository
func NewPinRepository(db *gorm.DB, writer *database.Writer) *GormPinRepository {
	return &GormPinRepository{DB: db, Writer: writer}
}

// Create persists a new pin with no photos
func (r *GormPinRepository) Create(ctx context.Context, latitude, longitude float64) (*models.Pin, error) {
	pin := models.Pin{
		ID:        uuid.NewString(),
		Latitude:  latitude,
		Longitude: longitude,
		CreatedAt: time.Now().Unix(),
	}
	err := r.Writer.Do(ctx, func(db *gorm.DB) error {
		return db.Create(&pin).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pin at (%f, %f): %w", latitude, longitude, err)
	}
	return &pin, nil
}

// List returns all pins ordered by latitude descending, the stable
// order the map rendering relies on
func (r *GormPinRepository) List() ([]models.Pin, error) {
	var pins []models.Pin
	if err := r.DB.Order("latitude DESC").Find(&pins).Error; err != nil {
		return nil, fmt.Errorf("failed to list pins: %w", err)
	}
	return pins, nil
}

// GetByID retrieves a pin by its ID
func (r *GormPinRepository) GetByID(id string) (*models.Pin, error) {
	var pin models.Pin
	err := r.DB.Where("id = ?", id).First(&pin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get pin %s: %w", id, err)
	}
	return &pin, nil
}

// FindByCoordinate resolves a map selection back to a persisted pin by
// exact coordinate match. If duplicate pins share a coordinate the
// first in repository order wins; callers that already hold a pin ID
// should prefer GetByID.
func (r *GormPinRepository) FindByCoordinate(latitude, longitude float64) (*models.Pin, error) {
	var pin models.Pin
	err := r.DB.Where("latitude = ? AND longitude = ?", latitude, longitude).
		Order("latitude DESC").First(&pin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find pin at (%f, %f): %w", latitude, longitude, err)
	}
	return &pin, nil
}

// Delete removes a pin and, via cascade, its photos. The photo delete
// is issued explicitly in the same transaction rather than trusting the
// sqlite pragma alone.
func (r *GormPinRepository) Delete(ctx context.Context, id string) error {
	err := r.Writer.Do(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("pin_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
				return err
			}
			result := tx.Where("id = ?", id).Delete(&models.Pin{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return err
		}
		return fmt.Errorf("failed to delete pin %s: %w", id, err)
	}
	return nil
}
