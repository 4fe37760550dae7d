package repository

import (
	"context"

	"github.com/pinatlas/pinatlasbackend/models"
)

// PinRepository defines database operations for Pin entities
type PinRepository interface {
	Create(ctx context.Context, latitude, longitude float64) (*models.Pin, error)
	List() ([]models.Pin, error)
	GetByID(id string) (*models.Pin, error)
	FindByCoordinate(latitude, longitude float64) (*models.Pin, error)
	Delete(ctx context.Context, id string) error
}

// PhotoRepository defines database operations for Photo entities
type PhotoRepository interface {
	ListByPin(pinID string) ([]models.Photo, error)
	CountByPin(pinID string) (int64, error)
	GetByID(id string) (*models.Photo, error)
	CreateBatch(ctx context.Context, photos []models.Photo) error
	Delete(ctx context.Context, id string) error
	SetImageData(ctx context.Context, id string, data []byte) (bool, error)
}
