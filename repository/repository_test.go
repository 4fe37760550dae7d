package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pinatlas/pinatlasbackend/database"
	"github.com/pinatlas/pinatlasbackend/models"
)

type testEnv struct {
	db     *gorm.DB
	writer *database.Writer
	pins   *GormPinRepository
	photos *GormPhotoRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.InitGormDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))

	writer := database.NewWriter(db, 16)
	t.Cleanup(writer.Stop)

	return &testEnv{
		db:     db,
		writer: writer,
		pins:   NewPinRepository(db, writer),
		photos: NewPhotoRepository(db, writer),
	}
}

func (e *testEnv) mustCreatePin(t *testing.T, lat, lon float64) *models.Pin {
	t.Helper()
	pin, err := e.pins.Create(context.Background(), lat, lon)
	require.NoError(t, err)
	return pin
}

func (e *testEnv) mustCreatePhotos(t *testing.T, pinID string, urls ...string) []models.Photo {
	t.Helper()
	photos := make([]models.Photo, 0, len(urls))
	for _, u := range urls {
		photos = append(photos, models.Photo{
			ID:    uuid.NewString(),
			URL:   u,
			PinID: pinID,
		})
	}
	require.NoError(t, e.photos.CreateBatch(context.Background(), photos))
	return photos
}
