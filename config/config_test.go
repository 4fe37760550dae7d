package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FLICKR_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.FlickrAPIKey)
	assert.Equal(t, defaultFlickrBaseURL, cfg.FlickrBaseURL)
	assert.Equal(t, defaultFlickrStaticBaseURL, cfg.FlickrStaticBaseURL)
	assert.Equal(t, defaultPhotosPerPage, cfg.PhotosPerPage)
	assert.Equal(t, defaultNumLoaderWorkers, cfg.NumLoaderWorkers)
	assert.Equal(t, time.Duration(defaultSearchCacheTTLSec)*time.Second, cfg.SearchCacheTTL)
	assert.NotEmpty(t, cfg.DatabasePath)
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("FLICKR_API_KEY", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigOverridesAndBadInts(t *testing.T) {
	t.Setenv("FLICKR_API_KEY", "test-key")
	t.Setenv("PHOTOS_PER_PAGE", "30")
	t.Setenv("NUM_LOADER_WORKERS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.PhotosPerPage)
	assert.Equal(t, defaultNumLoaderWorkers, cfg.NumLoaderWorkers, "invalid values fall back to the default")
}
