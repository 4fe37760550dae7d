package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultFlickrBaseURL       = "https://www.flickr.com/services/rest"
	defaultFlickrStaticBaseURL = "https://live.staticflickr.com"
)

const (
	defaultPhotosPerPage     = 15
	defaultLoaderQueueSize   = 200
	defaultNumLoaderWorkers  = 4
	defaultSearchCacheTTLSec = 60
)

type Config struct {
	// database path
	DatabasePath string

	// flickr API configuration
	FlickrAPIKey        string
	FlickrBaseURL       string
	FlickrStaticBaseURL string

	// album population settings
	PhotosPerPage int

	// byte loader worker settings
	LoaderQueueSize  int
	NumLoaderWorkers int

	// search response cache
	SearchCacheTTL time.Duration
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "pins.db")
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for database '%s': %w", dbPath, err)
	}

	apiKey := os.Getenv("FLICKR_API_KEY")
	if apiKey == "" {
		return Config{}, fmt.Errorf("FLICKR_API_KEY must be set")
	}

	baseURL := getEnvOrDefault("FLICKR_BASE_URL", defaultFlickrBaseURL)
	staticBaseURL := getEnvOrDefault("FLICKR_STATIC_BASE_URL", defaultFlickrStaticBaseURL)

	perPage := getEnvIntOrDefault("PHOTOS_PER_PAGE", defaultPhotosPerPage)
	queueSize := getEnvIntOrDefault("LOADER_QUEUE_SIZE", defaultLoaderQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_LOADER_WORKERS", defaultNumLoaderWorkers)
	cacheTTLSec := getEnvIntOrDefault("SEARCH_CACHE_TTL_SECONDS", defaultSearchCacheTTLSec)

	cfg := Config{
		DatabasePath:        absDBPath,
		FlickrAPIKey:        apiKey,
		FlickrBaseURL:       baseURL,
		FlickrStaticBaseURL: staticBaseURL,
		PhotosPerPage:       perPage,
		LoaderQueueSize:     queueSize,
		NumLoaderWorkers:    numWorkers,
		SearchCacheTTL:      time.Duration(cacheTTLSec) * time.Second,
	}

	return cfg, nil
}
