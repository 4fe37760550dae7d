package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/pinatlas/pinatlasbackend/album"
	"github.com/pinatlas/pinatlasbackend/config"
	"github.com/pinatlas/pinatlasbackend/database"
	"github.com/pinatlas/pinatlasbackend/events"
	"github.com/pinatlas/pinatlasbackend/flickr"
	"github.com/pinatlas/pinatlasbackend/handlers"
	"github.com/pinatlas/pinatlasbackend/repository"
	"github.com/pinatlas/pinatlasbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	dbDir := filepath.Dir(cfg.DatabasePath)
	log.Printf("Ensuring database directory exists: %s", dbDir)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create database directory %s: %v", dbDir, err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	writer := database.NewWriter(db, cfg.LoaderQueueSize)
	defer writer.Stop()

	hub := events.NewHub()

	pinRepo := repository.NewPinRepository(db, writer)
	photoRepo := repository.NewPhotoRepository(db, writer)

	flickrClient := flickr.NewClient(cfg.FlickrAPIKey, cfg.FlickrBaseURL, cfg.FlickrStaticBaseURL, cfg.SearchCacheTTL)

	log.Printf("Initializing photo loader worker pool (Workers: %d, Queue Size: %d)...", cfg.NumLoaderWorkers, cfg.LoaderQueueSize)
	photoLoader := workers.NewPhotoLoader(photoRepo, flickrClient, hub, cfg.LoaderQueueSize, cfg.NumLoaderWorkers)
	defer photoLoader.Stop()

	albumCache := album.NewCache(photoRepo, flickrClient, photoLoader, hub, cfg.PhotosPerPage)

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Flickr search endpoint: %s", cfg.FlickrBaseURL)
	log.Printf("Photos per album page: %d", cfg.PhotosPerPage)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	pinHandler := &handlers.PinHandler{Pins: pinRepo, Photos: photoRepo, Cache: albumCache}
	photoHandler := &handlers.PhotoHandler{Pins: pinRepo, Photos: photoRepo, Cache: albumCache}
	eventsHandler := &handlers.EventsHandler{Hub: hub}

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(60 * time.Second)).Route("/pins", func(r chi.Router) {
			r.Post("/", pinHandler.CreatePin)
			r.Get("/", pinHandler.ListPins)
			r.Route("/{pin_id}", func(r chi.Router) {
				r.Get("/", pinHandler.GetPin)
				r.Delete("/", pinHandler.DeletePin)
				r.Get("/photos", photoHandler.ListAlbum)
				r.Post("/photos", photoHandler.PopulateAlbum)
				r.Post("/refresh", photoHandler.RefreshAlbum)
			})
		})

		r.With(middleware.Timeout(60 * time.Second)).Route("/photos/{photo_id}", func(r chi.Router) {
			r.Delete("/", photoHandler.DeletePhoto)
			r.Get("/image", photoHandler.GetPhotoImage)
		})

		// SSE stream stays open, so it skips the request timeout
		r.Get("/events", eventsHandler.Stream)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Fatalf("FATAL: Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during server shutdown: %v", err)
		}
	}
}
