package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/pinatlas/pinatlasbackend/album"
	"github.com/pinatlas/pinatlasbackend/flickr"
	"github.com/pinatlas/pinatlasbackend/models"
	"github.com/pinatlas/pinatlasbackend/repository"
)

type PhotoHandler struct {
	Pins   repository.PinRepository
	Photos repository.PhotoRepository
	Cache  *album.Cache
}

// photoMeta is the album listing shape; image bytes are served from a
// dedicated endpoint, the listing only reports whether they exist yet.
type photoMeta struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	PinID     string `json:"pin_id"`
	HasImage  bool   `json:"has_image"`
	CreatedAt int64  `json:"created_at"`
}

func (ph *PhotoHandler) lookupPin(w http.ResponseWriter, r *http.Request) (*models.Pin, bool) {
	pinID := chi.URLParam(r, "pin_id")
	pin, err := ph.Pins.GetByID(pinID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "pin_not_found", "No pin with that ID exists")
			return nil, false
		}
		log.Printf("Error fetching pin %s: %v", pinID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve pin"})
		return nil, false
	}
	return pin, true
}

func (ph *PhotoHandler) ListAlbum(w http.ResponseWriter, r *http.Request) {
	pin, ok := ph.lookupPin(w, r)
	if !ok {
		return
	}

	photos, err := ph.Photos.ListByPin(pin.ID)
	if err != nil {
		log.Printf("Error listing album for pin %s: %v", pin.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		return
	}

	metas := make([]photoMeta, 0, len(photos))
	for i := range photos {
		metas = append(metas, photoMeta{
			ID:        photos[i].ID,
			URL:       photos[i].URL,
			PinID:     photos[i].PinID,
			HasImage:  photos[i].HasImage(),
			CreatedAt: photos[i].CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, metas)
}

// writeAlbumOpResult maps the cache's populate/refresh outcomes onto
// HTTP responses; no-results is a valid outcome, not a failure.
func writeAlbumOpResult(w http.ResponseWriter, pinID string, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"result": "populated", "pin_id": pinID})
	case errors.Is(err, album.ErrNoResults):
		writeJSON(w, http.StatusOK, map[string]string{"result": "no_results", "pin_id": pinID})
	case errors.Is(err, album.ErrAlbumBusy):
		WriteAPIError(w, http.StatusConflict, "album_busy", "An album operation for this pin is already in flight")
	case errors.Is(err, album.ErrAlbumNotEmpty):
		WriteAPIError(w, http.StatusConflict, "album_not_empty", "This pin already has photos; use refresh to replace them")
	default:
		var apiErr *flickr.APIError
		if errors.As(err, &apiErr) {
			log.Printf("Upstream API error for pin %s: %v", pinID, apiErr)
			WriteAPIError(w, http.StatusBadGateway, "upstream_error", apiErr.Message)
			return
		}
		log.Printf("Error populating album for pin %s: %v", pinID, err)
		WriteAPIError(w, http.StatusBadGateway, "populate_failed", "Could not fetch photos for this location")
	}
}

// PopulateAlbum fills an empty album with the first page of results.
func (ph *PhotoHandler) PopulateAlbum(w http.ResponseWriter, r *http.Request) {
	pin, ok := ph.lookupPin(w, r)
	if !ok {
		return
	}
	writeAlbumOpResult(w, pin.ID, ph.Cache.PopulateIfEmpty(r.Context(), pin))
}

// RefreshAlbum replaces the album with a new collection.
func (ph *PhotoHandler) RefreshAlbum(w http.ResponseWriter, r *http.Request) {
	pin, ok := ph.lookupPin(w, r)
	if !ok {
		return
	}
	writeAlbumOpResult(w, pin.ID, ph.Cache.RefreshAlbum(r.Context(), pin))
}

func (ph *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photo_id")
	if err := ph.Cache.DeletePhoto(r.Context(), photoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "photo_not_found", "No photo with that ID exists")
			return
		}
		log.Printf("Error deleting photo %s: %v", photoID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete photo"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPhotoImage serves a photo's downloaded bytes. For a placeholder it
// queues a byte load and answers 202 so the grid can poll or listen on
// the events stream.
func (ph *PhotoHandler) GetPhotoImage(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photo_id")
	photo, err := ph.Photos.GetByID(photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "photo_not_found", "No photo with that ID exists")
			return
		}
		log.Printf("Error fetching photo %s: %v", photoID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve photo"})
		return
	}

	if !photo.HasImage() {
		ph.Cache.RequestImage(*photo)
		writeJSON(w, http.StatusAccepted, map[string]string{"result": "loading", "photo_id": photo.ID})
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(photo.ImageData))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(photo.ImageData); err != nil {
		log.Printf("Error writing image bytes for photo %s: %v", photo.ID, err)
	}
}
