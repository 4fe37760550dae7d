package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/pinatlas/pinatlasbackend/album"
	"github.com/pinatlas/pinatlasbackend/repository"
)

type PinHandler struct {
	Pins   repository.PinRepository
	Photos repository.PhotoRepository
	Cache  *album.Cache
}

func (ph *PinHandler) CreatePin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields: latitude and longitude"})
		return
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Coordinates out of range"})
		return
	}

	pin, err := ph.Pins.Create(r.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		log.Printf("Error creating pin at (%f, %f): %v", *req.Latitude, *req.Longitude, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create pin"})
		return
	}
	writeJSON(w, http.StatusCreated, pin)
}

func (ph *PinHandler) ListPins(w http.ResponseWriter, r *http.Request) {
	pins, err := ph.Pins.List()
	if err != nil {
		log.Printf("Error listing pins: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve pins"})
		return
	}
	writeJSON(w, http.StatusOK, pins)
}

func (ph *PinHandler) GetPin(w http.ResponseWriter, r *http.Request) {
	pinID := chi.URLParam(r, "pin_id")
	pin, err := ph.Pins.GetByID(pinID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "pin_not_found", "No pin with that ID exists")
			return
		}
		log.Printf("Error fetching pin %s: %v", pinID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve pin"})
		return
	}
	writeJSON(w, http.StatusOK, pin)
}

func (ph *PinHandler) DeletePin(w http.ResponseWriter, r *http.Request) {
	pinID := chi.URLParam(r, "pin_id")
	if err := ph.Pins.Delete(r.Context(), pinID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "pin_not_found", "No pin with that ID exists")
			return
		}
		log.Printf("Error deleting pin %s: %v", pinID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete pin"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
