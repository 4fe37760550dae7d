package album

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pinatlas/pinatlasbackend/events"
	"github.com/pinatlas/pinatlasbackend/flickr"
	"github.com/pinatlas/pinatlasbackend/models"
	"github.com/pinatlas/pinatlasbackend/repository"
)

var (
	// ErrNoResults reports a valid empty search outcome: the remote
	// source has no photos for the pin's location. The album is left
	// untouched and the caller surfaces it to the user.
	ErrNoResults = errors.New("album: no photos found for this location")

	// ErrAlbumBusy reports that a populate or refresh for the same pin
	// is already in flight.
	ErrAlbumBusy = errors.New("album: operation already in flight for this pin")

	// ErrAlbumNotEmpty reports that a fill-if-empty populate found the
	// album already holding photos.
	ErrAlbumNotEmpty = errors.New("album: pin already has photos")
)

// firstRefreshPage is where the "new collection" paging starts; page 1
// is what the initial populate shows, so refreshes begin at 2 and walk
// forward, wrapping past the last page the source reported.
const firstRefreshPage = 2

// SearchSource is the remote capability the cache populates from.
// *flickr.Client satisfies it.
type SearchSource interface {
	Search(ctx context.Context, lat, lon float64, page, perPage int) (*flickr.SearchResult, error)
	PhotoSourceURL(server, id, secret string) string
}

// ImageRequester queues a photo for asynchronous byte loading.
// *workers.PhotoLoader satisfies it.
type ImageRequester interface {
	Enqueue(photo models.Photo) bool
}

type pinPaging struct {
	nextPage   int
	knownPages int
}

// Cache orchestrates a pin's photo album: populate from the remote
// source, persist placeholder records, replace a whole album, delete
// individual photos, and hand byte loading to the loader pool.
//
// The populate/refresh state per pin is inferred from the persisted
// photo rows, not from a stored status field; a crash mid-populate
// self-heals because the next view simply sees an empty or partial
// album. Per-pin single-flight is enforced here rather than left to
// the caller.
type Cache struct {
	Photos  repository.PhotoRepository
	Source  SearchSource
	Loader  ImageRequester
	Events  *events.Hub
	PerPage int

	mu       sync.Mutex
	inflight map[string]bool
	paging   map[string]*pinPaging
}

func NewCache(photos repository.PhotoRepository, source SearchSource, loader ImageRequester, hub *events.Hub, perPage int) *Cache {
	if perPage <= 0 {
		perPage = 15
	}
	return &Cache{
		Photos:   photos,
		Source:   source,
		Loader:   loader,
		Events:   hub,
		PerPage:  perPage,
		inflight: make(map[string]bool),
		paging:   make(map[string]*pinPaging),
	}
}

// acquire marks a pin's album operation as in flight
func (c *Cache) acquire(pinID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[pinID] {
		return false
	}
	c.inflight[pinID] = true
	return true
}

func (c *Cache) release(pinID string) {
	c.mu.Lock()
	delete(c.inflight, pinID)
	c.mu.Unlock()
}

// Populate fetches one page of search results for the pin's coordinate
// and persists a placeholder photo per descriptor, in source order, as
// one durable batch. It does not check whether the album is empty;
// callers wanting fill-if-empty semantics use PopulateIfEmpty.
func (c *Cache) Populate(ctx context.Context, pin *models.Pin, page int) error {
	if !c.acquire(pin.ID) {
		return ErrAlbumBusy
	}
	defer c.release(pin.ID)
	return c.populate(ctx, pin, page)
}

// PopulateIfEmpty populates the pin's album only when it has no photos
// yet. The zero check runs under the same per-pin flight lock as the
// populate itself, so two concurrent calls cannot both pass it.
func (c *Cache) PopulateIfEmpty(ctx context.Context, pin *models.Pin) error {
	if !c.acquire(pin.ID) {
		return ErrAlbumBusy
	}
	defer c.release(pin.ID)

	count, err := c.Photos.CountByPin(pin.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAlbumNotEmpty
	}
	return c.populate(ctx, pin, 1)
}

// populate runs with the pin's flight lock already held
func (c *Cache) populate(ctx context.Context, pin *models.Pin, page int) error {
	result, err := c.Source.Search(ctx, pin.Latitude, pin.Longitude, page, c.PerPage)
	if err != nil {
		return err
	}

	c.recordPageCount(pin.ID, result.Pages)

	if result.Total == 0 {
		events.Publish(c.Events, events.TopicAlbumNoResults, events.Data{"pin_id": pin.ID})
		return ErrNoResults
	}

	now := time.Now().Unix()
	photos := make([]models.Photo, 0, len(result.Photos))
	for _, desc := range result.Photos {
		photos = append(photos, models.Photo{
			ID:        uuid.NewString(),
			URL:       c.Source.PhotoSourceURL(desc.Server, desc.ID, desc.Secret),
			PinID:     pin.ID,
			CreatedAt: now,
		})
	}

	if err := c.Photos.CreateBatch(ctx, photos); err != nil {
		return fmt.Errorf("persisting placeholders for pin %s: %w", pin.ID, err)
	}

	log.Printf("Populated pin %s with %d placeholder photo(s) from page %d", pin.ID, len(photos), page)
	events.Publish(c.Events, events.TopicAlbumPopulated, events.Data{
		"pin_id": pin.ID,
		"count":  len(photos),
		"page":   page,
	})
	return nil
}

// RefreshAlbum replaces the pin's album: every existing photo is
// deleted (each deletion individually durable, so a partial failure
// leaves a consistent subset removed), then a fresh page of results is
// populated. The fresh page walks forward on every refresh rather than
// always re-requesting page 2.
func (c *Cache) RefreshAlbum(ctx context.Context, pin *models.Pin) error {
	if !c.acquire(pin.ID) {
		return ErrAlbumBusy
	}
	defer c.release(pin.ID)

	existing, err := c.Photos.ListByPin(pin.ID)
	if err != nil {
		return err
	}
	for _, photo := range existing {
		if err := c.Photos.Delete(ctx, photo.ID); err != nil {
			return fmt.Errorf("clearing album for pin %s: %w", pin.ID, err)
		}
	}

	page := c.nextRefreshPage(pin.ID)
	if err := c.populate(ctx, pin, page); err != nil {
		return err
	}

	events.Publish(c.Events, events.TopicAlbumRefreshed, events.Data{"pin_id": pin.ID, "page": page})
	return nil
}

// DeletePhoto removes one photo immediately; no confirmation, no undo.
func (c *Cache) DeletePhoto(ctx context.Context, photoID string) error {
	return c.Photos.Delete(ctx, photoID)
}

// RequestImage queues a placeholder for byte loading. Returns whether
// the photo was newly enqueued.
func (c *Cache) RequestImage(photo models.Photo) bool {
	if photo.HasImage() {
		return false
	}
	return c.Loader.Enqueue(photo)
}

func (c *Cache) recordPageCount(pinID string, pages int) {
	if pages <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.paging[pinID]
	if !ok {
		p = &pinPaging{nextPage: firstRefreshPage}
		c.paging[pinID] = p
	}
	p.knownPages = pages
}

// nextRefreshPage hands out 2, 3, ... per pin, wrapping to 1 once the
// source's reported page count is exceeded. The counter is in-memory;
// after a restart refreshes begin at page 2 again.
func (c *Cache) nextRefreshPage(pinID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.paging[pinID]
	if !ok {
		p = &pinPaging{nextPage: firstRefreshPage}
		c.paging[pinID] = p
	}
	page := p.nextPage
	if p.knownPages > 0 && page > p.knownPages {
		page = 1
		p.nextPage = 1
	}
	p.nextPage++
	return page
}
