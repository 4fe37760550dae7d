package workers

import (
	"context"
	"log"
	"sync"

	"github.com/pinatlas/pinatlasbackend/events"
	"github.com/pinatlas/pinatlasbackend/models"
	"github.com/pinatlas/pinatlasbackend/repository"
)

// ImageDownloader fetches raw image bytes for a URL. *flickr.Client
// satisfies it.
type ImageDownloader interface {
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

type PhotoJob struct {
	PhotoID string
	URL     string
}

// PhotoLoader downloads image bytes for placeholder photos on a pool of
// workers. Downloads run fully parallel across photos; each completion
// persists through the single database writer, and a photo deleted
// while its download was in flight is simply dropped.
type PhotoLoader struct {
	JobQueue   chan PhotoJob
	Photos     repository.PhotoRepository
	Downloader ImageDownloader
	Events     *events.Hub

	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewPhotoLoader(photos repository.PhotoRepository, downloader ImageDownloader, hub *events.Hub, queueSize, numWorkers int) *PhotoLoader {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	pl := &PhotoLoader{
		JobQueue:   make(chan PhotoJob, queueSize),
		Photos:     photos,
		Downloader: downloader,
		Events:     hub,
		StopChan:   make(chan struct{}),
		Pending:    make(map[string]bool),
		ctx:        ctx,
		cancel:     cancel,
	}
	pl.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go pl.worker(i)
	}
	log.Printf("Started %d photo loader worker(s) with queue size %d", numWorkers, queueSize)
	return pl
}

func (pl *PhotoLoader) worker(id int) {
	defer pl.Wg.Done()

	for {
		select {
		case job, ok := <-pl.JobQueue:
			if !ok {
				log.Printf("Photo loader worker %d stopping: job queue closed", id)
				return
			}
			pl.processLoadJob(id, job)

			pl.Mutex.Lock()
			delete(pl.Pending, job.PhotoID)
			pl.Mutex.Unlock()

		case <-pl.StopChan:
			log.Printf("Photo loader worker %d stopping: stop signal received", id)
			return
		}
	}
}

// processLoadJob downloads the job's bytes and writes them back onto
// the photo. Failures are per-photo: they never abort sibling loads,
// and the placeholder is left without bytes (no automatic retry).
func (pl *PhotoLoader) processLoadJob(id int, job PhotoJob) {
	data, err := pl.Downloader.DownloadImage(pl.ctx, job.URL)
	if err != nil {
		log.Printf("Worker %d: ERROR downloading image for photo %s: %v", id, job.PhotoID, err)
		events.Publish(pl.Events, events.TopicPhotoLoadFailed, events.Data{
			"photo_id": job.PhotoID,
			"error":    err.Error(),
		})
		return
	}

	applied, err := pl.Photos.SetImageData(pl.ctx, job.PhotoID, data)
	if err != nil {
		log.Printf("Worker %d: ERROR persisting image bytes for photo %s: %v", id, job.PhotoID, err)
		events.Publish(pl.Events, events.TopicPhotoLoadFailed, events.Data{
			"photo_id": job.PhotoID,
			"error":    err.Error(),
		})
		return
	}
	if !applied {
		// deleted while the download was in flight; drop silently
		log.Printf("Worker %d: photo %s no longer exists, discarding %d downloaded byte(s)", id, job.PhotoID, len(data))
		return
	}

	events.Publish(pl.Events, events.TopicPhotoLoaded, events.Data{
		"photo_id": job.PhotoID,
		"size":     len(data),
	})
}

// Enqueue queues a byte load for a photo if one is not already pending.
// Re-loading an already loaded photo is allowed; the re-fetch simply
// overwrites the same bytes.
func (pl *PhotoLoader) Enqueue(photo models.Photo) bool {
	pl.Mutex.Lock()
	if pl.Pending[photo.ID] {
		pl.Mutex.Unlock()
		return false
	}
	pl.Pending[photo.ID] = true
	pl.Mutex.Unlock()

	select {
	case pl.JobQueue <- PhotoJob{PhotoID: photo.ID, URL: photo.URL}:
		return true
	default:
		log.Printf("WARNING: Photo loader queue full. Failed to queue load for photo %s", photo.ID)
		pl.Mutex.Lock()
		delete(pl.Pending, photo.ID)
		pl.Mutex.Unlock()
		return false
	}
}

// Stop aborts in-flight downloads and waits for all workers to exit.
func (pl *PhotoLoader) Stop() {
	log.Println("Stopping photo loader workers...")
	pl.cancel()
	close(pl.StopChan)
	pl.Wg.Wait()
	log.Println("All photo loader workers stopped")
}
