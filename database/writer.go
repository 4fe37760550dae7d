package database

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
)

// ErrWriterStopped is returned by Do once the writer has shut down.
var ErrWriterStopped = errors.New("database: writer stopped")

type writeOp struct {
	fn    func(db *gorm.DB) error
	reply chan error
}

// Writer serializes all database mutations onto a single goroutine.
// Reads may hit the *gorm.DB directly; every write must go through Do
// so that no two completions can interleave a read-modify-write on the
// same record, no matter how many goroutines perform network I/O.
type Writer struct {
	db       *gorm.DB
	ops      chan writeOp
	stopChan chan struct{}
	done     chan struct{}
}

func NewWriter(db *gorm.DB, queueSize int) *Writer {
	if queueSize <= 0 {
		queueSize = 100
	}
	w := &Writer{
		db:       db,
		ops:      make(chan writeOp, queueSize),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case op := <-w.ops:
			op.reply <- op.fn(w.db)
		case <-w.stopChan:
			// drain anything already queued before exiting
			for {
				select {
				case op := <-w.ops:
					op.reply <- op.fn(w.db)
				default:
					return
				}
			}
		}
	}
}

// Do runs fn on the writer goroutine and returns its error. It blocks
// until the mutation has been applied, the context is cancelled, or the
// writer has stopped.
func (w *Writer) Do(ctx context.Context, fn func(db *gorm.DB) error) error {
	op := writeOp{fn: fn, reply: make(chan error, 1)}
	select {
	case w.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return ErrWriterStopped
	}
	select {
	case err := <-op.reply:
		return err
	case <-ctx.Done():
		// the op may still run; the caller just stops waiting for it
		return ctx.Err()
	case <-w.done:
		select {
		case err := <-op.reply:
			return err
		default:
			return ErrWriterStopped
		}
	}
}

// Stop finishes queued mutations and shuts the writer down.
func (w *Writer) Stop() {
	close(w.stopChan)
	<-w.done
	log.Println("Database writer stopped")
}
