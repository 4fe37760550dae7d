package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWriterSerializesMutations(t *testing.T) {
	w := NewWriter(nil, 16)
	defer w.Stop()

	// counter is only ever touched on the writer goroutine, so the
	// unsynchronized increments below are safe iff ops are serialized
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := w.Do(context.Background(), func(db *gorm.DB) error {
				counter++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	err := w.Do(context.Background(), func(db *gorm.DB) error {
		assert.Equal(t, 50, counter)
		return nil
	})
	require.NoError(t, err)
}

func TestWriterPropagatesError(t *testing.T) {
	w := NewWriter(nil, 4)
	defer w.Stop()

	boom := errors.New("disk full")
	err := w.Do(context.Background(), func(db *gorm.DB) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWriterHonorsContext(t *testing.T) {
	w := NewWriter(nil, 4)
	defer w.Stop()

	release := make(chan struct{})
	go func() {
		_ = w.Do(context.Background(), func(db *gorm.DB) error {
			<-release
			return nil
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Do(ctx, func(db *gorm.DB) error { return nil })
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context expiry")
	}
	close(release)
}

func TestWriterStopDrainsQueue(t *testing.T) {
	w := NewWriter(nil, 16)

	ran := 0
	for i := 0; i < 5; i++ {
		err := w.Do(context.Background(), func(db *gorm.DB) error {
			ran++
			return nil
		})
		require.NoError(t, err)
	}
	w.Stop()

	assert.Equal(t, 5, ran)
	err := w.Do(context.Background(), func(db *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, ErrWriterStopped)
}
