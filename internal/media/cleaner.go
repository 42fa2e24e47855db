package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// CleanerConfig controls the concurrency characteristics of the cleaner.
type CleanerConfig struct {
	QueueSize int
	Workers   int
}

// Cleaner asynchronously removes media objects from external storage. It
// backs two flows: cascading object removal after a video is deleted, and
// compensating cleanup when an upload succeeded but the database write that
// should have referenced it failed.
type Cleaner struct {
	storage ObjectStorage
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	jobs   chan string
	wg     sync.WaitGroup
}

var errCleanerClosed = errors.New("media cleaner closed")

// NewCleaner constructs a background worker pool that deletes objects.
func NewCleaner(storage ObjectStorage, cfg CleanerConfig, logger *slog.Logger) *Cleaner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cleaner{
		storage: storage,
		logger:  logger,
		jobs:    make(chan string, cfg.QueueSize),
	}

	c.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go c.worker()
	}

	return c
}

// Enqueue schedules deletion of the provided object keys. Empty keys are
// skipped. The lock spans the send so Shutdown cannot close the channel
// between the closed check and the send.
func (c *Cleaner) Enqueue(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if key == "" {
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return errCleanerClosed
		}

		select {
		case <-ctx.Done():
			c.mu.Unlock()
			return ctx.Err()
		case c.jobs <- key:
			c.mu.Unlock()
		}
	}

	return nil
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (c *Cleaner) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.jobs)
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *Cleaner) worker() {
	defer c.wg.Done()

	for key := range c.jobs {
		c.deleteObject(key)
	}
}

func (c *Cleaner) deleteObject(key string) {
	if c.storage == nil {
		c.logger.Error("media cleaner missing storage backend", "key", key)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.storage.Delete(ctx, key); err != nil {
		c.logger.Error("media object deletion failed", "key", key, "error", err)
		return
	}

	c.logger.Info("media object deleted", "key", key)
}
