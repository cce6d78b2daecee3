package services

import (
	"context"
	"sync"
	"time"
)

// Deduplicator suppresses redelivered inbound messages.
type Deduplicator interface {
	// ShouldProcess reports whether messageID is seen for the first time
	// within the dedup window, registering it if so.
	ShouldProcess(ctx context.Context, messageID string) bool
}

// MemoryDeduplicator remembers message ids for a fixed window in process memory.
type MemoryDeduplicator struct {
	mu     sync.Mutex
	seen   map[string]time.Time // message id -> expiry
	window time.Duration
	now    func() time.Time
}

// NewMemoryDeduplicator creates a deduplicator with the given window.
func NewMemoryDeduplicator(window time.Duration) *MemoryDeduplicator {
	return &MemoryDeduplicator{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
	}
}

func (d *MemoryDeduplicator) ShouldProcess(_ context.Context, messageID string) bool {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiry, ok := d.seen[messageID]; ok && now.Before(expiry) {
		return false
	}
	d.seen[messageID] = now.Add(d.window)
	return true
}

// Purge forgets every id whose window ended before now and returns how many
// were removed.
func (d *MemoryDeduplicator) Purge(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for id, expiry := range d.seen {
		if !now.Before(expiry) {
			delete(d.seen, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked ids, expired or not.
func (d *MemoryDeduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
