package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
)

// ledgerEntry is a recorded handle; a zero expiresAt never expires
type ledgerEntry struct {
	remoteID  int64
	expiresAt time.Time
}

func (e ledgerEntry) live(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// InMemoryHandleLedger implements HandleLedger using an in-memory map.
// It is suitable for single-instance deployments and testing.
type InMemoryHandleLedger struct {
	mu        sync.RWMutex
	entries   map[string]ledgerEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryHandleLedger creates a new in-memory ledger.
// With a positive ttl a background goroutine evicts expired entries.
func NewInMemoryHandleLedger(ttl time.Duration) *InMemoryHandleLedger {
	l := &InMemoryHandleLedger{
		entries:  make(map[string]ledgerEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	if ttl > 0 {
		l.wg.Add(1)
		go l.cleanupLoop()
	}
	return l
}

func ledgerKey(shop, handle string) string {
	return shop + ":" + handle
}

// MarkImported records a handle. It returns false if a live entry exists.
func (l *InMemoryHandleLedger) MarkImported(ctx context.Context, shop, handle string, remoteID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	key := ledgerKey(shop, handle)
	if e, ok := l.entries[key]; ok && e.live(now) {
		return false, nil
	}

	e := ledgerEntry{remoteID: remoteID}
	if l.ttl > 0 {
		e.expiresAt = now.Add(l.ttl)
	}
	l.entries[key] = e
	return true, nil
}

// IsImported checks if a live entry exists for the handle
func (l *InMemoryHandleLedger) IsImported(ctx context.Context, shop, handle string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[ledgerKey(shop, handle)]
	return ok && e.live(time.Now()), nil
}

// Forget removes a handle
func (l *InMemoryHandleLedger) Forget(ctx context.Context, shop, handle string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, ledgerKey(shop, handle))
	return nil
}

// RemoteID returns the recorded remote product id of a handle
func (l *InMemoryHandleLedger) RemoteID(shop, handle string) (int64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[ledgerKey(shop, handle)]
	if !ok || !e.live(time.Now()) {
		return 0, false
	}
	return e.remoteID, true
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (l *InMemoryHandleLedger) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryHandleLedger) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryHandleLedger) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.entries {
		if !e.live(now) {
			delete(l.entries, key)
		}
	}
}

// Size returns the number of entries, including expired ones not yet evicted
func (l *InMemoryHandleLedger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

var _ integration.HandleLedger = (*InMemoryHandleLedger)(nil)
