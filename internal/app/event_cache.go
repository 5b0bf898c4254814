package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/salvadorquinn/studynet/internal/adapter/metrics"
	"github.com/salvadorquinn/studynet/internal/domain"
)

// EventCache is a TTL cache for public event listings, keyed by region. The
// public site polls these lists far more often than they change, so a short
// TTL takes most of the read load off the database.
type EventCache struct {
	mu      sync.RWMutex
	entries map[string]*eventCacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type eventCacheEntry struct {
	events    []domain.Event
	expiresAt time.Time
}

func NewEventCache(ttl time.Duration, clock clockwork.Clock) *EventCache {
	return &EventCache{
		entries: make(map[string]*eventCacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached listing for a region, or false on miss or expiry.
func (c *EventCache) Get(region string) ([]domain.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[region]
	if !ok {
		metrics.CacheMisses.WithLabelValues("public_events").Inc()
		return nil, false
	}
	// Expired entries are left for the eviction timer; this holds only a
	// read lock.
	if c.clock.Now().After(entry.expiresAt) {
		metrics.CacheMisses.WithLabelValues("public_events").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("public_events").Inc()
	return entry.events, true
}

func (c *EventCache) Set(region string, events []domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[region] = &eventCacheEntry{
		events:    events,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Invalidate drops every cached listing. Event writes are rare enough that
// region-precise invalidation is not worth the bookkeeping.
func (c *EventCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*eventCacheEntry)
}

func (c *EventCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes expired entries and returns the count evicted.
func (c *EventCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for region, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, region)
			evicted++
		}
	}
	return evicted
}

// StartEvictionTimer periodically evicts expired entries so the cache cannot
// grow without bound. The returned stop function ends the goroutine.
func (c *EventCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.EvictExpired(); evicted > 0 {
					slog.Debug("Evicted expired event cache entries",
						"count", evicted,
						"remaining", c.Size(),
					)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
