package cache

import (
	"sync"
	"time"
)

// Store is the in-process TTL cache. A key maps to at most one live entry;
// writing a key replaces both the value and its expiry. Expired entries are
// removed lazily on read and proactively by the background sweep.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	policy  Policy
	stats   Stats

	onSweep func(removed int)

	stop     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	value     any
	expiresAt time.Time
}

// expired reports whether the entry is dead at now. An entry is live
// strictly before its expiry instant; at now == expiresAt it is gone, so
// reads and the sweep agree at the boundary.
func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// NewStore creates a Store and starts its background sweep. Call Close to
// stop the sweep goroutine.
func NewStore(policy Policy) *Store {
	s := &Store{
		entries: make(map[string]entry),
		policy:  policy,
		stop:    make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Get retrieves a value. Returns (nil, false) on miss or expiry. Every call
// records a hit or a miss.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		s.stats.RecordMiss()
		return nil, false
	}

	if e.expired(time.Now()) {
		// Expired - clean up lazily
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		s.stats.RecordMiss()
		return nil, false
	}

	s.stats.RecordHit()
	return e.value, true
}

// Set stores a value. ttl <= 0 uses the policy default; the policy MaxTTL
// clamp applies either way.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	expiresAt := time.Now().Add(s.policy.EffectiveTTL(ttl))

	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

// Delete removes a value. Idempotent - no effect on miss.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Flush removes every entry. Lookup counters are not touched; only
// ResetStats clears those.
func (s *Store) Flush() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Len returns the number of entries, including any not yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns a point-in-time snapshot of keys and lookup counters.
func (s *Store) Stats() Snapshot {
	return Snapshot{
		Keys:    s.Len(),
		Hits:    s.stats.Hits(),
		Misses:  s.stats.Misses(),
		HitRate: s.stats.HitRate(),
	}
}

// ResetStats zeroes the lookup counters.
func (s *Store) ResetStats() {
	s.stats.Reset()
}

// OnSweep registers a callback invoked after each sweep pass with the number
// of entries removed. Used to wire eviction metrics.
func (s *Store) OnSweep(fn func(removed int)) {
	s.mu.Lock()
	s.onSweep = fn
	s.mu.Unlock()
}

// Close stops the background sweep. Idempotent.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.policy.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stop:
			return
		}
	}
}

// sweep removes entries whose expiry is at or before now.
func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	fn := s.onSweep
	s.mu.Unlock()

	if fn != nil && removed > 0 {
		fn(removed)
	}
	return removed
}
