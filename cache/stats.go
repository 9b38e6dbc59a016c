package cache

import "sync/atomic"

// Stats counts cache lookups. Counters only grow; Reset is explicit and is
// used by the cache management endpoints, never by TTL expiry or Flush.
type Stats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// RecordHit increments the hit counter.
func (s *Stats) RecordHit() { s.hits.Add(1) }

// RecordMiss increments the miss counter.
func (s *Stats) RecordMiss() { s.misses.Add(1) }

// Hits returns the number of lookups served from the cache.
func (s *Stats) Hits() int64 { return s.hits.Load() }

// Misses returns the number of lookups that fell through to the source.
func (s *Stats) Misses() int64 { return s.misses.Load() }

// HitRate returns hits/(hits+misses), or 0 when no lookups have occurred.
func (s *Stats) HitRate() float64 {
	hits := s.hits.Load()
	total := hits + s.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Reset zeroes both counters.
func (s *Stats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)
}

// Snapshot is a point-in-time view of cache statistics.
type Snapshot struct {
	Keys    int     `json:"keys"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hitRate"`
}
