package pick

import (
	"context"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"
)

// Entry is the minimal projection of a term kept resident: just enough to
// filter and then re-fetch the full record by ID.
type Entry struct {
	ID         string
	IndustryID *int64
	LevelID    int64
}

// Filter narrows a random pick. Nil fields match everything; set fields are
// exact-match and combine as a conjunction.
type Filter struct {
	IndustryID *int64
	LevelID    *int64
}

func (f Filter) matches(e Entry) bool {
	if f.IndustryID != nil {
		if e.IndustryID == nil || *e.IndustryID != *f.IndustryID {
			return false
		}
	}
	if f.LevelID != nil && e.LevelID != *f.LevelID {
		return false
	}
	return true
}

// LoadFunc queries the primary store for the projection of all eligible
// terms.
type LoadFunc func(ctx context.Context) ([]Entry, error)

// Index is the in-memory random-selection index.
type Index struct {
	load LoadFunc
	log  *zap.Logger

	mu      sync.RWMutex
	entries []Entry
}

// NewIndex creates an empty index; the first Pick triggers a load.
func NewIndex(load LoadFunc, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{load: load, log: log}
}

// Reload replaces the index wholesale from the primary store. Fails soft:
// a query error empties the index and is logged, and the next Pick retries.
func (ix *Index) Reload(ctx context.Context) {
	entries, err := ix.load(ctx)
	if err != nil {
		ix.log.Error("term index load failed, continuing with empty index", zap.Error(err))
		entries = nil
	} else {
		ix.log.Info("term index loaded", zap.Int("entries", len(entries)))
	}

	ix.mu.Lock()
	ix.entries = entries
	ix.mu.Unlock()
}

// Invalidate empties the index; the next Pick rebuilds it.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	ix.entries = nil
	ix.mu.Unlock()
}

// Len returns the number of resident entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Pick returns the ID of a uniformly random entry satisfying the filter,
// or ("", false) when none does. An empty index is reloaded lazily first.
func (ix *Index) Pick(ctx context.Context, f Filter) (string, bool) {
	if ix.Len() == 0 {
		ix.Reload(ctx)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var eligible []string
	for _, e := range ix.entries {
		if f.matches(e) {
			eligible = append(eligible, e.ID)
		}
	}
	if len(eligible) == 0 {
		return "", false
	}
	return eligible[rand.IntN(len(eligible))], true
}
