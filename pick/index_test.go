package pick

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func int64p(v int64) *int64 { return &v }

func staticLoad(entries []Entry) LoadFunc {
	return func(ctx context.Context) ([]Entry, error) {
		return entries, nil
	}
}

func TestIndex_PickByLevel(t *testing.T) {
	ix := NewIndex(staticLoad([]Entry{
		{ID: "a", LevelID: 2},
		{ID: "b", LevelID: 3},
	}), zap.NewNop())

	// Only "a" survives the filter, so the pick is deterministic.
	for i := 0; i < 20; i++ {
		id, ok := ix.Pick(context.Background(), Filter{LevelID: int64p(2)})
		if !ok {
			t.Fatal("Pick returned absent, want a match")
		}
		if id != "a" {
			t.Fatalf("Pick = %q, want %q", id, "a")
		}
	}
}

func TestIndex_FilterConjunction(t *testing.T) {
	entries := []Entry{
		{ID: "a", IndustryID: int64p(1), LevelID: 2},
		{ID: "b", IndustryID: int64p(1), LevelID: 3},
		{ID: "c", IndustryID: int64p(2), LevelID: 2},
		{ID: "d", LevelID: 2}, // no industry
	}

	tests := []struct {
		name   string
		filter Filter
		want   map[string]bool
	}{
		{"no filter matches all", Filter{}, map[string]bool{"a": true, "b": true, "c": true, "d": true}},
		{"level only", Filter{LevelID: int64p(2)}, map[string]bool{"a": true, "c": true, "d": true}},
		{"industry only", Filter{IndustryID: int64p(1)}, map[string]bool{"a": true, "b": true}},
		{"both", Filter{IndustryID: int64p(1), LevelID: int64p(2)}, map[string]bool{"a": true}},
		{"entry without industry never matches an industry filter", Filter{IndustryID: int64p(99)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := NewIndex(staticLoad(entries), zap.NewNop())
			seen := make(map[string]bool)
			for i := 0; i < 200; i++ {
				id, ok := ix.Pick(context.Background(), tt.filter)
				if !ok {
					if len(tt.want) != 0 {
						t.Fatalf("Pick returned absent, want one of %v", tt.want)
					}
					return
				}
				if !tt.want[id] {
					t.Fatalf("Pick = %q, not in eligible set %v", id, tt.want)
				}
				seen[id] = true
			}
			// Uniform selection over a small set should see every
			// eligible entry in 200 draws.
			if len(seen) != len(tt.want) {
				t.Errorf("picked %v, want all of %v reachable", seen, tt.want)
			}
		})
	}
}

func TestIndex_LazyReload(t *testing.T) {
	var loads atomic.Int64
	ix := NewIndex(func(ctx context.Context) ([]Entry, error) {
		loads.Add(1)
		return []Entry{{ID: "a", LevelID: 1}}, nil
	}, zap.NewNop())

	// Empty index reloads on first pick, then stays resident.
	ix.Pick(context.Background(), Filter{})
	ix.Pick(context.Background(), Filter{})
	if n := loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}

	ix.Invalidate()
	ix.Pick(context.Background(), Filter{})
	if n := loads.Load(); n != 2 {
		t.Errorf("loads after Invalidate = %d, want 2", n)
	}
}

func TestIndex_LoadFailureIsSoft(t *testing.T) {
	var loads atomic.Int64
	broken := errors.New("db: connection refused")
	ix := NewIndex(func(ctx context.Context) ([]Entry, error) {
		loads.Add(1)
		if loads.Load() == 1 {
			return nil, broken
		}
		return []Entry{{ID: "a", LevelID: 1}}, nil
	}, zap.NewNop())

	// First pick: load fails, index stays empty, no panic or error escapes.
	if _, ok := ix.Pick(context.Background(), Filter{}); ok {
		t.Error("Pick after failed load should return absent")
	}
	if ix.Len() != 0 {
		t.Errorf("index Len after failed load = %d, want 0", ix.Len())
	}

	// Second pick retries the load and succeeds.
	id, ok := ix.Pick(context.Background(), Filter{})
	if !ok || id != "a" {
		t.Errorf("Pick after retry = (%q, %v), want (a, true)", id, ok)
	}
}

func TestIndex_NoMatch(t *testing.T) {
	ix := NewIndex(staticLoad([]Entry{{ID: "a", LevelID: 1}}), zap.NewNop())
	if id, ok := ix.Pick(context.Background(), Filter{LevelID: int64p(9)}); ok {
		t.Errorf("Pick with impossible filter = %q, want absent", id)
	}
}
