package shared

import (
	"sync"
	"time"
)

// breakerState is the circuit state for the shared cache connection.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// breaker trips after maxFailures consecutive transport failures. While
// open, allow reports false and callers skip the shared cache entirely.
// After resetAfter a single probe is let through; its result closes or
// re-opens the circuit.
type breaker struct {
	maxFailures int
	resetAfter  time.Duration

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
	probing  bool
}

func newBreaker(maxFailures int, resetAfter time.Duration) *breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetAfter <= 0 {
		resetAfter = 30 * time.Second
	}
	return &breaker{maxFailures: maxFailures, resetAfter: resetAfter}
}

// allow reports whether a call may proceed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(b.openedAt) < b.resetAfter {
			return false
		}
		b.state = breakerHalfOpen
		b.probing = true
		return true
	case breakerHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return false
}

// record reports the result of a call allowed by allow.
func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		if err != nil {
			b.failures++
			if b.failures >= b.maxFailures {
				b.state = breakerOpen
				b.openedAt = time.Now()
			}
		} else {
			b.failures = 0
		}
	case breakerHalfOpen:
		b.probing = false
		if err != nil {
			b.state = breakerOpen
			b.openedAt = time.Now()
		} else {
			b.state = breakerClosed
			b.failures = 0
		}
	}
}

func (b *breaker) currentState() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
