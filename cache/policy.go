package cache

import "time"

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL applied when Set is called with ttl <= 0.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// SweepInterval is how often the background sweep scans for expired
	// entries. If zero, DefaultSweepInterval is used.
	SweepInterval time.Duration
}

// DefaultSweepInterval is the sweep cadence used when none is configured.
const DefaultSweepInterval = 2 * time.Minute

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 10 minutes, MaxTTL: 24 hours.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL:    10 * time.Minute,
		MaxTTL:        24 * time.Hour,
		SweepInterval: DefaultSweepInterval,
	}
}

// EffectiveTTL returns the TTL to use, applying the default and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}

func (p Policy) sweepInterval() time.Duration {
	if p.SweepInterval > 0 {
		return p.SweepInterval
	}
	return DefaultSweepInterval
}
