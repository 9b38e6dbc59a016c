package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.CacheDefaultTTL != 10*time.Minute {
		t.Errorf("CacheDefaultTTL = %v, want 10m", cfg.CacheDefaultTTL)
	}
	if cfg.CacheSweepInterval != 2*time.Minute {
		t.Errorf("CacheSweepInterval = %v, want 2m", cfg.CacheSweepInterval)
	}
	if cfg.SingleFlight {
		t.Error("SingleFlight should default to false")
	}
	if cfg.RedisPrefix != "jargon" {
		t.Errorf("RedisPrefix = %q, want jargon", cfg.RedisPrefix)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JARGON_HTTP_ADDR", ":9000")
	t.Setenv("JARGON_CACHE_DEFAULT_TTL", "30s")
	t.Setenv("JARGON_CACHE_SINGLE_FLIGHT", "true")
	t.Setenv("JARGON_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q, want :9000", cfg.HTTPAddr)
	}
	if cfg.CacheDefaultTTL != 30*time.Second {
		t.Errorf("CacheDefaultTTL = %v, want 30s", cfg.CacheDefaultTTL)
	}
	if !cfg.SingleFlight {
		t.Error("SingleFlight should be true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JARGON_CACHE_DEFAULT_TTL", "0")

	if _, err := Load(); err == nil {
		t.Error("Load with zero default TTL should fail")
	}
}
