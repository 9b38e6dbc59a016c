// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup. All values come from
// JARGON_-prefixed environment variables, with development defaults.
type Config struct {
	HTTPAddr    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	CacheDefaultTTL    time.Duration
	CacheMaxTTL        time.Duration
	CacheSweepInterval time.Duration
	SharedCacheTTL     time.Duration
	SingleFlight       bool

	LogLevel       string
	TraceExporter  string
	MetricExporter string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JARGON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.url", "postgres://localhost:5432/jargon?sslmode=disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "jargon")
	v.SetDefault("cache.default_ttl", "10m")
	v.SetDefault("cache.max_ttl", "24h")
	v.SetDefault("cache.sweep_interval", "2m")
	v.SetDefault("cache.shared_ttl", "5m")
	v.SetDefault("cache.single_flight", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("observe.trace_exporter", "none")
	v.SetDefault("observe.metric_exporter", "none")

	cfg := &Config{
		HTTPAddr:           v.GetString("http.addr"),
		DatabaseURL:        v.GetString("database.url"),
		RedisAddr:          v.GetString("redis.addr"),
		RedisPassword:      v.GetString("redis.password"),
		RedisDB:            v.GetInt("redis.db"),
		RedisPrefix:        v.GetString("redis.prefix"),
		CacheDefaultTTL:    v.GetDuration("cache.default_ttl"),
		CacheMaxTTL:        v.GetDuration("cache.max_ttl"),
		CacheSweepInterval: v.GetDuration("cache.sweep_interval"),
		SharedCacheTTL:     v.GetDuration("cache.shared_ttl"),
		SingleFlight:       v.GetBool("cache.single_flight"),
		LogLevel:           v.GetString("log.level"),
		TraceExporter:      v.GetString("observe.trace_exporter"),
		MetricExporter:     v.GetString("observe.metric_exporter"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("config: http.addr is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: database.url is required")
	}
	if c.CacheDefaultTTL <= 0 {
		return fmt.Errorf("config: cache.default_ttl must be positive, got %v", c.CacheDefaultTTL)
	}
	if c.CacheSweepInterval <= 0 {
		return fmt.Errorf("config: cache.sweep_interval must be positive, got %v", c.CacheSweepInterval)
	}
	if c.SharedCacheTTL <= 0 {
		return fmt.Errorf("config: cache.shared_ttl must be positive, got %v", c.SharedCacheTTL)
	}
	return nil
}
