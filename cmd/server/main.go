// Command server runs the Jargon content backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Jargon-IDSP/backend-sub001/cache"
	"github.com/Jargon-IDSP/backend-sub001/config"
	"github.com/Jargon-IDSP/backend-sub001/health"
	"github.com/Jargon-IDSP/backend-sub001/httpapi"
	"github.com/Jargon-IDSP/backend-sub001/observe"
	"github.com/Jargon-IDSP/backend-sub001/pick"
	"github.com/Jargon-IDSP/backend-sub001/shared"
	"github.com/Jargon-IDSP/backend-sub001/store"
)

const (
	serviceName = "jargon-backend"
	version     = "1.2.0"
)

func main() {
	if err := run(); err != nil {
		zap.NewExample().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := observe.New(ctx, observe.Config{
		ServiceName:    serviceName,
		Version:        version,
		LogLevel:       cfg.LogLevel,
		TraceExporter:  cfg.TraceExporter,
		MetricExporter: cfg.MetricExporter,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()
	log := tel.Logger

	metrics, err := observe.NewCacheMetrics(tel.Meter)
	if err != nil {
		return err
	}

	db, err := store.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	sharedClient := shared.NewClient(rdb, shared.Config{Prefix: cfg.RedisPrefix, Tracer: tel.Tracer}, log)
	sharedClient.OnError(func() { metrics.RecordSharedError(context.Background()) })

	local := cache.NewStore(cache.Policy{
		DefaultTTL:    cfg.CacheDefaultTTL,
		MaxTTL:        cfg.CacheMaxTTL,
		SweepInterval: cfg.CacheSweepInterval,
	})
	defer local.Close()
	local.OnSweep(func(removed int) { metrics.RecordEvictions(context.Background(), removed) })

	orch := cache.NewOrchestrator(local, cache.OrchestratorConfig{
		SingleFlight: cfg.SingleFlight,
	})

	index := pick.NewIndex(func(ctx context.Context) ([]pick.Entry, error) {
		refs, err := db.ListTermRefs(ctx)
		if err != nil {
			return nil, err
		}
		entries := make([]pick.Entry, len(refs))
		for i, ref := range refs {
			entries[i] = pick.Entry{ID: ref.ID, IndustryID: ref.IndustryID, LevelID: ref.LevelID}
		}
		return entries, nil
	}, log)
	index.Reload(ctx)

	reg := health.NewRegistry()
	reg.Register(health.PingCheck("database", db, false))
	reg.Register(health.PingCheck("shared-cache", sharedClient, true))

	api := httpapi.NewServer(httpapi.ServerConfig{
		Repo:      db,
		Orch:      orch,
		Shared:    sharedClient,
		Index:     index,
		Metrics:   metrics,
		Tracer:    tel.Tracer,
		Log:       log,
		SharedTTL: cfg.SharedCacheTTL,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(reg, tel.MetricsHandler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
