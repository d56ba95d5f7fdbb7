// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"healthcare-storefront/internal/config"
	"healthcare-storefront/internal/domain/ports/repository"
	"healthcare-storefront/internal/infra/analytics"
	"healthcare-storefront/internal/infra/assets"
	"healthcare-storefront/internal/infra/gateway"
	"healthcare-storefront/internal/infra/kv"
	"healthcare-storefront/internal/infra/ledger"
	"healthcare-storefront/internal/infra/logging"
	"healthcare-storefront/internal/infra/metrics"
	"healthcare-storefront/internal/infra/notify"
	"healthcare-storefront/internal/infra/sched"
	"healthcare-storefront/internal/infra/web"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, short latency)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}
	metrics.MustRegister()

	// ---- Storage ----
	var store repository.KeyValueStore
	if cfg.Storage.RedisURL != "" {
		redisStore, err := kv.NewRedisStore(ctx, &cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		logger.Warn().Msg("no redis configured; grants and analytics are in-memory only")
		store = kv.NewMemoryStore()
	}
	gw := kv.NewGateway(store, logger)
	demoLedger := ledger.New(gw, nil, logger)

	// ---- Simulated backend ----
	sim := gateway.NewSimulator(logger, gateway.WithLatency(cfg.Simulator.Latency))
	interceptor := gateway.NewInterceptor(sim, nil)

	// ---- Notifications ----
	notifier := notify.New(notify.NewLogDisplay(logger), logger)

	// ---- Analytics ----
	collector := analytics.New(ctx, interceptor.Client(), gw, cfg.Analytics.FlushInterval, logger)
	go collector.Run(ctx)

	// ---- Static asset cache ----
	cache := assets.NewCache(cfg.Cache.Version, os.DirFS(cfg.Server.AssetsDir), logger)
	cache.Precache(cfg.Cache.Precache)
	cache.Activate()

	// ---- HTTP server ----
	srv := web.NewServer(sim, cache, notifier, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Expiry worker ----
	worker := sched.NewExpiryWorker(cfg.Scheduler.SweepInterval, demoLedger, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	_ = server.Shutdown(context.Background())
}
