// Command analytics starts the standalone analytics aggregation service.
//
// It consumes search events from Kafka, aggregates them in memory (query
// counts, latency percentiles, cache hit rate, zero-result and missed command
// lookups) and exposes them at GET /api/v1/analytics. When PostgreSQL is
// configured, aggregated snapshots are persisted periodically and listed at
// GET /api/v1/analytics/snapshots.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and LCL_* env when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	if len(cfg.Kafka.Brokers) == 0 {
		slog.Error("analytics service requires kafka.brokers")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents, aggregator.HandleMessage())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil {
			slog.Error("consumer error", "error", err)
		}
	}()
	slog.Info("analytics consumer started",
		"topic", cfg.Kafka.Topics.SearchEvents,
		"group", cfg.Kafka.ConsumerGroup,
	)

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		select {
		case <-consumerDone:
			return health.ComponentHealth{Status: health.StatusDown, Message: "consumer stopped"}
		default:
			st := consumer.Stats()
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d processed, %d skipped", st.Processed, st.Failed),
			}
		}
	})

	var history analytics.History
	var saved <-chan struct{}
	if cfg.Postgres.Host != "" {
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()

		store := analytics.NewStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to create analytics schema", "error", err)
			os.Exit(1)
		}
		history = store
		saved = store.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pg.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
		slog.Info("snapshot persistence enabled", "interval", cfg.Analytics.SnapshotInterval)
	}

	analyticsHandler := analytics.NewHandler(aggregator, history)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsHandler.Snapshots)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	stop()
	<-consumerDone
	if saved != nil {
		<-saved
	}
	slog.Info("analytics service stopped")
}
