// Command searcher serves the command library over HTTP.
//
// It loads the commands once, builds the index, and answers prefix searches
// and lookups from the in-memory snapshot. Redis shares search results
// between replicas, Kafka carries search events to the analytics service,
// and Prometheus metrics are served on /metrics.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
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
	"time"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/admin"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/resilience"
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
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"commands", cfg.Catalog.Path,
		"format", cfg.Catalog.Format,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)

	var src catalog.Source
	if cfg.Catalog.Format == config.FormatMarkdown {
		src = catalog.NewMarkdownSource(cfg.Catalog.Path, cfg.Catalog.DefaultCategory)
	} else {
		src = catalog.NewYAMLSource(cfg.Catalog.Path, cfg.Catalog.DefaultCategory)
	}
	engine, err := indexer.NewEngine(ctx, src, cfg.Indexer, indexer.Options{
		StrictCategories: cfg.Catalog.StrictCategories,
		OnPublish: func(st *indexer.State) {
			m.IndexRecords.Set(float64(st.Store.Len()))
			m.IndexTerms.Set(float64(st.Snapshot.TermCount()))
			m.IndexGeneration.Set(float64(st.Generation))
		},
	})
	if err != nil {
		// A corrupt dataset cannot be served; fail before accepting queries.
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, cache.WithBreakerHook(func(name string, from, to resilience.State) {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}))
			slog.Info("search cache enabled",
				"addr", cfg.Redis.Addr,
				"ttl", cfg.Redis.CacheTTL,
			)
		}
	}

	var producer *kafka.Producer
	var publisher analytics.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		publisher = producer
		slog.Info("publishing search events", "topic", cfg.Kafka.Topics.SearchEvents)
	}
	aggregator := analytics.NewAggregator()
	collector := analytics.NewCollector(publisher, cfg.Analytics, aggregator)
	collector.Start(ctx)

	adminToken := cfg.Admin.Token
	if adminToken == "" && cfg.Admin.TokenFile != "" {
		if tok, err := admin.ReadToken(cfg.Admin.TokenFile); err == nil {
			adminToken = tok
		}
	}
	if adminToken == "" {
		slog.Warn("no admin token configured, admin endpoints disabled")
	}
	var commandsDir string
	if info, err := os.Stat(cfg.Catalog.Path); err == nil && info.IsDir() && cfg.Catalog.Format == config.FormatYAML {
		commandsDir = cfg.Catalog.Path
	}

	h := handler.New(handler.Config{
		Engine:       engine,
		Cache:        queryCache,
		Collector:    collector,
		Metrics:      m,
		AdminToken:   adminToken,
		CommandsDir:  commandsDir,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
	})
	analyticsH := analytics.NewHandler(aggregator, nil)

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		st := engine.Current()
		if st == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no index published"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("generation %d, %d commands", st.Generation, st.Store.Len()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port > 0 {
			shutdownMetrics, err = metrics.StartServer(cfg.Metrics.Port)
			if err != nil {
				slog.Error("failed to start metrics server", "error", err)
				os.Exit(1)
			}
		} else {
			mux.Handle("GET /metrics", metrics.Handler())
		}
	}

	limiter := ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateWindow)
	go limiter.RunCleanup(ctx, time.Minute)

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RateLimit(limiter, m)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
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
		if shutdownMetrics != nil {
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	stop()
	collector.Close()
	if producer != nil {
		if err := producer.Close(); err != nil {
			slog.Error("kafka producer close error", "error", err)
		}
	}
	slog.Info("search service stopped")
}
