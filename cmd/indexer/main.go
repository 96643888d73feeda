// Command indexer builds the index segment cache ahead of time.
//
// It loads the commands, builds the index and writes the segment to the
// configured cache directory so that searchers started afterwards open the
// cached segment instead of rebuilding. When Kafka is configured the build
// is reported to the analytics topic as a reload event.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-cache-dir .lcl_cache]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and LCL_* env when empty)")
	cacheDir := flag.String("cache-dir", "", "segment cache directory (overrides indexer.cache_dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *cacheDir != "" {
		cfg.Indexer.CacheDir = *cacheDir
	}

	logger.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if cfg.Indexer.CacheDir == "" {
		slog.Error("no cache directory configured, nothing to build")
		os.Exit(1)
	}
	slog.Info("building index segment",
		"commands", cfg.Catalog.Path,
		"cache_dir", cfg.Indexer.CacheDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src catalog.Source
	if cfg.Catalog.Format == config.FormatMarkdown {
		src = catalog.NewMarkdownSource(cfg.Catalog.Path, cfg.Catalog.DefaultCategory)
	} else {
		src = catalog.NewYAMLSource(cfg.Catalog.Path, cfg.Catalog.DefaultCategory)
	}

	start := time.Now()
	engine, err := indexer.NewEngine(ctx, src, cfg.Indexer, indexer.Options{
		StrictCategories: cfg.Catalog.StrictCategories,
	})
	event := analytics.ReloadEvent{
		Type:      analytics.EventReload,
		LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		event.Error = err.Error()
		report(cfg.Kafka, event)
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	st := engine.Current()
	event.Generation = st.Generation
	event.Records = st.Store.Len()
	event.FromCache = st.FromCache
	report(cfg.Kafka, event)

	slog.Info("index segment ready",
		"records", st.Store.Len(),
		"terms", st.Snapshot.TermCount(),
		"fingerprint", fmt.Sprintf("%016x", st.Fingerprint),
		"from_cache", st.FromCache,
		"duration", time.Since(start),
	)
}

func report(cfg config.KafkaConfig, event analytics.ReloadEvent) {
	if len(cfg.Brokers) == 0 {
		return
	}
	producer := kafka.NewProducer(cfg, cfg.Topics.SearchEvents)
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := producer.Publish(ctx, kafka.Event{Key: analytics.Key(event), Type: string(event.Type), Value: event}); err != nil {
		slog.Warn("failed to report index build", "error", err)
	}
}
