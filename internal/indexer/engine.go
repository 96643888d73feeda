// Package indexer owns the index lifecycle: load the command source once,
// build an immutable snapshot, and publish it for readers. A reload builds
// a complete replacement and swaps it in atomically; readers holding the
// previous State keep using it undisturbed.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/tracing"
)

// State is one published generation of the record store and its index.
type State struct {
	Store       *catalog.Store
	Snapshot    *index.Snapshot
	Generation  uint64
	Fingerprint uint64
	LoadedAt    time.Time
	FromCache   bool
}

// Options tunes how the engine loads its source.
type Options struct {
	StrictCategories bool
	// OnPublish, when set, is called after every successful swap.
	OnPublish func(*State)
}

type Engine struct {
	source   catalog.Source
	builder  *index.Builder
	writer   *segment.Writer
	cacheDir string
	opts     Options
	logger   *slog.Logger

	state      atomic.Pointer[State]
	generation atomic.Uint64
	reloadMu   sync.Mutex
}

// NewEngine validates the weights, loads the source and builds the first
// snapshot. A *errors.ConfigError or *errors.ParseError aborts construction.
func NewEngine(ctx context.Context, src catalog.Source, cfg config.IndexerConfig, opts Options) (*Engine, error) {
	builder, err := index.NewBuilder(index.WeightsFromConfig(cfg.Weights))
	if err != nil {
		return nil, err
	}
	e := &Engine{
		source:   src,
		builder:  builder,
		cacheDir: cfg.CacheDir,
		opts:     opts,
		logger:   slog.Default().With("component", "indexer"),
	}
	if cfg.CacheDir != "" {
		e.writer = segment.NewWriter(cfg.CacheDir)
	}
	if _, err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Current returns the published state. It never returns nil after
// NewEngine succeeds.
func (e *Engine) Current() *State {
	return e.state.Load()
}

// Reload rebuilds the store and index from the source and publishes them
// as a new generation. On failure the previous state stays published.
func (e *Engine) Reload(ctx context.Context) (*State, error) {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	ctx, span := tracing.StartSpan(ctx, "indexer.reload", "")
	defer span.Log(e.logger)

	next, err := e.build(ctx)
	if err != nil {
		span.Fail(err)
		if prev := e.state.Load(); prev != nil {
			e.logger.Error("reload failed, keeping previous index",
				"generation", prev.Generation,
				"error", err,
			)
		}
		return nil, err
	}
	next.Generation = e.generation.Add(1)
	e.state.Store(next)
	span.SetAttr("generation", next.Generation)
	span.End()

	e.logger.Info("index published",
		"generation", next.Generation,
		"records", next.Store.Len(),
		"terms", next.Snapshot.TermCount(),
		"from_cache", next.FromCache,
		"fingerprint", fmt.Sprintf("%016x", next.Fingerprint),
	)
	if e.opts.OnPublish != nil {
		e.opts.OnPublish(next)
	}
	return next, nil
}

func (e *Engine) build(ctx context.Context) (*State, error) {
	loadCtx, loadSpan := tracing.StartChildSpan(ctx, "catalog.load")
	store, err := catalog.Load(loadCtx, e.source, catalog.LoadOptions{
		StrictCategories: e.opts.StrictCategories,
	})
	if err != nil {
		loadSpan.Fail(err)
		return nil, err
	}
	loadSpan.SetAttr("records", store.Len())
	loadSpan.End()

	records := store.All()
	fp := Fingerprint(records, e.builder.Weights())

	if snap := e.loadCached(ctx, fp, store); snap != nil {
		return &State{
			Store:       store,
			Snapshot:    snap,
			Fingerprint: fp,
			LoadedAt:    time.Now(),
			FromCache:   true,
		}, nil
	}

	_, buildSpan := tracing.StartChildSpan(ctx, "index.build")
	snap := e.builder.Build(records)
	buildSpan.SetAttr("terms", snap.TermCount())
	buildSpan.End()

	e.persist(ctx, snap, fp)
	return &State{
		Store:       store,
		Snapshot:    snap,
		Fingerprint: fp,
		LoadedAt:    time.Now(),
	}, nil
}

// loadCached returns the cached snapshot for fp, or nil when there is no
// usable segment.
func (e *Engine) loadCached(ctx context.Context, fp uint64, store *catalog.Store) *index.Snapshot {
	if e.cacheDir == "" {
		return nil
	}
	_, span := tracing.StartChildSpan(ctx, "segment.open")
	defer span.End()

	path := filepath.Join(e.cacheDir, segment.FileName(fp))
	reader, err := segment.OpenReader(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("ignoring unreadable segment", "path", path, "error", err)
		}
		span.SetAttr("hit", false)
		return nil
	}
	snap, err := reader.Snapshot()
	if err != nil || reader.Fingerprint() != fp || !slices.Equal(snap.Names(), store.Names()) {
		e.logger.Warn("ignoring stale segment", "path", path, "error", err)
		span.SetAttr("hit", false)
		return nil
	}
	span.SetAttr("hit", true)
	return snap
}

func (e *Engine) persist(ctx context.Context, snap *index.Snapshot, fp uint64) {
	if e.writer == nil {
		return
	}
	_, span := tracing.StartChildSpan(ctx, "segment.write")
	path, err := e.writer.Write(snap, fp)
	if err != nil {
		span.Fail(err)
		e.logger.Warn("failed to cache index segment", "error", err)
		return
	}
	span.End()
	e.logger.Debug("index segment written", "path", path)
	e.pruneSegments(filepath.Base(path))
}

// pruneSegments removes cached segments other than keep.
func (e *Engine) pruneSegments(keep string) {
	entries, err := os.ReadDir(e.cacheDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == keep || filepath.Ext(name) != segment.FileExt {
			continue
		}
		if err := os.Remove(filepath.Join(e.cacheDir, name)); err != nil {
			e.logger.Warn("removing old segment", "segment", name, "error", err)
		}
	}
}
