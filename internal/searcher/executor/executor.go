// Package executor runs parsed queries against the published index. The
// search itself is a pure function over an immutable snapshot and does no
// I/O.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/ranker"
)

// ErrNoIndex is returned when no index has been published yet.
var ErrNoIndex = errors.New("no index published")

type SearchResult struct {
	Query      string         `json:"query"`
	Seq        uint64         `json:"seq,omitempty"`
	Generation uint64         `json:"generation"`
	TotalHits  int            `json:"total_hits"`
	Results    []ranker.Hit   `json:"results"`
	TermStats  map[string]int `json:"term_stats,omitempty"`
}

// Names returns the result names in rank order.
func (r *SearchResult) Names() []string {
	names := make([]string, len(r.Results))
	for i, hit := range r.Results {
		names[i] = hit.Name
	}
	return names
}

// Search ranks snap against plan and returns at most limit hits; a limit
// of zero or less returns every match. An empty plan yields an empty
// result.
func Search(snap *index.Snapshot, plan *parser.QueryPlan, limit int) *SearchResult {
	return SearchFiltered(snap, plan, limit, nil)
}

// SearchFiltered is Search restricted to the names keep accepts. A nil keep
// accepts everything.
func SearchFiltered(snap *index.Snapshot, plan *parser.QueryPlan, limit int, keep func(name string) bool) *SearchResult {
	result := &SearchResult{
		Query:   plan.RawQuery,
		Results: []ranker.Hit{},
	}
	if plan.Empty() {
		return result
	}
	hits, termStats := ranker.Rank(snap, plan.Terms)
	if keep != nil {
		filtered := hits[:0]
		for _, h := range hits {
			if keep(h.Name) {
				filtered = append(filtered, h)
			}
		}
		hits = filtered
	}
	result.TotalHits = len(hits)
	result.TermStats = termStats
	result.Results = merger.Merge([][]ranker.Hit{hits}, limit)
	return result
}

// StateSource supplies the currently published index state.
type StateSource interface {
	Current() *indexer.State
}

type Executor struct {
	source StateSource
	logger *slog.Logger
}

func New(source StateSource) *Executor {
	return &Executor{
		source: source,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Execute runs plan against the current generation. The result is tagged
// with that generation so callers can tell which index produced it.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st := e.source.Current()
	if st == nil {
		return nil, ErrNoIndex
	}
	start := time.Now()

	var keep func(string) bool
	if plan.Category != "" {
		keep = func(name string) bool {
			rec, err := st.Store.Get(name)
			return err == nil && strings.EqualFold(rec.Category, plan.Category)
		}
	}
	result := SearchFiltered(st.Snapshot, plan, limit, keep)
	result.Generation = st.Generation

	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"category", plan.Category,
		"total_hits", result.TotalHits,
		"results", len(result.Results),
		"generation", st.Generation,
		"took", time.Since(start),
	)
	return result, nil
}
