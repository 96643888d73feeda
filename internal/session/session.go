// Package session drives the interactive browse loop: a query is issued,
// its results are shown, one of them is opened and the user backs out
// again. Results are tagged with the sequence number of the query that
// produced them so a slow, superseded search can never overwrite a newer
// one.
package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

type State int

const (
	Idle State = iota
	Searching
	ResultsShown
	DetailShown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case ResultsShown:
		return "results"
	case DetailShown:
		return "detail"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	State    State
	Seq      uint64
	Query    string
	Results  *executor.SearchResult
	Selected string
}

type Session struct {
	mu       sync.Mutex
	state    State
	seq      uint64
	query    string
	results  *executor.SearchResult
	selected string
	logger   *slog.Logger
}

func New() *Session {
	return &Session{
		logger: slog.Default().With("component", "session"),
	}
}

// Input records a new or changed query from any state and returns the
// sequence number its results must be delivered with.
func (s *Session) Input(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.query = query
	s.state = Searching
	s.results = nil
	s.selected = ""
	return s.seq
}

// Deliver hands the result of the search issued with seq to the session.
// It reports false and drops the result when a newer query has been issued
// since, or when the session is no longer waiting for results.
func (s *Session) Deliver(seq uint64, result *executor.SearchResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq || s.state != Searching {
		s.logger.Debug("discarding stale result",
			"seq", seq,
			"current", s.seq,
			"state", s.state.String(),
		)
		return false
	}
	s.results = result
	s.state = ResultsShown
	return true
}

// Select opens the i-th (0-based) shown result and returns its name.
func (s *Session) Select(i int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != ResultsShown {
		return "", apperrors.Newf(apperrors.ErrInvalidInput, http.StatusConflict, "cannot select in state %s", s.state)
	}
	if s.results == nil || i < 0 || i >= len(s.results.Results) {
		return "", apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "no result %d", i+1)
	}
	s.selected = s.results.Results[i].Name
	s.state = DetailShown
	return s.selected, nil
}

// Back returns from the detail view to the result list it was opened from.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != DetailShown {
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusConflict, "cannot go back from state %s", s.state)
	}
	s.selected = ""
	s.state = ResultsShown
	return nil
}

// Reset clears the query and returns to Idle. Any search still in flight
// is invalidated.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.query = ""
	s.results = nil
	s.selected = ""
	s.state = Idle
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:    s.state,
		Seq:      s.seq,
		Query:    s.query,
		Results:  s.results,
		Selected: s.selected,
	}
}
