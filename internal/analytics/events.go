// Package analytics collects usage events from the search service,
// publishes them to Kafka and aggregates them into running statistics.
package analytics

import "time"

type EventType string

const (
	EventSearch      EventType = "search"
	EventZeroResult  EventType = "zero_result"
	EventResolve     EventType = "resolve"
	EventResolveMiss EventType = "resolve_miss"
	EventReload      EventType = "reload"
)

// SearchEvent describes one executed query.
type SearchEvent struct {
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	Terms      []string  `json:"terms"`
	Category   string    `json:"category,omitempty"`
	TotalHits  int       `json:"total_hits"`
	Returned   int       `json:"returned"`
	LatencyMs  float64   `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Generation uint64    `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

// ResolveEvent describes one detail lookup.
type ResolveEvent struct {
	Type      EventType `json:"type"`
	Name      string    `json:"name"`
	Found     bool      `json:"found"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// ReloadEvent describes one index rebuild.
type ReloadEvent struct {
	Type       EventType `json:"type"`
	Generation uint64    `json:"generation"`
	Records    int       `json:"records"`
	FromCache  bool      `json:"from_cache"`
	Error      string    `json:"error,omitempty"`
	LatencyMs  float64   `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// TypeOf returns the type tag of a known event, or "" for anything else.
func TypeOf(event any) EventType {
	switch e := event.(type) {
	case SearchEvent:
		return e.Type
	case ResolveEvent:
		return e.Type
	case ReloadEvent:
		return e.Type
	default:
		return ""
	}
}

// Key is the Kafka partition key for an event: searches partition by query,
// lookups by command name.
func Key(event any) string {
	switch e := event.(type) {
	case SearchEvent:
		return "search:" + e.Query
	case ResolveEvent:
		return "resolve:" + e.Name
	case ReloadEvent:
		return "reload"
	default:
		return "analytics"
	}
}
