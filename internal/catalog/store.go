package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

// Source produces the raw records of a documentation corpus in source
// order. Implementations report malformed entries as *errors.ParseError.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]CommandRecord, error)
}

// LoadOptions tunes how strictly records are accepted.
type LoadOptions struct {
	// StrictCategories rejects records whose category is not in
	// AllowedCategories.
	StrictCategories bool
}

// Store is the immutable set of command records. It is safe for concurrent
// reads.
type Store struct {
	records []CommandRecord
	byName  map[string]int
}

// CategoryCount is the number of records filed under a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Load reads every record from src and builds a Store. Any malformed entry
// or duplicate name aborts the load with a *errors.ParseError; no partial
// store is returned.
func Load(ctx context.Context, src Source, opts LoadOptions) (*Store, error) {
	logger := slog.Default().With("component", "catalog")
	records, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", src.Name(), err)
	}
	if opts.StrictCategories {
		for _, rec := range records {
			if !IsAllowedCategory(rec.Category) {
				return nil, &apperrors.ParseError{
					Source: sourceOf(rec, src),
					Entry:  rec.Name,
					Reason: fmt.Sprintf("category %q is not allowed", rec.Category),
				}
			}
		}
	}
	store, err := NewStore(records)
	if err != nil {
		var perr *apperrors.ParseError
		if errors.As(err, &perr) && perr.Source == "" {
			perr.Source = src.Name()
		}
		return nil, err
	}
	logger.Info("catalog loaded",
		"source", src.Name(),
		"records", store.Len(),
	)
	return store, nil
}

// NewStore validates records and indexes them by name, preserving order.
func NewStore(records []CommandRecord) (*Store, error) {
	s := &Store{
		records: make([]CommandRecord, 0, len(records)),
		byName:  make(map[string]int, len(records)),
	}
	for _, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.Category = strings.TrimSpace(rec.Category)
		rec.Description = strings.TrimSpace(rec.Description)
		if err := ValidateRecord(&rec); err != nil {
			return nil, &apperrors.ParseError{
				Source: rec.Source,
				Entry:  rec.Name,
				Reason: err.Error(),
			}
		}
		if prev, dup := s.byName[rec.Name]; dup {
			return nil, &apperrors.ParseError{
				Source: rec.Source,
				Entry:  rec.Name,
				Reason: fmt.Sprintf("duplicate command name (first defined in %s)", s.records[prev].Source),
			}
		}
		s.byName[rec.Name] = len(s.records)
		s.records = append(s.records, rec.clone())
	}
	return s, nil
}

// Get returns the record with the given name.
func (s *Store) Get(name string) (CommandRecord, error) {
	idx, ok := s.byName[strings.TrimSpace(name)]
	if !ok {
		return CommandRecord{}, &apperrors.NotFoundError{Name: name}
	}
	return s.records[idx].clone(), nil
}

// Has reports whether a record with the given name exists.
func (s *Store) Has(name string) bool {
	_, ok := s.byName[strings.TrimSpace(name)]
	return ok
}

// All returns every record in source order.
func (s *Store) All() []CommandRecord {
	out := make([]CommandRecord, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.clone()
	}
	return out
}

// Names returns every record name in source order.
func (s *Store) Names() []string {
	out := make([]string, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Name
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// ByCategory returns the records filed under category, in source order.
func (s *Store) ByCategory(category string) []CommandRecord {
	var out []CommandRecord
	for _, rec := range s.records {
		if strings.EqualFold(rec.Category, category) {
			out = append(out, rec.clone())
		}
	}
	return out
}

// Categories returns each category with its record count, sorted by name.
func (s *Store) Categories() []CategoryCount {
	counts := make(map[string]int)
	for _, rec := range s.records {
		counts[rec.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Category < out[j].Category
	})
	return out
}

func sourceOf(rec CommandRecord, src Source) string {
	if rec.Source != "" {
		return rec.Source
	}
	return src.Name()
}
