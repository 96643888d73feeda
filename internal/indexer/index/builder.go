// Package index builds the inverted index over command records. Each term
// maps to the records containing it together with the fields it appeared
// in, so a query can weight name hits above description hits.
package index

import (
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
)

// Builder turns a record set into a Snapshot. Its weights are validated
// once, at construction.
type Builder struct {
	weights Weights
}

// NewBuilder returns a *errors.ConfigError if any weight is negative or not
// finite.
func NewBuilder(w Weights) (*Builder, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Builder{weights: w}, nil
}

func (b *Builder) Weights() Weights {
	return b.weights
}

// Build indexes records in order. Building the same records twice yields
// structurally identical snapshots.
func (b *Builder) Build(records []catalog.CommandRecord) *Snapshot {
	mi := NewMemoryIndex()
	for _, rec := range records {
		mi.AddRecord(rec)
	}
	return mi.Freeze(b.weights)
}
