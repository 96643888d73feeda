package index

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is an immutable, fully built index. It is never modified after
// construction and is safe for concurrent readers; a rebuild produces a new
// Snapshot.
type Snapshot struct {
	names   []string
	terms   []TermEntry
	weights Weights
}

func newSnapshot(names []string, terms []TermEntry, w Weights) *Snapshot {
	return &Snapshot{names: names, terms: terms, weights: w}
}

// Restore rebuilds a Snapshot from persisted parts. Terms must be sorted
// and every posting must reference a known record.
func Restore(names []string, terms []TermEntry, w Weights) (*Snapshot, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	for i, entry := range terms {
		if i > 0 && terms[i-1].Term >= entry.Term {
			return nil, fmt.Errorf("term dictionary not sorted at %q", entry.Term)
		}
		for _, p := range entry.Postings {
			if p.RecordID < 0 || p.RecordID >= len(names) {
				return nil, fmt.Errorf("term %q references unknown record %d", entry.Term, p.RecordID)
			}
		}
	}
	return newSnapshot(names, terms, w), nil
}

func (s *Snapshot) Weights() Weights {
	return s.weights
}

func (s *Snapshot) RecordCount() int {
	return len(s.names)
}

func (s *Snapshot) TermCount() int {
	return len(s.terms)
}

// Name returns the command name for a record ID.
func (s *Snapshot) Name(id int) string {
	return s.names[id]
}

// Names returns a copy of the record name table.
func (s *Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

// Terms returns the sorted term dictionary. Callers must not modify it.
func (s *Snapshot) Terms() []TermEntry {
	return s.terms
}

// Lookup returns the postings for an exact term.
func (s *Snapshot) Lookup(term string) (PostingList, bool) {
	i := sort.Search(len(s.terms), func(i int) bool {
		return s.terms[i].Term >= term
	})
	if i < len(s.terms) && s.terms[i].Term == term {
		return s.terms[i].Postings, true
	}
	return nil, false
}

// PrefixRange returns the contiguous run of dictionary entries whose term
// starts with prefix. The cost is one binary search plus the size of the
// run. Callers must not modify the result.
func (s *Snapshot) PrefixRange(prefix string) []TermEntry {
	if prefix == "" {
		return nil
	}
	lo := sort.Search(len(s.terms), func(i int) bool {
		return s.terms[i].Term >= prefix
	})
	hi := lo
	for hi < len(s.terms) && strings.HasPrefix(s.terms[hi].Term, prefix) {
		hi++
	}
	return s.terms[lo:hi:hi]
}
