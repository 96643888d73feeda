package index

import (
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/tokenizer"
)

// MemoryIndex accumulates postings while records are added. It is the
// mutable half of the index; Freeze turns it into an immutable Snapshot.
type MemoryIndex struct {
	mu    sync.RWMutex
	index map[string]map[int]FieldSet
	names []string
	size  int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		index: make(map[string]map[int]FieldSet),
	}
}

// AddRecord indexes the name, option flags, category and description of
// rec and returns the record's ID.
func (m *MemoryIndex) AddRecord(rec catalog.CommandRecord) int {
	termData := make(map[string]FieldSet)
	add := func(f Field, text string) {
		for _, term := range tokenizer.Terms(text) {
			termData[term] = termData[term].With(f)
		}
	}
	add(FieldName, rec.Name)
	for _, opt := range rec.Options {
		add(FieldOption, opt.Flag)
	}
	add(FieldCategory, rec.Category)
	add(FieldDescription, rec.Description)

	m.mu.Lock()
	defer m.mu.Unlock()

	id := len(m.names)
	m.names = append(m.names, rec.Name)
	for term, fields := range termData {
		if _, exists := m.index[term]; !exists {
			m.index[term] = make(map[int]FieldSet)
		}
		m.index[term][id] = fields
		m.size += int64(len(term) + 16)
	}
	m.size += int64(len(rec.Name) + 16)
	return id
}

// Lookup returns the postings for an exact term, ordered by record ID.
func (m *MemoryIndex) Lookup(term string) PostingList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs, exists := m.index[term]
	if !exists {
		return nil
	}
	return sortedPostings(docs)
}

// Entries returns the term dictionary sorted by term, with postings sorted
// by record ID.
func (m *MemoryIndex) Entries() []TermEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]TermEntry, 0, len(m.index))
	for term, docs := range m.index {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: sortedPostings(docs),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Freeze snapshots the accumulated postings under the given weights.
func (m *MemoryIndex) Freeze(w Weights) *Snapshot {
	entries := m.Entries()
	m.mu.RLock()
	names := append([]string(nil), m.names...)
	m.mu.RUnlock()
	return newSnapshot(names, entries, w)
}

func (m *MemoryIndex) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

func (m *MemoryIndex) RecordCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}

func sortedPostings(docs map[int]FieldSet) PostingList {
	postings := make(PostingList, 0, len(docs))
	for id, fields := range docs {
		postings = append(postings, Posting{RecordID: id, Fields: fields})
	}
	sort.Slice(postings, func(i, j int) bool {
		return postings[i].RecordID < postings[j].RecordID
	})
	return postings
}
