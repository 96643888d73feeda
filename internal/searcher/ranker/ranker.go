// Package ranker scores records against query tokens. A record earns, for
// every distinct query token, the weight of each field holding a term that
// starts with that token. A field counts once per query token no matter how
// many of its terms match.
package ranker

import (
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/index"
)

// Hit is a scored command.
type Hit struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Before reports whether a ranks ahead of b: higher score first, then
// lexicographically smaller name.
func Before(a, b Hit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Name < b.Name
}

// Rank returns every record with a positive score, unordered, and the
// number of records each query token matched. Work is bounded by the
// dictionary runs the tokens select, not by the number of records.
func Rank(snap *index.Snapshot, terms []string) ([]Hit, map[string]int) {
	weights := snap.Weights()
	scores := make(map[int]float64)
	termStats := make(map[string]int, len(terms))
	for _, term := range terms {
		matched := make(map[int]index.FieldSet)
		for _, entry := range snap.PrefixRange(term) {
			for _, p := range entry.Postings {
				matched[p.RecordID] |= p.Fields
			}
		}
		if len(matched) == 0 {
			continue
		}
		termStats[term] = len(matched)
		for id, fields := range matched {
			scores[id] += weights.Sum(fields)
		}
	}
	hits := make([]Hit, 0, len(scores))
	for id, score := range scores {
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{Name: snap.Name(id), Score: score})
	}
	return hits, termStats
}
