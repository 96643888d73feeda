// Package resolver expands a selected command name into its full record
// and, on a miss, proposes close names.
package resolver

import (
	"sort"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
)

// Resolve returns the full record for name. It is a pure lookup and fails
// with *errors.NotFoundError when name is not in store, for example after
// a reload dropped it.
func Resolve(store *catalog.Store, name string) (catalog.CommandRecord, error) {
	return store.Get(name)
}

// Suggestion is a fuzzy candidate for a missing name.
type Suggestion struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

var initAlgo sync.Once

// Suggest returns up to n names from store that fuzzy-match name, best
// first. Ties order by name.
func Suggest(store *catalog.Store, name string, n int) []Suggestion {
	pattern := []rune(strings.ToLower(strings.TrimSpace(name)))
	if len(pattern) == 0 || n <= 0 {
		return nil
	}
	initAlgo.Do(func() { algo.Init("default") })

	slab := util.MakeSlab(100*1024, 2048)
	var out []Suggestion
	for _, candidate := range store.Names() {
		chars := util.ToChars([]byte(candidate))
		res, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
		if res.Start < 0 || res.Score <= 0 {
			continue
		}
		out = append(out, Suggestion{Name: candidate, Score: res.Score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// SuggestNames is Suggest reduced to names.
func SuggestNames(store *catalog.Store, name string, n int) []string {
	suggestions := Suggest(store, name, n)
	names := make([]string, len(suggestions))
	for i, s := range suggestions {
		names[i] = s.Name
	}
	return names
}
