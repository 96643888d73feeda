package ranker

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/index"
)

func snapshot(t *testing.T, w index.Weights, recs ...catalog.CommandRecord) *index.Snapshot {
	t.Helper()
	b, err := index.NewBuilder(w)
	if err != nil {
		t.Fatal(err)
	}
	return b.Build(recs)
}

func scoresOf(hits []Hit) map[string]float64 {
	out := make(map[string]float64, len(hits))
	for _, h := range hits {
		out[h.Name] = h.Score
	}
	return out
}

func TestRankPrefixPrecision(t *testing.T) {
	snap := snapshot(t, index.DefaultWeights(),
		catalog.CommandRecord{Name: "ping", Category: "Networking", Description: "Check connectivity", Options: []catalog.Option{{Flag: "-c"}}},
		catalog.CommandRecord{Name: "ip", Category: "Networking", Description: "show/modify IP"},
	)
	hits, stats := Rank(snap, []string{"ip"})
	got := scoresOf(hits)
	if len(got) != 1 || got["ip"] != 5 {
		t.Fatalf("Rank(ip) = %v, want only ip scored 5", got)
	}
	if stats["ip"] != 1 {
		t.Fatalf("term stats = %v", stats)
	}
}

func TestRankFieldCountsOncePerToken(t *testing.T) {
	snap := snapshot(t, index.DefaultWeights(),
		catalog.CommandRecord{Name: "grep", Category: "Text", Description: "print print printing lines", Options: []catalog.Option{{Flag: "--print0"}}},
	)
	hits, _ := Rank(snap, []string{"pr"})
	if got := scoresOf(hits)["grep"]; got != 3+1 {
		t.Fatalf("score = %v, want option+description = 4", got)
	}
}

func TestRankSumsAcrossTokens(t *testing.T) {
	snap := snapshot(t, index.DefaultWeights(),
		catalog.CommandRecord{Name: "tar", Category: "Archive", Description: "create archive files"},
		catalog.CommandRecord{Name: "zip", Category: "Archive", Description: "package files"},
	)
	hits, stats := Rank(snap, []string{"tar", "arch"})
	got := scoresOf(hits)
	if got["tar"] != 4+2+1 {
		t.Fatalf("tar score = %v, want 7", got["tar"])
	}
	if got["zip"] != 2 {
		t.Fatalf("zip score = %v, want 2", got["zip"])
	}
	if stats["arch"] != 2 || stats["tar"] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestRankExcludesZeroScores(t *testing.T) {
	w := index.Weights{Name: 1}
	snap := snapshot(t, w,
		catalog.CommandRecord{Name: "ls", Category: "Files", Description: "list files"},
		catalog.CommandRecord{Name: "find", Category: "Files", Description: "search for files"},
	)
	hits, _ := Rank(snap, []string{"fi"})
	got := scoresOf(hits)
	if len(got) != 1 || got["find"] != 1 {
		t.Fatalf("Rank(fi) = %v, want only find", got)
	}
}

func TestBefore(t *testing.T) {
	if !Before(Hit{Name: "b", Score: 2}, Hit{Name: "a", Score: 1}) {
		t.Fatal("higher score must rank first")
	}
	if !Before(Hit{Name: "a", Score: 1}, Hit{Name: "b", Score: 1}) {
		t.Fatal("equal scores must order by name")
	}
}
