package resolver

import (
	"errors"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

func store(t *testing.T) *catalog.Store {
	t.Helper()
	s, err := catalog.NewStore([]catalog.CommandRecord{
		{Name: "ping", Category: "Networking", Description: "Check connectivity"},
		{Name: "ip", Category: "Networking", Description: "show/modify IP"},
		{Name: "iptables", Category: "Network_Security", Description: "packet filter administration"},
		{Name: "tar", Category: "Archive", Description: "archive files"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestResolve(t *testing.T) {
	s := store(t)
	rec, err := Resolve(s, "ping")
	if err != nil || rec.Name != "ping" || rec.Category != "Networking" {
		t.Fatalf("Resolve(ping) = %+v, %v", rec, err)
	}
	_, err = Resolve(s, "nonexistent")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Resolve(nonexistent) error = %v, want ErrNotFound", err)
	}
}

func TestSuggest(t *testing.T) {
	s := store(t)
	got := SuggestNames(s, "iptabls", 3)
	if len(got) == 0 || got[0] != "iptables" {
		t.Fatalf("Suggest(iptabls) = %v, want iptables first", got)
	}
	for _, name := range SuggestNames(s, "pn", 5) {
		if name == "tar" {
			t.Fatalf("tar cannot match pn")
		}
	}
	if got := Suggest(s, "   ", 3); got != nil {
		t.Fatalf("Suggest(blank) = %v", got)
	}
	if got := Suggest(s, "xyzzy", 3); len(got) != 0 {
		t.Fatalf("Suggest(xyzzy) = %v", got)
	}
	if got := Suggest(s, "i", 1); len(got) > 1 {
		t.Fatalf("Suggest limit ignored: %v", got)
	}
}
