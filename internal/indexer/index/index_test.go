package index

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

func testRecords() []catalog.CommandRecord {
	return []catalog.CommandRecord{
		{
			Name:        "ping",
			Category:    "Networking",
			Description: "Check connectivity",
			Options:     []catalog.Option{{Flag: "-c", Description: "count"}, {Flag: "--interval"}},
		},
		{
			Name:        "ip",
			Category:    "Networking",
			Description: "show/modify IP",
		},
	}
}

func TestNewBuilderRejectsBadWeights(t *testing.T) {
	tests := []struct {
		name string
		w    Weights
	}{
		{"negative", Weights{Name: 4, Option: -1, Category: 2, Description: 1}},
		{"nan", Weights{Name: math.NaN()}},
		{"inf", Weights{Description: math.Inf(1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBuilder(tc.w)
			var cerr *apperrors.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("NewBuilder() error = %v, want *ConfigError", err)
			}
		})
	}
	if _, err := NewBuilder(Weights{}); err != nil {
		t.Fatalf("all-zero weights should be accepted: %v", err)
	}
}

func TestBuildFieldMasks(t *testing.T) {
	b, err := NewBuilder(DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	snap := b.Build(testRecords())

	if snap.RecordCount() != 2 || snap.Name(1) != "ip" {
		t.Fatalf("names = %v", snap.Names())
	}

	postings, ok := snap.Lookup("ip")
	if !ok || len(postings) != 1 {
		t.Fatalf("Lookup(ip) = %v, %v", postings, ok)
	}
	if p := postings[0]; p.RecordID != 1 || !p.Fields.Has(FieldName) || !p.Fields.Has(FieldDescription) {
		t.Fatalf("ip posting = %+v (%s)", p, p.Fields)
	}

	postings, _ = snap.Lookup("networking")
	if len(postings) != 2 || postings[0].Fields != FieldSet(0).With(FieldCategory) {
		t.Fatalf("networking postings = %+v", postings)
	}

	postings, _ = snap.Lookup("interval")
	if len(postings) != 1 || !postings[0].Fields.Has(FieldOption) {
		t.Fatalf("interval postings = %+v", postings)
	}

	if _, ok := snap.Lookup("count"); ok {
		t.Fatal("option descriptions must not be indexed")
	}
	if _, ok := snap.Lookup("c"); ok {
		t.Fatal("single-character tokens must be dropped")
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	b, _ := NewBuilder(DefaultWeights())
	first := b.Build(testRecords())
	second := b.Build(testRecords())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two builds of the same records differ")
	}
}

func TestPrefixRange(t *testing.T) {
	b, _ := NewBuilder(DefaultWeights())
	snap := b.Build(testRecords())

	var got []string
	for _, e := range snap.PrefixRange("i") {
		got = append(got, e.Term)
	}
	want := []string{"interval", "ip"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PrefixRange(i) = %v, want %v", got, want)
	}
	if r := snap.PrefixRange("ipx"); len(r) != 0 {
		t.Fatalf("PrefixRange(ipx) = %v", r)
	}
	if r := snap.PrefixRange(""); r != nil {
		t.Fatalf("PrefixRange(\"\") = %v", r)
	}
	if r := snap.PrefixRange("zzz"); len(r) != 0 {
		t.Fatalf("PrefixRange(zzz) = %v", r)
	}
}

func TestWeightsSum(t *testing.T) {
	w := DefaultWeights()
	all := FieldSet(0).With(FieldName).With(FieldOption).With(FieldCategory).With(FieldDescription)
	if got := w.Sum(all); got != 10 {
		t.Fatalf("Sum(all) = %v, want 10", got)
	}
	if got := w.Sum(FieldSet(0).With(FieldCategory)); got != 2 {
		t.Fatalf("Sum(category) = %v, want 2", got)
	}
	if all.String() != "name|option|category|description" {
		t.Fatalf("FieldSet.String() = %q", all.String())
	}
}

func TestRestoreValidates(t *testing.T) {
	names := []string{"ls"}
	good := []TermEntry{{Term: "ls", Postings: PostingList{{RecordID: 0, Fields: 1}}}}
	if _, err := Restore(names, good, DefaultWeights()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	unsorted := []TermEntry{{Term: "zz"}, {Term: "aa"}}
	if _, err := Restore(names, unsorted, DefaultWeights()); err == nil {
		t.Fatal("expected error for unsorted dictionary")
	}
	dangling := []TermEntry{{Term: "ls", Postings: PostingList{{RecordID: 3}}}}
	if _, err := Restore(names, dangling, DefaultWeights()); err == nil {
		t.Fatal("expected error for dangling record id")
	}
}

func benchRecords(n int) []catalog.CommandRecord {
	words := []string{"network", "archive", "process", "disk", "user", "package", "text", "monitor"}
	recs := make([]catalog.CommandRecord, n)
	for i := range recs {
		recs[i] = catalog.CommandRecord{
			Name:        fmt.Sprintf("cmd%d", i),
			Category:    words[i%len(words)],
			Description: fmt.Sprintf("manage %s and %s resources", words[(i+1)%len(words)], words[(i+2)%len(words)]),
			Options:     []catalog.Option{{Flag: "--" + words[(i+3)%len(words)]}},
		}
	}
	return recs
}

// BenchmarkBuild measures full index construction over 5 000 records.
func BenchmarkBuild(b *testing.B) {
	recs := benchRecords(5000)
	builder, _ := NewBuilder(DefaultWeights())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap := builder.Build(recs)
		_ = snap
	}
}

// BenchmarkPrefixRangeParallel measures concurrent dictionary reads.
func BenchmarkPrefixRangeParallel(b *testing.B) {
	builder, _ := NewBuilder(DefaultWeights())
	snap := builder.Build(benchRecords(10000))
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r := snap.PrefixRange("pro")
			_ = r
		}
	})
}
