package render

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
)

func tarRecord() catalog.CommandRecord {
	return catalog.CommandRecord{
		Name:        "tar",
		Category:    "Archive_Compression_Management",
		Description: "Create and extract archives",
		Syntax:      "tar [OPTIONS] FILE...",
		Options:     []catalog.Option{{Flag: "-x", Description: "extract"}, {Flag: "-z", Description: "gzip"}},
		Examples:    []catalog.Example{{Command: "tar -xzf a.tgz", Description: "extract a gzip archive"}},
		Tags:        []string{"archive", "gzip"},
	}
}

func TestSummary(t *testing.T) {
	rec := tarRecord()
	if got := Summary(rec); got != "tar  [Archive_Compression_Management] — Create and extract archives" {
		t.Fatalf("Summary = %q", got)
	}

	rec.Description = strings.Repeat("x", 200)
	got := Summary(rec)
	desc := got[strings.Index(got, "— ")+len("— "):]
	if len([]rune(desc)) != SummaryWidth || !strings.HasSuffix(desc, "...") {
		t.Fatalf("truncated description = %q (%d runes)", desc, len([]rune(desc)))
	}

	if got := Summary(catalog.CommandRecord{Category: "X"}); got != "<unnamed>  [X]" {
		t.Fatalf("Summary(empty) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if Truncate("short", 10) != "short" {
		t.Fatal("short strings must be unchanged")
	}
	if got := Truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("äöüäöü", 5); got != "äö..." {
		t.Fatalf("Truncate runes = %q", got)
	}
}

func TestDetail(t *testing.T) {
	out := Detail(tarRecord())
	for _, want := range []string{"Name\ntar", "Usage\ntar [OPTIONS] FILE...", "-x", "# extract a gzip archive", "$ tar -xzf a.tgz", "Tags\narchive, gzip"} {
		if !strings.Contains(out, want) {
			t.Errorf("Detail missing %q:\n%s", want, out)
		}
	}
	if Detail(catalog.CommandRecord{}) != "(no details available)" {
		t.Fatal("empty record detail")
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	rec := tarRecord()
	md := Markdown(rec)
	parsed, err := catalog.ParseMarkdown([]byte(md), "export.md", rec.Category)
	if err != nil {
		t.Fatalf("ParseMarkdown(export): %v\n%s", err, md)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d records", len(parsed))
	}
	got := parsed[0]
	got.Source = ""
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v\n%s", got, rec, md)
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(tarRecord(), 60)
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if !strings.Contains(out, "tar") || !strings.Contains(out, "extract") {
		t.Fatalf("Terminal output missing content:\n%s", out)
	}
}

func TestStylerPlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewStyler(&buf)
	if s.Enabled() {
		t.Fatal("buffer is not a terminal")
	}
	if got := s.SummaryLine(tarRecord()); got != Summary(tarRecord()) {
		t.Fatalf("plain SummaryLine = %q", got)
	}
}
