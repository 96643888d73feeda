package suggestions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
)

func fixedInbox(t *testing.T) *Inbox {
	t.Helper()
	in := NewInbox(filepath.Join(t.TempDir(), ".inbox", "suggestions"))
	in.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return in
}

func TestSaveWritesMetaAndRecord(t *testing.T) {
	t.Setenv("USER", "alice")
	in := fixedInbox(t)
	rec := catalog.CommandRecord{
		Name:        "ss",
		Category:    "Network_Security",
		Description: "Dump socket statistics",
		Syntax:      "ss [OPTIONS]",
		Options:     []catalog.Option{{Flag: "-t", Description: "TCP sockets"}},
	}
	path, err := in.Save(rec, "  replaces netstat  ")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "20260304-050607-ss.yml" {
		t.Fatalf("file name = %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Name  string `yaml:"name"`
		Usage string `yaml:"usage"`
		Note  string `yaml:"note"`
		Meta  Meta   `yaml:"_meta"`
	}
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, data)
	}
	if got.Name != "ss" || got.Usage != "ss [OPTIONS]" || got.Note != "replaces netstat" {
		t.Fatalf("document = %+v", got)
	}
	if got.Meta.Type != "suggestion" || got.Meta.CreatedAt != "20260304-050607" || got.Meta.User != "alice" {
		t.Fatalf("meta = %+v", got.Meta)
	}

	recs, err := catalog.ParseYAML(data, path, "")
	if err != nil {
		t.Fatalf("suggestion is not a readable record: %v", err)
	}
	if recs[0].Options[0].Flag != "-t" {
		t.Fatalf("options = %+v", recs[0].Options)
	}
}

func TestSaveNeverOverwrites(t *testing.T) {
	in := fixedInbox(t)
	rec := catalog.CommandRecord{Name: "ss"}
	first, err := in.Save(rec, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := in.Save(rec, "")
	if err != nil {
		t.Fatal(err)
	}
	if first == second || !strings.HasSuffix(second, "-ss-2.yml") {
		t.Fatalf("paths = %s, %s", first, second)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ss", "ss"},
		{"Docker Compose", "docker-compose"},
		{"", "suggestion"},
		{"!!!", "suggestion"},
		{strings.Repeat("a", 80), strings.Repeat("a", 60)},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
