package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestYAMLSourceCategoryTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Network_Security", "ping.yml"), `
name: ping
description: Check connectivity
usage: ping [-c count] host
options:
  - flag: -c
    description: stop after count replies
  - flag: -i
    meaning: wait interval seconds
examples:
  - cmd: ping -c 4 example.com
    description: send four probes
tags: [network, icmp]
`)
	writeFile(t, filepath.Join(root, "Network_Security", "ip.yaml"), `
command: ip
description: show/modify IP
syntax: ip [OPTIONS] OBJECT
options:
  -4: IPv4 only
  -6: IPv6 only
examples: ip addr show
`)
	writeFile(t, filepath.Join(root, "Archive_Compression_Management", "tar.yml"), `
name: tar
category: Archive_Compression_Management
description: Create and extract archives
options:
  - "-x  extract"
  - "-z: gzip"
examples:
  - tar -xzf a.tgz
`)
	writeFile(t, filepath.Join(root, "Network_Security", "notes.txt"), "ignored")

	recs, err := NewYAMLSource(root, "").Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	var names []string
	for _, r := range recs {
		names = append(names, r.Name)
	}
	want := []string{"tar", "ip", "ping"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}

	tar, ip, ping := recs[0], recs[1], recs[2]
	if ping.Category != "Network_Security" {
		t.Errorf("ping category = %q, want directory name", ping.Category)
	}
	if ping.Syntax != "ping [-c count] host" {
		t.Errorf("ping syntax = %q", ping.Syntax)
	}
	if len(ping.Options) != 2 || ping.Options[1].Description != "wait interval seconds" {
		t.Errorf("ping options = %+v", ping.Options)
	}
	if len(ping.Examples) != 1 || ping.Examples[0].Command != "ping -c 4 example.com" {
		t.Errorf("ping examples = %+v", ping.Examples)
	}
	if len(ping.Tags) != 2 {
		t.Errorf("ping tags = %v", ping.Tags)
	}
	if len(ip.Options) != 2 || ip.Options[0].Flag != "-4" || ip.Options[0].Description != "IPv4 only" {
		t.Errorf("ip options = %+v", ip.Options)
	}
	if len(ip.Examples) != 1 || ip.Examples[0].Command != "ip addr show" {
		t.Errorf("ip examples = %+v", ip.Examples)
	}
	if len(tar.Options) != 2 || tar.Options[0].Flag != "-x" || tar.Options[0].Description != "extract" || tar.Options[1].Description != "gzip" {
		t.Errorf("tar options = %+v", tar.Options)
	}
}

func TestYAMLSourceSingleFileList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yml")
	writeFile(t, path, `
- name: ls
  description: list directory contents
- name: cd
  description: change directory
`)
	recs, err := NewYAMLSource(path, "Files").Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(recs) != 2 || recs[0].Category != "Files" || recs[1].Name != "cd" {
		t.Fatalf("records = %+v", recs)
	}
}

func TestYAMLSourceReportsEveryMalformedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "one.yml"), "name: one\n")
	writeFile(t, filepath.Join(root, "B", "two.yml"), "description: no name\n")
	writeFile(t, filepath.Join(root, "B", "three.yml"), "name: three\ndescription: fine\n")

	_, err := NewYAMLSource(root, "").Records(context.Background())
	if !errors.Is(err, apperrors.ErrParse) {
		t.Fatalf("Records() error = %v, want ErrParse", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Fatalf("want two joined parse errors, got %v", err)
	}
}

func TestParseYAMLRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"scalar document", "just a string"},
		{"options scalar", "name: x\ndescription: y\noptions: 3\n"},
		{"examples mapping", "name: x\ndescription: y\nexamples:\n  a: b\n"},
		{"invalid yaml", "name: [unterminated\n"},
		{"multi-line name", "name: \"git\\nlog\"\ndescription: y\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tc.body), "case.yml", "")
			var perr *apperrors.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseYAML() error = %v, want *ParseError", err)
			}
			if perr.Source != "case.yml" {
				t.Fatalf("ParseError.Source = %q", perr.Source)
			}
		})
	}
}

func TestYAMLSourceThroughStore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "dup.yml"), "name: dup\ndescription: first\n")
	writeFile(t, filepath.Join(root, "B", "dup.yml"), "name: dup\ndescription: second\n")
	_, err := Load(context.Background(), NewYAMLSource(root, ""), LoadOptions{})
	if !errors.Is(err, apperrors.ErrParse) {
		t.Fatalf("Load() error = %v, want duplicate ParseError", err)
	}
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	rec := CommandRecord{
		Name:        "ping",
		Category:    "Network_Security",
		Description: "Check connectivity",
		Syntax:      "ping [OPTIONS] HOST",
		Options:     []Option{{Flag: "-c", Description: "stop after count replies"}},
		Examples:    []Example{{Command: "ping -c 4 example.com", Description: "four probes"}},
		Tags:        []string{"network"},
	}
	data, err := EncodeYAML(rec)
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	got, err := ParseYAML(data, "ping.yml", "")
	if err != nil {
		t.Fatalf("ParseYAML: %v\n%s", err, data)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records", len(got))
	}
	got[0].Source = ""
	if !reflect.DeepEqual(got[0], rec) {
		t.Fatalf("round trip:\n got %+v\nwant %+v", got[0], rec)
	}
}
