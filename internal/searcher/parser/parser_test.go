package parser

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"ip", []string{"ip"}},
		{"Show IP ip", []string{"show", "ip"}},
		{"tar -x", []string{"tar"}},
		{"list AND files", []string{"list", "and", "files"}},
	}
	for _, tc := range tests {
		plan := Parse(tc.query)
		if !reflect.DeepEqual(plan.Terms, tc.want) {
			t.Errorf("Parse(%q).Terms = %v, want %v", tc.query, plan.Terms, tc.want)
		}
		if plan.RawQuery != tc.query {
			t.Errorf("RawQuery = %q", plan.RawQuery)
		}
	}
}

func TestEmpty(t *testing.T) {
	if !Parse(" - ").Empty() {
		t.Fatal("separator-only query should be empty")
	}
	if Parse("ls").Empty() {
		t.Fatal("ls should not be empty")
	}
}

func TestKeyIsOrderInsensitive(t *testing.T) {
	a := Parse("show ip").Key()
	b := Parse("IP  show show").Key()
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}
	if a == Parse("show ip").InCategory("Networking").Key() {
		t.Fatal("category must be part of the key")
	}
}
