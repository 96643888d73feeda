package tokenizer

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace", "   \t\n", nil},
		{"lowercases", "Show/Modify IP", []string{"show", "modify", "ip"}},
		{"drops short tokens", "a b -c --count", []string{"count"}},
		{"digits kept", "ipv6 x86_64", []string{"ipv6", "x86", "64"}},
		{"no stemming", "running searches", []string{"running", "searches"}},
		{"stop words kept", "the file is", []string{"the", "file", "is"}},
		{"duplicates kept", "ls ls", []string{"ls", "ls"}},
		{"unicode letters", "Grüße über", []string{"grüße", "über"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, tok := range Tokenize(tc.in) {
				got = append(got, tok.Term)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	toks := Tokenize("a tar x archive")
	if len(toks) != 2 {
		t.Fatalf("got %d tokens", len(toks))
	}
	if toks[0].Position != 0 || toks[1].Position != 1 {
		t.Fatalf("positions = %d,%d, want 0,1", toks[0].Position, toks[1].Position)
	}
}

func TestTerms(t *testing.T) {
	got := Terms("ping PING host ping -c host")
	want := []string{"ping", "host"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Terms() = %v, want %v", got, want)
	}
	if Terms(" - ") != nil {
		t.Fatal("Terms of separators should be nil")
	}
}

var sampleTexts = map[string]string{
	"short":  "ping -c 4 example.com",
	"medium": "Print a sequence of numbers. seq prints the numbers from FIRST to LAST in steps of INCREMENT, each on its own line.",
	"long": strings.Repeat(`Synchronise files and directories between two locations over
        ssh or a local filesystem. rsync only transfers the differences between the
        source and the destination, and supports archive mode, compression, partial
        transfers and bandwidth limits. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := Tokenize(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := Tokenize(text)
			_ = tokens
		}
	})
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "list directory contents recursively "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := Tokenize(text)
				_ = tokens
			}
		})
	}
}
