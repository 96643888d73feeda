package admin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

// Template is the blank record authors start from. It carries every field
// of the YAML record layout.
func Template() string {
	var b strings.Builder
	b.WriteString("name: \n")
	b.WriteString("category: \n")
	b.WriteString("# one of:\n")
	for _, c := range catalog.AllowedCategories {
		b.WriteString("#   " + c + "\n")
	}
	b.WriteString("description: |\n")
	b.WriteString("  \n")
	b.WriteString("usage: \n")
	b.WriteString("options: []   # list of {flag, description}\n")
	b.WriteString("examples: []  # list of {cmd, description} or strings\n")
	b.WriteString("tags: []\n")
	return b.String()
}

// IssuesError lists every problem that kept a record from being saved.
type IssuesError struct {
	Issues []string
}

func (e *IssuesError) Error() string {
	return "record has issues: " + strings.Join(e.Issues, " ")
}

func (e *IssuesError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ParseDraft decodes an authored YAML document into a single record.
func ParseDraft(data []byte) (catalog.CommandRecord, error) {
	recs, err := catalog.ParseYAML(data, "draft", "")
	if err != nil {
		return catalog.CommandRecord{}, err
	}
	if len(recs) != 1 {
		return catalog.CommandRecord{}, &IssuesError{Issues: []string{"Top-level must be a single mapping."}}
	}
	return recs[0], nil
}

// openExclusive creates path, failing when it already exists.
var openExclusive = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// SaveNew validates rec and writes it to <baseDir>/<category>/<name>.yml.
// Existing files are never overwritten; the first free name-N.yml is used
// instead.
func SaveNew(baseDir string, rec catalog.CommandRecord) (string, error) {
	if issues := catalog.Issues(&rec); len(issues) > 0 {
		return "", &IssuesError{Issues: issues}
	}
	dir := filepath.Join(baseDir, rec.Category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating category directory: %w", err)
	}
	data, err := catalog.EncodeYAML(rec)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}

	base := SafeFileName(rec.Name)
	path := filepath.Join(dir, base+".yml")
	for n := 2; ; n++ {
		f, err := openExclusive(path)
		if os.IsExist(err) {
			path = filepath.Join(dir, fmt.Sprintf("%s-%d.yml", base, n))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating %s: %w", path, err)
		}
		_, werr := f.Write(data)
		cerr := f.Close()
		if werr != nil || cerr != nil {
			_ = os.Remove(path)
		}
		if werr != nil {
			return "", fmt.Errorf("writing %s: %w", path, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("closing %s: %w", path, cerr)
		}
		return path, nil
	}
}

// SafeFileName keeps letters, digits, '-' and '_' and replaces everything
// else with '_'.
func SafeFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "command"
	}
	return b.String()
}
