// Package suggestions stores user-proposed commands for later review. Each
// suggestion is a standalone YAML file in the inbox directory.
package suggestions

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	goslug "github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
)

const (
	metaType      = "suggestion"
	timeLayout    = "20060102-150405"
	maxSlugLength = 60
)

// Meta records who filed a suggestion and when.
type Meta struct {
	Type      string `yaml:"type"`
	CreatedAt string `yaml:"created_at"`
	User      string `yaml:"user"`
	Host      string `yaml:"host"`
}

type document struct {
	catalog.YAMLDocument `yaml:",inline"`
	Note                 string `yaml:"note,omitempty"`
	Meta                 Meta   `yaml:"_meta"`
}

type Inbox struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

func NewInbox(dir string) *Inbox {
	return &Inbox{
		dir:    dir,
		now:    time.Now,
		logger: slog.Default().With("component", "suggestions"),
	}
}

func (i *Inbox) Dir() string { return i.dir }

// Save writes rec, with an optional free-text note, as
// <timestamp>-<slug>.yml and returns the file path. Suggestions are not
// validated; reviewers fix them up before they enter the catalog.
func (i *Inbox) Save(rec catalog.CommandRecord, note string) (string, error) {
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating inbox %s: %w", i.dir, err)
	}
	ts := i.now().Format(timeLayout)
	doc := document{
		YAMLDocument: catalog.NewYAMLDocument(rec),
		Note:         strings.TrimSpace(note),
		Meta: Meta{
			Type:      metaType,
			CreatedAt: ts,
			User:      currentUser(),
			Host:      hostname(),
		},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding suggestion: %w", err)
	}

	base := ts + "-" + Slug(rec.Name)
	path := filepath.Join(i.dir, base+".yml")
	for n := 2; ; n++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			path = filepath.Join(i.dir, fmt.Sprintf("%s-%d.yml", base, n))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating suggestion file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("writing suggestion %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("closing suggestion %s: %w", path, err)
		}
		break
	}
	i.logger.Info("suggestion saved", "path", path, "name", rec.Name)
	return path, nil
}

// Slug turns a command name into a file-name fragment.
func Slug(name string) string {
	s := goslug.Make(strings.TrimSpace(name))
	if s == "" {
		return "suggestion"
	}
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	return s
}

func currentUser() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}
