// Package pins keeps the set of commands a user has marked as favourites.
// The set is stored as a sorted JSON array of names.
package pins

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/atomicfile"
	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

type Pins struct {
	mu     sync.RWMutex
	path   string
	names  map[string]struct{}
	logger *slog.Logger
}

// Open loads the pin file at path. A missing file is an empty set; an
// unreadable one is logged and treated as empty so a bad file never blocks
// browsing.
func Open(path string) (*Pins, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &apperrors.ConfigError{Field: "pins.path", Reason: "must not be empty"}
	}
	p := &Pins{
		path:   path,
		names:  make(map[string]struct{}),
		logger: slog.Default().With("component", "pins"),
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return p, nil
	case err != nil:
		return nil, fmt.Errorf("reading pins %s: %w", path, err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		p.logger.Warn("ignoring unreadable pins file", "path", path, "error", err)
		return p, nil
	}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			p.names[n] = struct{}{}
		}
	}
	return p, nil
}

func (p *Pins) Path() string { return p.path }

// Pin adds name and persists the set. It reports whether the set changed.
func (p *Pins) Pin(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "pin name must not be empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.names[name]; ok {
		return false, nil
	}
	p.names[name] = struct{}{}
	if err := p.save(); err != nil {
		delete(p.names, name)
		return false, err
	}
	return true, nil
}

// Unpin removes name and persists the set. It reports whether the set
// changed.
func (p *Pins) Unpin(name string) (bool, error) {
	name = strings.TrimSpace(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.names[name]; !ok {
		return false, nil
	}
	delete(p.names, name)
	if err := p.save(); err != nil {
		p.names[name] = struct{}{}
		return false, err
	}
	return true, nil
}

// Toggle pins name if it is not pinned and unpins it otherwise. It returns
// the new pinned state.
func (p *Pins) Toggle(name string) (bool, error) {
	if p.Has(name) {
		_, err := p.Unpin(name)
		return false, err
	}
	_, err := p.Pin(name)
	return err == nil, err
}

func (p *Pins) Has(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.names[strings.TrimSpace(name)]
	return ok
}

// List returns the pinned names in sorted order.
func (p *Pins) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sorted()
}

func (p *Pins) sorted() []string {
	out := make([]string, 0, len(p.names))
	for n := range p.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (p *Pins) save() error {
	data, err := json.MarshalIndent(p.sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding pins: %w", err)
	}
	if err := atomicfile.WriteFile(p.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing pins %s: %w", p.path, err)
	}
	return nil
}
