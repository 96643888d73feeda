// Package userconfig reads the per-user preferences file
// (~/.config/lcl/config.toml): admin mode and where pins and suggestions
// are kept.
package userconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/atomicfile"
)

type Config struct {
	Admin        bool   `toml:"admin"`
	CommandsPath string `toml:"commands_path,omitempty"`
	PinsPath     string `toml:"pins_path,omitempty"`
	InboxDir     string `toml:"inbox_dir,omitempty"`
}

// DefaultPath returns ~/.config/lcl/config.toml, or the OS config directory
// when the home directory is unknown.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "lcl", "config.toml")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lcl", "config.toml")
	}
	return "config.toml"
}

// Load reads path. A missing file yields the zero Config.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("user config path is required")
	}
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parsing user config %s: %w", path, err)
	}
	cfg.CommandsPath = strings.TrimSpace(cfg.CommandsPath)
	cfg.PinsPath = strings.TrimSpace(cfg.PinsPath)
	cfg.InboxDir = strings.TrimSpace(cfg.InboxDir)
	return &cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding user config: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing user config %s: %w", path, err)
	}
	return nil
}
