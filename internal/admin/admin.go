// Package admin gates and implements the authoring side of the library:
// emitting a blank record template and saving newly written commands into
// the category tree.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/userconfig"
)

// Options locates the inputs admin mode is derived from.
type Options struct {
	// TokenFile holds the expected admin token.
	TokenFile string
	// UserConfig is the TOML preferences file with an "admin" flag.
	UserConfig string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// IsAdmin reports whether admin mode is on. Any of these grants it:
// LCL_ADMIN set to 1, true or yes; LCL_ADMIN_TOKEN equal to the trimmed
// content of TokenFile; admin = true in UserConfig.
func IsAdmin(opts Options) bool {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	switch strings.ToLower(strings.TrimSpace(getenv("LCL_ADMIN"))) {
	case "1", "true", "yes":
		return true
	}
	if token := strings.TrimSpace(getenv("LCL_ADMIN_TOKEN")); token != "" && opts.TokenFile != "" {
		if expected, err := ReadToken(opts.TokenFile); err == nil && TokenMatches(expected, token) {
			return true
		}
	}
	if opts.UserConfig != "" {
		cfg, err := userconfig.Load(opts.UserConfig)
		if err != nil {
			slog.Default().With("component", "admin").Warn("ignoring user config", "path", opts.UserConfig, "error", err)
			return false
		}
		return cfg.Admin
	}
	return false
}

// ReadToken returns the trimmed content of a token file.
func ReadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// TokenMatches compares tokens in constant time. An empty expected token
// never matches.
func TokenMatches(expected, got string) bool {
	expected = strings.TrimSpace(expected)
	got = strings.TrimSpace(got)
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
