// Package cli implements the lcl command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/admin"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/pins"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/render"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/resolver"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/suggestions"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/userconfig"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/logger"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

type app struct {
	// Global flags
	configPath     string
	userConfigPath string
	commandsPath   string
	format         string
	jsonOutput     bool
	verbose        bool

	// Resolved in PersistentPreRunE
	cfg  *config.Config
	user *userconfig.Config

	engine *indexer.Engine
	getenv func(string) string
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	styler render.Styler
}

// Execute runs the CLI against the process's standard streams.
func Execute() error {
	return NewRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(context.Background())
}

// NewRootCmd builds the command tree reading from in and writing to out and
// errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		getenv: os.Getenv,
		in:     in,
		out:    out,
		errOut: errOut,
		styler: render.NewStyler(out),
	}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lcl",
		Short: "Linux Command Library - search and browse command references",
		Long: `lcl indexes a library of Linux command references and lets you search
them as you type, read the full entry for a command, pin favourites and
suggest new entries.

Commands are read from a category tree of YAML files
(<path>/<Category>/<command>.yml) or from a heading-structured Markdown
document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			return a.setup(cmd)
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.userConfigPath, "user-config", userconfig.DefaultPath(), "path to the TOML user preferences")
	flags.StringVarP(&a.commandsPath, "commands", "c", "", "commands directory or Markdown file (overrides config)")
	flags.StringVar(&a.format, "format", "", "source format: yaml or markdown (overrides config)")
	flags.BoolVar(&a.jsonOutput, "json", false, "print machine-readable JSON")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		a.searchCmd(),
		a.showCmd(),
		a.listCmd(),
		a.categoriesCmd(),
		a.exportCmd(),
		a.browseCmd(),
		a.pinCmd(),
		a.unpinCmd(),
		a.pinsCmd(),
		a.suggestCmd(),
		a.templateCmd(),
		a.newCmd(),
		a.validateCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads configuration in precedence order: defaults, config file,
// LCL_* environment, user preferences, then flags.
func (a *app) setup(cmd *cobra.Command) error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	logger.Setup(a.errOut, level, "text")

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	user, err := userconfig.Load(a.userConfigPath)
	if err != nil {
		fmt.Fprintf(a.errOut, "warning: %v\n", err)
		user = &userconfig.Config{}
	}
	if user.CommandsPath != "" {
		cfg.Catalog.Path = user.CommandsPath
	}
	if user.PinsPath != "" {
		cfg.Pins.Path = user.PinsPath
	}
	if user.InboxDir != "" {
		cfg.Suggestions.Dir = user.InboxDir
	}
	if a.commandsPath != "" {
		cfg.Catalog.Path = a.commandsPath
	}
	if a.format != "" {
		cfg.Catalog.Format = a.format
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.user = user
	return nil
}

func (a *app) source() catalog.Source {
	c := a.cfg.Catalog
	if c.Format == config.FormatMarkdown {
		return catalog.NewMarkdownSource(c.Path, c.DefaultCategory)
	}
	return catalog.NewYAMLSource(c.Path, c.DefaultCategory)
}

// loadEngine loads the catalog and builds the index once per invocation.
func (a *app) loadEngine(ctx context.Context) (*indexer.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	eng, err := indexer.NewEngine(ctx, a.source(), a.cfg.Indexer, indexer.Options{
		StrictCategories: a.cfg.Catalog.StrictCategories,
	})
	if err != nil {
		return nil, fmt.Errorf("loading commands from %s: %w", a.cfg.Catalog.Path, err)
	}
	a.engine = eng
	return eng, nil
}

func (a *app) openPins() (*pins.Pins, error) {
	return pins.Open(a.cfg.Pins.Path)
}

func (a *app) inbox() *suggestions.Inbox {
	return suggestions.NewInbox(a.cfg.Suggestions.Dir)
}

func (a *app) isAdmin() bool {
	return admin.IsAdmin(admin.Options{
		TokenFile:  a.cfg.Admin.TokenFile,
		UserConfig: a.userConfigPath,
		Getenv:     a.getenv,
	})
}

func (a *app) requireAdmin() error {
	if a.isAdmin() {
		return nil
	}
	return apperrors.New(apperrors.ErrUnauthorized, http.StatusUnauthorized,
		"admin mode is off: set LCL_ADMIN=1, LCL_ADMIN_TOKEN to the token file content, or admin = true in "+a.userConfigPath)
}

// lookup resolves name and turns a miss into an error listing close names.
func (a *app) lookup(store *catalog.Store, name string) (catalog.CommandRecord, error) {
	rec, err := resolver.Resolve(store, name)
	if err == nil {
		return rec, nil
	}
	if apperrors.IsNotFound(err) {
		if names := resolver.SuggestNames(store, name, 5); len(names) > 0 {
			return rec, fmt.Errorf("%w\ndid you mean: %s", err, strings.Join(names, ", "))
		}
	}
	return rec, err
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lcl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "lcl %s\n", Version)
		},
	}
}
