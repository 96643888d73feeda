package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/admin"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
)

// readDraft reads a YAML draft from path, or from stdin when path is "-".
func (a *app) readDraft(path string) (catalog.CommandRecord, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return catalog.CommandRecord{}, fmt.Errorf("reading draft: %w", err)
	}
	return admin.ParseDraft(data)
}

func (a *app) suggestCmd() *cobra.Command {
	var rec catalog.CommandRecord
	var note string
	cmd := &cobra.Command{
		Use:   "suggest [draft.yml|-]",
		Short: "Suggest a new or corrected command for review",
		Long: `Saves a suggestion into the inbox for maintainers to review. Pass a YAML
draft (see "lcl template"), or describe the command with flags.

Examples:
  lcl suggest --name rsync --category File_and_Directory_Management \
      --description "Fast incremental file transfer" --note "missing!"
  lcl suggest draft.yml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				draft, err := a.readDraft(args[0])
				if err != nil {
					return err
				}
				rec = draft
			}
			if strings.TrimSpace(rec.Name) == "" {
				return errors.New("a suggestion needs a name (--name or a draft file)")
			}
			path, err := a.inbox().Save(rec, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved suggestion to %s\n", path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&rec.Name, "name", "", "command name")
	f.StringVar(&rec.Category, "category", "", "category")
	f.StringVar(&rec.Description, "description", "", "what the command does")
	f.StringVar(&rec.Syntax, "usage", "", "usage line")
	f.StringSliceVar(&rec.Tags, "tag", nil, "tags (repeatable)")
	f.StringVar(&note, "note", "", "note for the reviewers")
	return cmd
}

func (a *app) templateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Print a blank command template (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			fmt.Fprint(a.out, admin.Template())
			return nil
		},
	}
}

func (a *app) newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <draft.yml|->",
		Short: "Add a command to the library from a YAML draft (admin)",
		Long: `Validates the draft and saves it as <commands>/<Category>/<name>.yml.
An existing file is never overwritten; name-2.yml, name-3.yml, ... are
tried instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if a.cfg.Catalog.Format != config.FormatYAML {
				return fmt.Errorf("new commands can only be added to a YAML commands directory")
			}
			if info, err := os.Stat(a.cfg.Catalog.Path); err != nil || !info.IsDir() {
				return fmt.Errorf("commands path %s is not a directory", a.cfg.Catalog.Path)
			}
			rec, err := a.readDraft(args[0])
			if err != nil {
				return err
			}
			if eng, err := a.loadEngine(cmd.Context()); err == nil && eng.Current().Store.Has(rec.Name) {
				return fmt.Errorf("command %q already exists", rec.Name)
			}
			path, err := admin.SaveNew(a.cfg.Catalog.Path, rec)
			if err != nil {
				var issues *admin.IssuesError
				if errors.As(err, &issues) {
					for _, issue := range issues.Issues {
						fmt.Fprintf(a.errOut, "  - %s\n", issue)
					}
					return errors.New("draft not saved")
				}
				return err
			}
			fmt.Fprintf(a.out, "Saved %s to %s\n", rec.Name, path)
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every command entry and report all problems",
		Long: `Loads the whole library and reports every malformed entry, duplicate
name and missing field. With --strict the editorial checks applied to new
commands (allowed category, usage present, ...) are reported too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Load(cmd.Context(), a.source(), catalog.LoadOptions{
				StrictCategories: a.cfg.Catalog.StrictCategories,
			})
			if err != nil {
				problems := splitErrors(err)
				for _, p := range problems {
					fmt.Fprintf(a.out, "error: %v\n", p)
				}
				return fmt.Errorf("%d problem(s) in %s", len(problems), a.cfg.Catalog.Path)
			}
			warnings := 0
			if strict {
				for _, rec := range store.All() {
					for _, issue := range catalog.Issues(&rec) {
						fmt.Fprintf(a.out, "warning: %s (%s): %s\n", rec.Name, rec.Source, issue)
						warnings++
					}
				}
			}
			fmt.Fprintf(a.out, "ok: %d commands in %d categories", store.Len(), len(store.Categories()))
			if warnings > 0 {
				fmt.Fprintf(a.out, ", %d warning(s)", warnings)
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "also apply the checks used for new commands")
	return cmd
}

// splitErrors unwraps joined errors so each problem is reported on its own.
func splitErrors(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []error{err}
}
