package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/render"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/atomicfile"
)

func (a *app) searchCmd() *cobra.Command {
	var limit int
	var category string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search commands by name, option, category and description",
		Long: `Every word of the query is matched as a prefix against the words of each
command's name, option flags, category and description. Name matches rank
highest, then options, category and description.

Examples:
  lcl search ping
  lcl search comp arch          # matches "compress", "archive", ...
  lcl search -n 5 --category Text_Processing sort`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			plan := parser.Parse(strings.Join(args, " "))
			if category != "" {
				plan = plan.InCategory(category)
			}
			result, err := executor.New(eng).Execute(cmd.Context(), plan, limit)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(result)
			}
			a.printResults(eng.Current(), result)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum results (0 for all)")
	cmd.Flags().StringVar(&category, "category", "", "only search this category")
	return cmd
}

func (a *app) printResults(st *indexer.State, result *executor.SearchResult) {
	if len(result.Results) == 0 {
		fmt.Fprintln(a.out, a.styler.Apply(render.Muted, fmt.Sprintf("no matches for %q", result.Query)))
		return
	}
	for i, hit := range result.Results {
		rec, err := st.Store.Get(hit.Name)
		if err != nil {
			rec = catalog.CommandRecord{Name: hit.Name}
		}
		fmt.Fprintf(a.out, "%3d. %s\n", i+1, a.styler.SummaryLine(rec))
	}
	if result.TotalHits > len(result.Results) {
		fmt.Fprintln(a.out, a.styler.Apply(render.Muted,
			fmt.Sprintf("     showing %d of %d matches", len(result.Results), result.TotalHits)))
	}
}

func (a *app) showCmd() *cobra.Command {
	var plain, markdown bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the full entry for a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := a.lookup(eng.Current().Store, strings.Join(args, " "))
			if err != nil {
				return err
			}
			switch {
			case a.jsonOutput:
				return a.printJSON(rec)
			case markdown:
				fmt.Fprint(a.out, render.Markdown(rec))
			default:
				a.printDetail(rec, plain)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "plain text even on a terminal")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the entry as Markdown")
	return cmd
}

func (a *app) printDetail(rec catalog.CommandRecord, plain bool) {
	if a.styler.Enabled() && !plain {
		if out, err := render.Terminal(rec, render.DefaultWidth); err == nil {
			fmt.Fprint(a.out, out)
			return
		}
	}
	fmt.Fprint(a.out, render.Detail(rec))
}

func (a *app) listCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every command, optionally in one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			store := eng.Current().Store
			records := store.All()
			if category != "" {
				records = store.ByCategory(category)
			}
			if a.jsonOutput {
				if records == nil {
					records = []catalog.CommandRecord{}
				}
				return a.printJSON(records)
			}
			for _, rec := range records {
				fmt.Fprintln(a.out, a.styler.SummaryLine(rec))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list this category")
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with their command counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			cats := eng.Current().Store.Categories()
			if a.jsonOutput {
				return a.printJSON(cats)
			}
			for _, c := range cats {
				fmt.Fprintf(a.out, "%-34s %4d\n", c.Category, c.Count)
			}
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a command entry as Markdown",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := a.lookup(eng.Current().Store, strings.Join(args, " "))
			if err != nil {
				return err
			}
			md := render.Markdown(rec)
			if output == "" || output == "-" {
				fmt.Fprint(a.out, md)
				return nil
			}
			if err := atomicfile.WriteFile(output, []byte(md), 0); err != nil {
				return fmt.Errorf("exporting %s: %w", rec.Name, err)
			}
			fmt.Fprintf(a.out, "Exported %s to %s\n", rec.Name, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
