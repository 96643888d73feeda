package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/render"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/session"
)

const browseHelp = `Type a query to search. Then:
  N or :open N   show result N
  :back          return to the results
  :pin           pin or unpin the command being shown
  :clear         start over
  :reload        reload commands from disk
  :q             quit`

func (a *app) browseCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search and read commands interactively",
		Long:  "Reads one line at a time from stdin.\n\n" + browseHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			b := &browser{app: a, engine: eng, session: session.New(), limit: limit}
			return b.run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "results per query (0 for all)")
	return cmd
}

// browser drives a session from line input.
type browser struct {
	app     *app
	engine  *indexer.Engine
	session *session.Session
	limit   int
}

func (b *browser) run(ctx context.Context) error {
	out := b.app.out
	fmt.Fprintln(out, b.app.styler.Apply(render.Muted, "type a query, :help for commands, :q to quit"))
	scanner := bufio.NewScanner(b.app.in)
	for {
		fmt.Fprint(out, b.app.styler.Apply(render.Accent, "lcl> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if quit := b.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle processes one input line and reports whether to quit.
func (b *browser) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":q", ":quit", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprintln(b.app.out, browseHelp)
	case ":back":
		if err := b.session.Back(); err != nil {
			b.warn(err)
			return false
		}
		b.showResults()
	case ":open", ":o":
		n, err := strconv.Atoi(arg)
		if err != nil {
			b.warn(fmt.Errorf("usage: :open N"))
			return false
		}
		b.open(n)
	case ":pin":
		b.togglePin()
	case ":clear":
		b.session.Reset()
	case ":reload":
		b.reload(ctx)
	default:
		if n, err := strconv.Atoi(line); err == nil {
			if st := b.session.State(); st == session.ResultsShown || st == session.DetailShown {
				b.open(n)
				return false
			}
		}
		b.search(line)
	}
	return false
}

func (b *browser) search(query string) {
	seq := b.session.Input(query)
	st := b.engine.Current()
	result := executor.Search(st.Snapshot, parser.Parse(query), b.limit)
	result.Seq = seq
	result.Generation = st.Generation
	if b.session.Deliver(seq, result) {
		b.showResults()
	}
}

func (b *browser) showResults() {
	snap := b.session.Snapshot()
	if snap.Results == nil {
		return
	}
	b.app.printResults(b.engine.Current(), snap.Results)
}

// open shows result n of the current list, leaving an open detail first.
func (b *browser) open(n int) {
	if b.session.State() == session.DetailShown {
		if err := b.session.Back(); err != nil {
			b.warn(err)
			return
		}
	}
	name, err := b.session.Select(n - 1)
	if err != nil {
		b.warn(err)
		return
	}
	rec, err := b.app.lookup(b.engine.Current().Store, name)
	if err != nil {
		b.warn(err)
		_ = b.session.Back()
		return
	}
	b.app.printDetail(rec, false)
}

func (b *browser) togglePin() {
	snap := b.session.Snapshot()
	if snap.State != session.DetailShown {
		b.warn(fmt.Errorf("open a command first"))
		return
	}
	p, err := b.app.openPins()
	if err != nil {
		b.warn(err)
		return
	}
	pinned, err := p.Toggle(snap.Selected)
	if err != nil {
		b.warn(err)
		return
	}
	if pinned {
		fmt.Fprintf(b.app.out, "pinned %s\n", snap.Selected)
	} else {
		fmt.Fprintf(b.app.out, "unpinned %s\n", snap.Selected)
	}
}

func (b *browser) reload(ctx context.Context) {
	st, err := b.engine.Reload(ctx)
	if err != nil {
		b.warn(fmt.Errorf("reload failed, keeping current commands: %w", err))
		return
	}
	b.session.Reset()
	fmt.Fprintf(b.app.out, "reloaded %d commands (generation %d)\n", st.Store.Len(), st.Generation)
}

func (b *browser) warn(err error) {
	fmt.Fprintln(b.app.out, b.app.styler.Apply(render.Warn, err.Error()))
}
