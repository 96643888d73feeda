package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) pinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <name>...",
		Short: "Pin commands to your favourites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.openPins()
			if err != nil {
				return err
			}
			for _, name := range args {
				rec, err := a.lookup(eng.Current().Store, name)
				if err != nil {
					return err
				}
				added, err := p.Pin(rec.Name)
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(a.out, "pinned %s\n", rec.Name)
				} else {
					fmt.Fprintf(a.out, "%s is already pinned\n", rec.Name)
				}
			}
			return nil
		},
	}
}

func (a *app) unpinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpin <name>...",
		Short: "Remove commands from your favourites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openPins()
			if err != nil {
				return err
			}
			for _, name := range args {
				removed, err := p.Unpin(name)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(a.out, "unpinned %s\n", name)
				} else {
					fmt.Fprintf(a.out, "%s was not pinned\n", name)
				}
			}
			return nil
		},
	}
}

func (a *app) pinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pins",
		Short: "List pinned commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openPins()
			if err != nil {
				return err
			}
			names := p.List()
			if a.jsonOutput {
				return a.printJSON(names)
			}
			if len(names) == 0 {
				fmt.Fprintln(a.out, "no pinned commands")
				return nil
			}
			eng, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			store := eng.Current().Store
			for _, name := range names {
				rec, err := store.Get(name)
				if err != nil {
					fmt.Fprintf(a.out, "%s  (no longer in the library)\n", name)
					continue
				}
				fmt.Fprintln(a.out, a.styler.SummaryLine(rec))
			}
			return nil
		},
	}
}
