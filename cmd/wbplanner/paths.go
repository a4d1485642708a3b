package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newPathsCmd(a *app) *cobra.Command {
	var labels bool

	cmd := &cobra.Command{
		Use:   "paths [table]",
		Short: "List the mapping paths reachable from a table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := a.cfg.BaseTable
			if len(args) == 1 {
				table = args[0]
			}

			if table == "" {
				return fmt.Errorf("no table given")
			}

			ctx := cmd.Context()

			w, err := a.openWorkspace(ctx, false)
			if err != nil {
				return err
			}

			if err := listPaths(cmd.OutOrStdout(), w, table, a.cfg.MaxDepth, labels); err != nil {
				return joinErr(err, w.close())
			}

			return w.finish(ctx, nil)
		},
	}

	cmd.Flags().BoolVar(&labels, "labels", false, "print the localized name of each path's last element")

	return cmd
}

func listPaths(out io.Writer, w *workspace, table string, maxDepth int, labels bool) error {
	graph := w.nav.Graph()
	if !graph.HasTable(table) {
		return fmt.Errorf("unknown table %q", table)
	}

	n := 0

	for path := range w.nav.EnumeratePaths(table, maxDepth) {
		n++

		if !labels {
			fmt.Fprintln(out, path)
			continue
		}

		_, owner, err := w.nav.ValidatePrefix(table, path[:len(path)-1])
		if err != nil {
			return err
		}

		last, _ := path.Last()
		fmt.Fprintf(out, "%s\t%s\n", path, graph.LocalizedName(owner, last.Name))
	}

	w.log.WithField("paths", n).Debug("paths listed")

	return nil
}
