package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"wbplanner/internal/plan"
	"wbplanner/internal/uploadplan"
)

func newCheckCmd(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "check <plan.json>",
		Short: "Re-validate an upload plan against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read plan: %w", err)
			}

			p, err := uploadplan.Unmarshal(data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			w, err := a.openWorkspace(ctx, true)
			if err != nil {
				return err
			}

			s, diags, err := plan.Resume(w.nav, w.mapper, p, w.sessionOptions()...)
			if err != nil {
				w.close()
				return err
			}

			logDiagnostics(w, diags)

			if dump {
				spew.Fdump(cmd.ErrOrStderr(), s.Tree())
			}

			if diags.HasErrors() {
				return joinErr(fmt.Errorf("%s: %w", args[0], diags.Error()), w.finish(ctx, s))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d lines valid for %s\n", args[0], len(s.Lines()), s.BaseTable)

			return w.finish(ctx, s)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "dump the mappings tree to stderr")

	return cmd
}
