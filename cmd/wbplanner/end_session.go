package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newEndSessionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "end-session",
		Short: "Drop the session cache of the session given with --session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Session == "" {
				return errors.New("no session given, use --session")
			}

			ctx := cmd.Context()

			w, err := a.openWorkspace(ctx, false)
			if err != nil {
				return err
			}

			if err := w.cache.EndSession(ctx); err != nil {
				return joinErr(err, w.close())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "session %s ended\n", w.id)

			return w.close()
		},
	}
}
