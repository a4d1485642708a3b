package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wbplanner/internal/plan"
)

const defaultMaxCandidates = 3

func newSuggestCmd(a *app) *cobra.Command {
	var (
		noHeader      bool
		maxCandidates int
	)

	cmd := &cobra.Command{
		Use:   "suggest <file.csv>",
		Short: "Suggest mapping paths for the headers of a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := readHeaders(args[0], noHeader)
			if err != nil {
				return err
			}

			if a.cfg.BaseTable == "" {
				return fmt.Errorf("no base table configured, use --base-table")
			}

			ctx := cmd.Context()

			w, err := a.openWorkspace(ctx, true)
			if err != nil {
				return err
			}

			res, err := w.mapper.Suggest(headers, a.cfg.BaseTable, a.cfg.Scope)
			if err != nil {
				w.close()
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), plan.FormatReport(plan.GenerateReport(res, maxCandidates)))

			for _, amb := range res.Ambiguities() {
				w.log.Warn(amb.Error())
			}

			return w.finish(ctx, nil)
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "the first row is data; name columns \"Column N\"")
	cmd.Flags().IntVar(&maxCandidates, "max-candidates", defaultMaxCandidates, "suggestions listed per unmapped header")

	return cmd
}
