package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"wbplanner/internal/diagnostic"
	"wbplanner/internal/uploadplan"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		noHeader bool
		dump     bool
		format   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "plan <file.csv>",
		Short: "Auto-map the headers of a CSV file and write the upload plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatYAML {
				return fmt.Errorf("unknown format %q", format)
			}

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

			s, err := w.newSession(a.cfg.BaseTable)
			if err != nil {
				w.close()
				return err
			}

			if _, err := s.AutoMap(headers); err != nil {
				return joinErr(err, w.finish(ctx, s))
			}

			if dump {
				spew.Fdump(cmd.ErrOrStderr(), s.Tree())
			}

			p, diags, err := s.Commit()
			logDiagnostics(w, diags)

			if err != nil {
				return joinErr(err, w.finish(ctx, s))
			}

			if err := writePlan(cmd.OutOrStdout(), output, format, p); err != nil {
				return joinErr(err, w.finish(ctx, s))
			}

			return w.finish(ctx, s)
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "the first row is data; name columns \"Column N\"")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the mappings tree to stderr")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the plan to a file instead of stdout")

	return cmd
}

func writePlan(stdout io.Writer, output, format string, p *uploadplan.UploadPlan) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case formatYAML:
		data, err = uploadplan.MarshalYAML(p)
	default:
		data, err = uploadplan.Marshal(p)
	}

	if err != nil {
		return err
	}

	if output == "" {
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}

	if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}

	return nil
}

func logDiagnostics(w *workspace, diags *diagnostic.Diagnostics) {
	if diags == nil {
		return
	}

	for d := range diags.All() {
		entry := w.log.WithField("code", d.Code)

		switch d.Severity {
		case diagnostic.DiagnosticError:
			entry.Error(d.String())
		case diagnostic.DiagnosticWarning:
			entry.Warn(d.String())
		default:
			entry.Info(d.String())
		}
	}
}
