package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipdeck/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var sourcePath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify credentials, directories, and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var results []preflight.Result
			if sourcePath != "" {
				results = preflight.ForUpload(cmd.Context(), cfg, ctx.credentials(), sourcePath)
			} else {
				results = preflight.RunAll(cmd.Context(), cfg, ctx.credentials())
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPreflight(results))
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "file", "", "Also check that this source file is readable")
	return cmd
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable(tableSpec{
		Headers: []string{"Check", "Status", "Detail"},
		Rows:    rows,
	})
}
