package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipdeck/internal/history"
	"clipdeck/internal/upload"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past uploads",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("upload history is disabled (set history.enabled = true)")
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var outcomes []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent uploads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(outcomes)
			if err != nil {
				return err
			}
			return ctx.withHistory(func(store *history.Store) error {
				entries, err := store.Recent(cmd.Context(), limit, kinds...)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No uploads recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistory(entries))

				summary, err := store.Summary(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d total: %d succeeded, %d flagged, %d rejected, %d failed\n",
					summary.Total, summary.Succeeded, summary.Flagged, summary.Rejected, summary.Failed)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().StringSliceVar(&outcomes, "outcome", nil, "Filter by outcome (succeeded, flagged, rejected, failed_network)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete entries older than a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entr%s\n", removed, pluralY(removed))
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age threshold")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entr%s\n", removed, pluralY(removed))
				return nil
			})
		},
	}
}

func renderHistory(entries []*history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.RemoteID
		switch e.Outcome {
		case upload.KindFlaggedByModeration:
			detail = fmt.Sprintf("%d segment(s)", e.EvidenceCount)
		case upload.KindRejected, upload.KindFailedNetwork:
			detail = e.ErrorMessage
		}
		title := e.Title
		if title == "" {
			title = e.SourceName
		}
		rows = append(rows, []string{
			e.FinishedAt.Local().Format("2006-01-02 15:04"),
			title,
			string(e.Outcome),
			e.Visibility,
			formatBytes(e.TotalBytes),
			detail,
		})
	}
	return renderTable(tableSpec{
		Headers: []string{"Finished", "Title", "Outcome", "Visibility", "Size", "Detail"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		Widths:  []int{0, 40, 0, 0, 0, 60},
	})
}

func parseKinds(values []string) ([]upload.Kind, error) {
	var kinds []upload.Kind
	for _, value := range values {
		switch kind := upload.Kind(strings.ToLower(strings.TrimSpace(value))); kind {
		case upload.KindSucceeded, upload.KindRejected, upload.KindFailedNetwork, upload.KindFlaggedByModeration:
			kinds = append(kinds, kind)
		case "failed":
			kinds = append(kinds, upload.KindFailedNetwork)
		default:
			return nil, fmt.Errorf("unknown outcome %q", value)
		}
	}
	return kinds, nil
}

func pluralY(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
