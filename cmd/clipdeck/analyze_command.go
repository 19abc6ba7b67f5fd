package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"clipdeck/internal/media"
	"clipdeck/internal/moderation"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var minScore float64

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run content moderation on a file without uploading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			source, err := media.OpenFile(path)
			if err != nil {
				return err
			}

			client := moderation.NewClient(moderation.Config{
				BaseURL: cfg.Moderation.URL,
				Timeout: cfg.ModerationTimeout(),
			}, moderation.WithLogger(logger))

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			verdict, err := client.Submit(runCtx, source)
			if err != nil {
				return err
			}
			policy := moderation.Policy{MinScore: cfg.Moderation.MinScore}
			if cmd.Flags().Changed("min-score") {
				policy.MinScore = minScore
			}
			verdict = policy.Apply(verdict)
			verdict.Evidence = moderation.Dedupe(verdict.Evidence)

			if jsonOutput {
				views := make([]evidenceView, 0, len(verdict.Evidence))
				for _, segment := range verdict.Evidence {
					views = append(views, evidenceView{
						Timestamp: segment.TimestampSeconds,
						Frame:     segment.FrameIndex,
						Excerpt:   segment.ExcerptText,
						Scores:    segment.CategoryScores,
					})
				}
				if err := writeJSON(cmd, map[string]any{
					"source":          source.Name(),
					"flagged":         verdict.Flagged(),
					"frames_analyzed": verdict.FramesAnalyzed,
					"evidence":        views,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				if verdict.Clear() {
					fmt.Fprintf(out, "%s: clear (%d frames analyzed)\n", source.Name(), verdict.FramesAnalyzed)
				} else {
					fmt.Fprintln(out, renderEvidence(verdict.Evidence, verdict.FramesAnalyzed))
				}
			}

			if verdict.Flagged() {
				return fmt.Errorf("%s: %d flagged segment(s)", source.Name(), len(verdict.Evidence))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the verdict as JSON")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Override the configured minimum category score")
	return cmd
}
