package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipdeck/internal/config"
	"clipdeck/internal/fileutil"
	"clipdeck/internal/history"
	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/metadata"
	"clipdeck/internal/moderation"
	"clipdeck/internal/notifications"
	"clipdeck/internal/preflight"
	"clipdeck/internal/services"
	"clipdeck/internal/upload"
)

type uploadOptions struct {
	title          string
	description    string
	tags           []string
	visibility     string
	publishAt      string
	schedule       bool
	skipModeration bool
	jsonOutput     bool
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Analyze a video and upload it",
		Long: `Submit the file to the moderation service, then upload it to the hosting API.

Flagged files are not uploaded; review the evidence and rerun with
--skip-moderation to publish anyway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, ctx, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.title, "title", "t", "", "Video title (defaults to the file name)")
	flags.StringVarP(&opts.description, "description", "d", "", "Video description")
	flags.StringSliceVar(&opts.tags, "tags", nil, "Comma-separated tags")
	flags.StringVar(&opts.visibility, "visibility", string(metadata.Public), "Visibility: private, unlisted, or public")
	flags.StringVar(&opts.publishAt, "publish-at", "", "Schedule publication (RFC 3339 or \"2006-01-02 15:04\" local time)")
	flags.BoolVar(&opts.schedule, "schedule", false, "Schedule publication at the configured default lead time")
	flags.BoolVar(&opts.skipModeration, "skip-moderation", false, "Upload without content analysis")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the outcome as JSON")
	cmd.MarkFlagsMutuallyExclusive("publish-at", "schedule")

	return cmd
}

func runUpload(cmd *cobra.Command, ctx *commandContext, path string, opts uploadOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	visibility, err := metadata.ParseVisibility(opts.visibility)
	if err != nil {
		return err
	}
	publishAt, err := resolvePublishAt(cfg, opts, time.Now())
	if err != nil {
		return err
	}

	creds := ctx.credentials()
	if failed := preflight.Failed(preflight.ForUpload(cmd.Context(), cfg, creds, path)); len(failed) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), renderPreflight(failed))
		return fmt.Errorf("preflight failed: %d check(s) did not pass", len(failed))
	}

	fingerprint, err := fileutil.Fingerprint(path)
	if err != nil {
		return fmt.Errorf("fingerprint source: %w", err)
	}
	lock, err := acquireSourceLock(cfg, fingerprint)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	source, err := media.OpenFile(path)
	if err != nil {
		return err
	}

	orchestrator, err := upload.NewFromConfig(cfg, creds, logger)
	if err != nil {
		return err
	}

	observers := upload.Observers{newProgressReporter(cmd.ErrOrStderr(), logger)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this upload will not be recorded"),
			)
		} else {
			defer store.Close()
			observers = append(observers, history.NewRecorder(store, path, fingerprint, logger))
		}
	}
	observers = append(observers, notifications.NewObserver(notifications.NewService(cfg), logger))

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome := orchestrator.Run(runCtx, upload.Request{
		Source:         source,
		Title:          opts.title,
		Description:    opts.description,
		Tags:           opts.tags,
		Visibility:     visibility,
		PublishAt:      publishAt,
		SkipModeration: opts.skipModeration,
	}, observers)

	if opts.jsonOutput {
		if err := writeJSON(cmd, newOutcomeView(outcome)); err != nil {
			return err
		}
	} else {
		printOutcome(cmd.OutOrStdout(), outcome)
	}

	switch {
	case outcome.Succeeded():
		return nil
	case services.IsCanceled(outcome.Cause):
		return context.Canceled
	default:
		return errors.New(outcome.Message())
	}
}

// resolvePublishAt turns --publish-at or --schedule into a publish time. Local
// validation of the lead time happens in the metadata builder.
func resolvePublishAt(cfg *config.Config, opts uploadOptions, now time.Time) (*time.Time, error) {
	if opts.schedule {
		at := metadata.SuggestedPublishAt(now, cfg.DefaultLead())
		return &at, nil
	}
	value := strings.TrimSpace(opts.publishAt)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
		var (
			at  time.Time
			err error
		)
		if layout == time.RFC3339 {
			at, err = time.Parse(layout, value)
		} else {
			at, err = time.ParseInLocation(layout, value, time.Local)
		}
		if err == nil {
			return &at, nil
		}
	}
	return nil, fmt.Errorf("invalid --publish-at %q (want RFC 3339 or \"2006-01-02 15:04\")", value)
}

func printOutcome(out io.Writer, outcome upload.Outcome) {
	fmt.Fprintln(out, outcome.Message())
	if outcome.Kind == upload.KindFlaggedByModeration && len(outcome.Evidence) > 0 {
		fmt.Fprintln(out, renderEvidence(outcome.Evidence, outcome.FramesAnalyzed))
		fmt.Fprintln(out, "Review the excerpts above; rerun with --skip-moderation to upload anyway.")
	}
	if outcome.ModerationSkipped && outcome.Succeeded() {
		fmt.Fprintln(out, "Moderation was skipped for this upload.")
	}
}

func renderEvidence(segments []moderation.FlaggedSegment, frames int) string {
	rows := make([][]string, 0, len(segments))
	for _, segment := range segments {
		rows = append(rows, []string{
			moderation.FormatTimestamp(segment.TimestampSeconds),
			fmt.Sprintf("%d", segment.FrameIndex),
			segment.ExcerptText,
			moderation.FormatScores(segment.CategoryScores),
		})
	}
	title := "Flagged content"
	if frames > 0 {
		title = fmt.Sprintf("Flagged content (%d frames analyzed)", frames)
	}
	return renderTable(tableSpec{
		Title:   title,
		Headers: []string{"Time", "Frame", "Excerpt", "Scores"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
		Widths:  []int{0, 0, 60, 40},
	})
}

type evidenceView struct {
	Timestamp float64            `json:"timestamp"`
	Frame     int                `json:"frame"`
	Excerpt   string             `json:"excerpt"`
	Scores    map[string]float64 `json:"scores,omitempty"`
}

type outcomeView struct {
	UploadID          string         `json:"upload_id"`
	Outcome           upload.Kind    `json:"outcome"`
	Message           string         `json:"message"`
	Source            string         `json:"source"`
	Title             string         `json:"title,omitempty"`
	RemoteID          string         `json:"remote_id,omitempty"`
	Visibility        string         `json:"visibility,omitempty"`
	PublishAt         string         `json:"publish_at,omitempty"`
	FailedPhase       string         `json:"failed_phase,omitempty"`
	Error             string         `json:"error,omitempty"`
	Warning           string         `json:"warning,omitempty"`
	Evidence          []evidenceView `json:"evidence,omitempty"`
	FramesAnalyzed    int            `json:"frames_analyzed,omitempty"`
	BytesAcknowledged int64          `json:"bytes_acknowledged"`
	TotalBytes        int64          `json:"total_bytes"`
	ModerationSkipped bool           `json:"moderation_skipped,omitempty"`
	DurationSeconds   float64        `json:"duration_seconds"`
}

func newOutcomeView(outcome upload.Outcome) outcomeView {
	view := outcomeView{
		UploadID:          outcome.UploadID,
		Outcome:           outcome.Kind,
		Message:           outcome.Message(),
		Source:            outcome.SourceName,
		Title:             outcome.Title,
		RemoteID:          outcome.RemoteID,
		Visibility:        string(outcome.FinalVisibility),
		FailedPhase:       string(outcome.FailedPhase),
		FramesAnalyzed:    outcome.FramesAnalyzed,
		BytesAcknowledged: outcome.BytesAcknowledged,
		TotalBytes:        outcome.TotalBytes,
		ModerationSkipped: outcome.ModerationSkipped,
		DurationSeconds:   outcome.Duration().Seconds(),
	}
	if outcome.PublishAt != nil {
		view.PublishAt = outcome.PublishAt.UTC().Format(time.RFC3339)
	}
	if outcome.Cause != nil {
		view.Error = services.Describe(outcome.Cause)
	}
	if outcome.Warning != nil {
		view.Warning = services.Describe(outcome.Warning)
	}
	for _, segment := range outcome.Evidence {
		view.Evidence = append(view.Evidence, evidenceView{
			Timestamp: segment.TimestampSeconds,
			Frame:     segment.FrameIndex,
			Excerpt:   segment.ExcerptText,
			Scores:    segment.CategoryScores,
		})
	}
	return view
}
