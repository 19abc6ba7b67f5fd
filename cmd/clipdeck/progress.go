package main

import (
	"fmt"
	"io"
	"log/slog"

	"clipdeck/internal/logging"
	"clipdeck/internal/upload"
)

// progressReporter renders upload events either as a live status line on a
// terminal or as sampled log records otherwise.
type progressReporter struct {
	out     io.Writer
	live    bool
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	drawn   bool
}

var _ upload.Observer = (*progressReporter)(nil)

func newProgressReporter(out io.Writer, logger *slog.Logger) *progressReporter {
	return &progressReporter{
		out:     out,
		live:    isTerminal(out),
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(5),
	}
}

func (p *progressReporter) Event(e upload.Event) {
	if p.live {
		fmt.Fprintf(p.out, "\r\033[K%-10s %5.1f%%  %s / %s",
			phaseLabel(e.Phase), e.Percent, formatBytes(e.BytesAcknowledged), formatBytes(e.TotalBytes))
		p.drawn = true
		return
	}
	if !p.sampler.ShouldLog(e.Percent, string(e.Phase)) {
		return
	}
	p.logger.Info("upload progress",
		logging.String("upload_id", e.UploadID),
		logging.String("phase", string(e.Phase)),
		logging.Float64("percent", e.Percent),
		logging.Bytes(e.BytesAcknowledged, e.TotalBytes),
	)
}

func (p *progressReporter) Finish(upload.Outcome) {
	if p.live && p.drawn {
		fmt.Fprintln(p.out)
	}
}

func phaseLabel(state upload.State) string {
	switch state {
	case upload.StateAnalyzing:
		return "analyzing"
	case upload.StateUploading:
		return "uploading"
	case upload.StatePatchingVisibility:
		return "finalizing"
	case upload.StateSucceeded:
		return "done"
	case upload.StateFailed:
		return "failed"
	case upload.StateFlagged:
		return "flagged"
	default:
		return string(state)
	}
}
