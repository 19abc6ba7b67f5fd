package history

import (
	"context"
	"log/slog"

	"clipdeck/internal/logging"
	"clipdeck/internal/upload"
)

// Recorder appends each finished run to the store. It implements
// upload.Observer and ignores progress events.
type Recorder struct {
	store       *Store
	sourcePath  string
	fingerprint string
	logger      *slog.Logger
}

// NewRecorder returns an observer that records one run of sourcePath.
func NewRecorder(store *Store, sourcePath, fingerprint string, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:       store,
		sourcePath:  sourcePath,
		fingerprint: fingerprint,
		logger:      logging.NewComponentLogger(logger, "history"),
	}
}

func (r *Recorder) Event(upload.Event) {}

// Finish stores the outcome. A storage failure is logged and never affects
// the upload result.
func (r *Recorder) Finish(out upload.Outcome) {
	if r == nil || r.store == nil {
		return
	}
	entry := EntryFromOutcome(out, r.sourcePath, r.fingerprint)
	if err := r.store.Add(context.Background(), entry); err != nil {
		logging.WarnWithContext(r.logger, "failed to record upload history", "history_write_failed",
			logging.String(logging.FieldUploadID, out.UploadID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "upload missing from history"),
			logging.String(logging.FieldErrorHint, "check permissions on "+r.store.Path()),
		)
	}
}
