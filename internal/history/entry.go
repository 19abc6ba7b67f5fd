package history

import (
	"time"

	"clipdeck/internal/upload"
)

// Entry is one finished upload.
type Entry struct {
	ID                string
	SourcePath        string
	SourceName        string
	Fingerprint       string
	Title             string
	Outcome           upload.Kind
	RemoteID          string
	Visibility        string
	PublishAt         *time.Time
	FailedPhase       string
	ErrorMessage      string
	WarningMessage    string
	EvidenceCount     int
	BytesAcknowledged int64
	TotalBytes        int64
	ModerationSkipped bool
	StartedAt         time.Time
	FinishedAt        time.Time
}

// EntryFromOutcome flattens an outcome for storage. sourcePath and
// fingerprint are optional.
func EntryFromOutcome(out upload.Outcome, sourcePath, fingerprint string) Entry {
	entry := Entry{
		ID:                out.UploadID,
		SourcePath:        sourcePath,
		SourceName:        out.SourceName,
		Fingerprint:       fingerprint,
		Title:             out.Title,
		Outcome:           out.Kind,
		RemoteID:          out.RemoteID,
		Visibility:        string(out.FinalVisibility),
		PublishAt:         out.PublishAt,
		EvidenceCount:     len(out.Evidence),
		BytesAcknowledged: out.BytesAcknowledged,
		TotalBytes:        out.TotalBytes,
		ModerationSkipped: out.ModerationSkipped,
		StartedAt:         out.StartedAt,
		FinishedAt:        out.FinishedAt,
	}
	if out.Cause != nil {
		entry.FailedPhase = string(out.FailedPhase)
		entry.ErrorMessage = out.Cause.Error()
	}
	if out.Warning != nil {
		entry.WarningMessage = out.Warning.Error()
	}
	return entry
}

// Summary counts entries per outcome.
type Summary struct {
	Total     int
	Succeeded int
	Rejected  int
	Failed    int
	Flagged   int
}
