package upload

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clipdeck/internal/metadata"
	"clipdeck/internal/moderation"
	"clipdeck/internal/services"
)

// Kind classifies a terminal outcome.
type Kind string

const (
	KindSucceeded           Kind = "succeeded"
	KindRejected            Kind = "rejected"
	KindFailedNetwork       Kind = "failed_network"
	KindFlaggedByModeration Kind = "flagged"
)

// Outcome is the single terminal result of a Run.
type Outcome struct {
	Kind       Kind
	UploadID   string
	SourceName string
	Title      string

	// RemoteID is set for KindSucceeded.
	RemoteID        string
	FinalVisibility metadata.Visibility
	PublishAt       *time.Time

	// Cause is set for KindRejected and KindFailedNetwork.
	Cause error
	// FailedPhase names the state the run was in when it failed.
	FailedPhase State

	// Evidence is the deduplicated flagged content for KindFlaggedByModeration.
	Evidence       []moderation.FlaggedSegment
	FramesAnalyzed int

	// Warning carries an advisory failure attached to a success, such as a
	// visibility patch that did not apply.
	Warning error

	BytesAcknowledged int64
	TotalBytes        int64
	ModerationSkipped bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the asset was uploaded.
func (o Outcome) Succeeded() bool { return o.Kind == KindSucceeded }

// Duration is the wall time of the run.
func (o Outcome) Duration() time.Duration {
	if o.StartedAt.IsZero() || o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// Message renders a one-line summary naming the phase that failed.
func (o Outcome) Message() string {
	switch o.Kind {
	case KindSucceeded:
		msg := fmt.Sprintf("Uploaded %s as %s", displayName(o), o.RemoteID)
		if o.PublishAt != nil {
			msg += fmt.Sprintf(", publishing %s", o.PublishAt.UTC().Format(time.RFC3339))
		} else if o.FinalVisibility != "" {
			msg += fmt.Sprintf(" (%s)", o.FinalVisibility)
		}
		if o.Warning != nil {
			msg += "; warning: " + services.Describe(o.Warning)
		}
		return msg
	case KindFlaggedByModeration:
		return fmt.Sprintf("Moderation flagged %d segment(s) in %s; upload blocked", len(o.Evidence), displayName(o))
	case KindRejected, KindFailedNetwork:
		phase := o.FailedPhase
		if phase == "" {
			phase = StateIdle
		}
		return fmt.Sprintf("Upload failed during %s: %s", phase, services.Describe(o.Cause))
	default:
		return strings.TrimSpace(string(o.Kind))
	}
}

func displayName(o Outcome) string {
	if o.Title != "" {
		return fmt.Sprintf("%q", o.Title)
	}
	return o.SourceName
}

// classify maps a failure to an outcome kind. Problems detected locally and
// cancellations reject the request; everything else is a failed attempt.
// Network markers win over a local cause they wrap, so a credential lost
// mid-transfer still counts as a failed attempt.
func classify(err error) Kind {
	switch {
	case err == nil:
		return KindSucceeded
	case errors.Is(err, services.ErrCanceled):
		return KindRejected
	case services.IsNetwork(err):
		return KindFailedNetwork
	case services.IsCanceled(err), services.IsLocal(err):
		return KindRejected
	default:
		return KindFailedNetwork
	}
}
