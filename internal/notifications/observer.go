package notifications

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"clipdeck/internal/logging"
	"clipdeck/internal/services"
	"clipdeck/internal/upload"
)

const deliveryTimeout = 30 * time.Second

// Observer pushes one notification per finished upload run.
type Observer struct {
	service Service
	logger  *slog.Logger
}

var _ upload.Observer = (*Observer)(nil)

// NewObserver adapts svc to the upload pipeline.
func NewObserver(svc Service, logger *slog.Logger) *Observer {
	if svc == nil {
		svc = noopService{}
	}
	return &Observer{service: svc, logger: logging.NewComponentLogger(logger, "notifications")}
}

// Event ignores progress updates.
func (o *Observer) Event(upload.Event) {}

// Finish maps the outcome to a notification. Canceled runs stay silent.
func (o *Observer) Finish(outcome upload.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	title := strings.TrimSpace(outcome.Title)
	if title == "" {
		title = outcome.SourceName
	}

	var err error
	switch outcome.Kind {
	case upload.KindSucceeded:
		err = o.service.NotifyUploadSucceeded(ctx, title, outcome.RemoteID, outcome.PublishAt)
	case upload.KindFlaggedByModeration:
		err = o.service.NotifyFlagged(ctx, title, len(outcome.Evidence))
	default:
		if services.IsCanceled(outcome.Cause) {
			return
		}
		label := "upload of " + title
		if outcome.FailedPhase != "" {
			label += " (" + string(outcome.FailedPhase) + ")"
		}
		err = o.service.NotifyError(ctx, outcome.Cause, label)
	}
	if err != nil {
		logging.WarnWithContext(o.logger, "notification delivery failed", "notification_failed",
			logging.String("upload_id", outcome.UploadID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ntfy_topic and network reachability"),
			logging.String(logging.FieldImpact, "upload result was not announced"),
		)
	}
}
