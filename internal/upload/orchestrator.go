package upload

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clipdeck/internal/config"
	"clipdeck/internal/credentials"
	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/metadata"
	"clipdeck/internal/moderation"
	"clipdeck/internal/services"
	"clipdeck/internal/services/youtube"
	"clipdeck/internal/transport"
)

// Request is the user's intent for one upload. It is consumed by exactly one
// Run.
type Request struct {
	Source      media.Source
	Title       string
	Description string
	Tags        []string
	Visibility  metadata.Visibility
	PublishAt   *time.Time
	// SkipModeration is the caller's explicit decision to bypass analysis,
	// for example after reviewing flagged evidence.
	SkipModeration bool
}

func (r Request) form() metadata.Request {
	name := ""
	if r.Source != nil {
		name = r.Source.Name()
	}
	return metadata.Request{
		SourceName:  name,
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		Visibility:  r.Visibility,
		PublishAt:   r.PublishAt,
	}
}

// Dependencies are the collaborators an Orchestrator sequences.
type Dependencies struct {
	Credentials credentials.Supplier
	Builder     *metadata.Builder
	// Gate is nil when moderation is disabled by configuration.
	Gate      moderation.Gate
	Policy    moderation.Policy
	Transport transport.Transport
	Patcher   youtube.StatusUpdater
	Logger    *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to random UUIDs.
	NewID func() string
}

// Orchestrator runs uploads. It holds no per-run state, so one instance may
// serve concurrent runs.
type Orchestrator struct {
	deps   Dependencies
	logger *slog.Logger
}

// New constructs an Orchestrator from explicit dependencies.
func New(deps Dependencies) (*Orchestrator, error) {
	if deps.Builder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "new orchestrator", "metadata builder is required", nil)
	}
	if deps.Transport == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "new orchestrator", "transport is required", nil)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Orchestrator{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "upload"),
	}, nil
}

// NewFromConfig wires the production collaborators described by cfg.
func NewFromConfig(cfg *config.Config, creds credentials.Supplier, logger *slog.Logger) (*Orchestrator, error) {
	deps, err := DependenciesFromConfig(cfg, creds, logger)
	if err != nil {
		return nil, err
	}
	return New(deps)
}

// DependenciesFromConfig builds the production collaborators without
// constructing the Orchestrator, so callers can override individual pieces.
// A nil creds resolves the credential from cfg.
func DependenciesFromConfig(cfg *config.Config, creds credentials.Supplier, logger *slog.Logger) (Dependencies, error) {
	if cfg == nil {
		return Dependencies{}, services.Wrap(services.ErrConfiguration, "", "new orchestrator", "config is nil", nil)
	}
	if creds == nil {
		creds = credentials.FromConfig(cfg)
	}
	tr, err := transport.New(cfg, creds, transport.WithLogger(logger))
	if err != nil {
		return Dependencies{}, err
	}
	deps := Dependencies{
		Credentials: creds,
		Builder:     metadata.NewBuilder(metadata.OptionsFromConfig(cfg)),
		Policy:      moderation.Policy{MinScore: cfg.Moderation.MinScore},
		Transport:   tr,
		Patcher:     youtube.NewConfiguredClient(cfg, creds, logger),
		Logger:      logger,
	}
	if cfg.Moderation.Enabled {
		deps.Gate = moderation.NewClient(moderation.Config{
			BaseURL: cfg.Moderation.URL,
			Timeout: cfg.ModerationTimeout(),
		}, moderation.WithLogger(logger))
	}
	return deps, nil
}

// Run executes one upload and returns its outcome. The observer, when not
// nil, receives every phase change and progress sample followed by exactly
// one Finish call carrying the same outcome.
func (o *Orchestrator) Run(ctx context.Context, req Request, observer Observer) Outcome {
	id := o.deps.NewID()
	ctx = services.WithUploadID(ctx, id)
	ctx = services.WithRequestID(ctx, id)

	s := newSession(id, req.Source, observer)
	outcome := Outcome{UploadID: id, StartedAt: o.deps.Now()}
	if req.Source != nil {
		outcome.SourceName = req.Source.Name()
		outcome.TotalBytes = req.Source.Size()
	}

	o.run(ctx, s, req, &outcome)

	outcome.FinishedAt = o.deps.Now()
	outcome.BytesAcknowledged, outcome.TotalBytes = s.acknowledged()
	if outcome.Kind == KindSucceeded {
		outcome.BytesAcknowledged = outcome.TotalBytes
	}
	o.logOutcome(ctx, outcome)
	s.finish(outcome)
	return outcome
}

func (o *Orchestrator) run(ctx context.Context, s *session, req Request, out *Outcome) {
	logger := logging.WithContext(services.WithPhase(ctx, string(StateIdle)), o.logger)

	if req.Source == nil || req.Source.Size() <= 0 {
		o.fail(s, out, services.Wrap(services.ErrValidation, string(StateIdle), "check source", "file is empty or missing", nil))
		return
	}
	if _, err := credentials.Require(ctx, o.deps.Credentials, string(StateIdle)); err != nil {
		o.fail(s, out, err)
		return
	}
	built, err := o.deps.Builder.Build(req.form(), o.deps.Now())
	if err != nil {
		o.fail(s, out, err)
		return
	}
	out.Title = built.Wire.Snippet.Title
	if err := ctx.Err(); err != nil {
		o.fail(s, out, services.Wrap(services.ErrCanceled, string(StateIdle), "start", "canceled before analysis", err))
		return
	}

	if o.deps.Gate != nil && !req.SkipModeration {
		if !o.analyze(ctx, s, req, out) {
			return
		}
		// Analysis can take long enough for a schedule to fall inside the
		// minimum lead, so the metadata is rebuilt against a fresh clock.
		built, err = o.deps.Builder.Build(req.form(), o.deps.Now())
		if err != nil {
			o.fail(s, out, err)
			return
		}
	} else {
		out.ModerationSkipped = true
		reason := "disabled by configuration"
		if req.SkipModeration {
			reason = "skipped by request"
		}
		logging.WarnWithContext(logger, "moderation skipped", "moderation_skipped",
			logging.String("reason", reason),
			logging.String(logging.FieldImpact, "file uploaded without content analysis"),
			logging.String(logging.FieldErrorHint, "enable moderation or omit --skip-moderation to analyze uploads"),
		)
	}

	out.FinalVisibility = built.FinalVisibility
	out.PublishAt = built.PublishAt

	remoteID, ok := o.upload(ctx, s, req, built, out)
	if !ok {
		return
	}
	out.RemoteID = remoteID

	if built.NeedsPatch {
		o.patch(ctx, s, remoteID, built, out)
	}
	if err := s.transition(StateSucceeded); err != nil {
		o.fail(s, out, err)
		return
	}
	out.Kind = KindSucceeded
}

// analyze runs the moderation gate. It returns false when the run has ended.
func (o *Orchestrator) analyze(ctx context.Context, s *session, req Request, out *Outcome) bool {
	if err := s.transition(StateAnalyzing); err != nil {
		o.fail(s, out, err)
		return false
	}
	phaseCtx := services.WithPhase(ctx, string(StateAnalyzing))
	verdict, err := o.deps.Gate.Submit(phaseCtx, req.Source)
	if err != nil {
		o.fail(s, out, err)
		return false
	}
	verdict = o.deps.Policy.Apply(verdict)
	out.FramesAnalyzed = verdict.FramesAnalyzed
	if verdict.Flagged() {
		out.Kind = KindFlaggedByModeration
		out.Evidence = moderation.Dedupe(verdict.Evidence)
		if err := s.transition(StateFlagged); err != nil {
			o.fail(s, out, err)
		}
		return false
	}
	if err := ctx.Err(); err != nil {
		o.fail(s, out, services.Wrap(services.ErrCanceled, string(StateAnalyzing), "analyze", "canceled after analysis", err))
		return false
	}
	return true
}

// upload opens a transport session and drives it to completion.
func (o *Orchestrator) upload(ctx context.Context, s *session, req Request, built metadata.Result, out *Outcome) (string, bool) {
	if err := s.transition(StateUploading); err != nil {
		o.fail(s, out, err)
		return "", false
	}
	phaseCtx := services.WithPhase(ctx, string(StateUploading))
	transfer, err := o.deps.Transport.Initiate(phaseCtx, built.Wire, req.Source)
	if err != nil {
		o.fail(s, out, err)
		return "", false
	}
	s.attach(transfer)
	remoteID, err := o.deps.Transport.Drive(phaseCtx, transfer, req.Source, s.progress)
	if err != nil {
		o.fail(s, out, err)
		return "", false
	}
	return remoteID, true
}

// patch promotes the uploaded asset to its final visibility. Failures become
// a warning on the successful outcome. The asset already exists, so
// cancellation no longer applies.
func (o *Orchestrator) patch(ctx context.Context, s *session, remoteID string, built metadata.Result, out *Outcome) {
	if err := s.transition(StatePatchingVisibility); err != nil {
		out.Warning = err
		return
	}
	phaseCtx := services.WithPhase(context.WithoutCancel(ctx), string(StatePatchingVisibility))
	if o.deps.Patcher == nil {
		out.Warning = services.Wrap(services.ErrPatchFailed, string(StatePatchingVisibility), "update visibility", "no status client configured", nil)
	} else {
		out.Warning = o.deps.Patcher.UpdateVisibility(phaseCtx, remoteID, built.FinalVisibility, built.Wire.Status.SelfDeclaredMadeForKids)
	}
	if out.Warning != nil {
		logging.WarnWithContext(logging.WithContext(phaseCtx, o.logger), "visibility patch failed", "patch_failed",
			logging.String("remote_id", remoteID),
			logging.String("visibility", string(built.FinalVisibility)),
			logging.Error(out.Warning),
			logging.String(logging.FieldImpact, "video uploaded but its visibility may be wrong"),
			logging.String(logging.FieldErrorHint, "set the visibility in the hosting dashboard"),
		)
	}
}

func (o *Orchestrator) fail(s *session, out *Outcome, err error) {
	out.FailedPhase = s.current()
	out.Cause = err
	out.Kind = classify(err)
	if transitionErr := s.transition(StateFailed); transitionErr != nil {
		out.Cause = errors.Join(err, transitionErr)
	}
}

func (o *Orchestrator) logOutcome(ctx context.Context, out Outcome) {
	logger := logging.WithContext(ctx, o.logger)
	attrs := []logging.Attr{
		logging.String("outcome", string(out.Kind)),
		logging.String("file", out.SourceName),
		logging.Bytes(out.BytesAcknowledged, out.TotalBytes),
		logging.Duration("elapsed", out.Duration()),
	}
	switch out.Kind {
	case KindSucceeded:
		attrs = append(attrs, logging.String("remote_id", out.RemoteID), logging.Bool("warning", out.Warning != nil))
		logger.Info("upload finished", logging.Args(attrs...)...)
	case KindFlaggedByModeration:
		attrs = append(attrs, logging.Int("segments", len(out.Evidence)))
		logging.WarnWithContext(logger, "upload blocked by moderation", "moderation_flagged",
			append(attrs,
				logging.String(logging.FieldImpact, "file was not uploaded"),
				logging.String(logging.FieldErrorHint, "review the evidence and resubmit with --skip-moderation to override"),
			)...)
	default:
		attrs = append(attrs, logging.String(logging.FieldPhase, string(out.FailedPhase)), logging.Error(out.Cause))
		if out.Kind == KindRejected {
			logger.Info("upload rejected", logging.Args(attrs...)...)
			return
		}
		logging.ErrorWithContext(logger, "upload failed", "upload_failed",
			append(attrs, logging.String(logging.FieldErrorHint, "start a new upload; transfers are not resumed"))...)
	}
}
