package upload

import (
	"context"
	"errors"
	"testing"

	"clipdeck/internal/services"
	"clipdeck/internal/transport"
)

func transportProgress(percent float64) transport.Progress {
	return transport.Progress{Percent: percent}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
		want bool
	}{
		{StateIdle, StateAnalyzing, true},
		{StateIdle, StateUploading, true},
		{StateIdle, StatePatchingVisibility, false},
		{StateIdle, StateSucceeded, false},
		{StateAnalyzing, StateFlagged, true},
		{StateAnalyzing, StateUploading, true},
		{StateAnalyzing, StatePatchingVisibility, false},
		{StateUploading, StatePatchingVisibility, true},
		{StateUploading, StateSucceeded, true},
		{StateUploading, StateAnalyzing, false},
		{StatePatchingVisibility, StateSucceeded, true},
		{StatePatchingVisibility, StateFailed, false},
		{StateFlagged, StateUploading, false},
		{StateSucceeded, StateFailed, false},
		{StateFailed, StateIdle, false},
	}
	for _, tc := range tests {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
	for _, s := range []State{StateFlagged, StateSucceeded, StateFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if StateUploading.Terminal() {
		t.Error("uploading is not terminal")
	}
}

func TestSessionRejectsIllegalTransitionAndBackwardsProgress(t *testing.T) {
	var events []Event
	s := newSession("id-1", nil, ObserverFuncs{OnEvent: func(e Event) { events = append(events, e) }})

	if err := s.transition(StatePatchingVisibility); err == nil {
		t.Fatal("expected idle -> patching to be rejected")
	}
	if err := s.transition(StateUploading); err != nil {
		t.Fatalf("transition: %v", err)
	}
	s.progress(transportProgress(40))
	s.progress(transportProgress(20))
	s.progress(transportProgress(60))
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Percent != 40 || events[2].Percent != 60 {
		t.Fatalf("unexpected progress sequence: %+v", events)
	}

	var finished int
	s.observer = ObserverFuncs{OnFinish: func(Outcome) { finished++ }}
	s.finish(Outcome{})
	s.finish(Outcome{})
	if finished != 1 {
		t.Fatalf("outcome delivered %d times", finished)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindSucceeded},
		{services.Wrap(services.ErrValidation, "idle", "build", "bad title", nil), KindRejected},
		{services.Wrap(services.ErrUnauthenticated, "idle", "credential", "", nil), KindRejected},
		{services.Wrap(services.ErrCanceled, "uploading", "drive", "", context.Canceled), KindRejected},
		{services.Wrap(services.ErrAnalysisUnavailable, "analyzing", "submit", "", nil), KindFailedNetwork},
		{services.Wrap(services.ErrInitiationFailed, "uploading", "initiate", "", nil), KindFailedNetwork},
		{services.Wrap(services.ErrTransportFailed, "uploading", "put chunk", "", nil), KindFailedNetwork},
		{services.Wrap(services.ErrTransportFailed, "uploading", "put chunk", "bytes 524288-786431/2621440",
			services.Wrap(services.ErrUnauthenticated, "uploading", "resolve credential", "no access token available", nil)), KindFailedNetwork},
		{services.Wrap(services.ErrCanceled, "uploading", "drive", "", services.Wrap(services.ErrTransportFailed, "uploading", "put chunk", "", nil)), KindRejected},
		{errors.New("unexpected"), KindFailedNetwork},
	}
	for _, tc := range tests {
		if got := classify(tc.err); got != tc.want {
			t.Errorf("classify(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
