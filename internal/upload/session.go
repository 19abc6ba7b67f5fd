package upload

import (
	"fmt"
	"sync"

	"clipdeck/internal/media"
	"clipdeck/internal/transport"
)

// session is the transient state of one run: the selected source, the
// current phase, the last reported progress, and the transport session once
// one exists. It lives exactly as long as Run.
type session struct {
	mu       sync.Mutex
	id       string
	source   media.Source
	state    State
	percent  float64
	transfer *transport.Session
	observer Observer
	finished bool
}

func newSession(id string, source media.Source, observer Observer) *session {
	if observer == nil {
		observer = ObserverFuncs{}
	}
	return &session{id: id, source: source, state: StateIdle, observer: observer}
}

// transition moves the machine to next and notifies the observer.
func (s *session) transition(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanTransition(next) {
		return fmt.Errorf("illegal upload transition %s -> %s", s.state, next)
	}
	s.state = next
	if next == StateSucceeded {
		s.percent = 100
	}
	s.observer.Event(s.eventLocked())
	return nil
}

// progress records a transport sample. Samples that would move progress
// backwards are dropped.
func (s *session) progress(p transport.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUploading || p.Percent < s.percent {
		return
	}
	s.percent = p.Percent
	event := s.eventLocked()
	event.BytesAcknowledged = p.Bytes
	s.observer.Event(event)
}

func (s *session) attach(t *transport.Session) {
	s.mu.Lock()
	s.transfer = t
	s.mu.Unlock()
}

func (s *session) current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// acknowledged returns the server-confirmed offset and the total size.
func (s *session) acknowledged() (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := int64(0)
	if s.source != nil {
		total = s.source.Size()
	}
	if s.transfer == nil {
		return 0, total
	}
	return s.transfer.BytesAcknowledged(), s.transfer.TotalBytes
}

// finish delivers the outcome once.
func (s *session) finish(outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	s.observer.Finish(outcome)
}

func (s *session) eventLocked() Event {
	event := Event{UploadID: s.id, Phase: s.state, Percent: s.percent}
	if s.source != nil {
		event.TotalBytes = s.source.Size()
	}
	if s.transfer != nil {
		event.BytesAcknowledged = s.transfer.BytesAcknowledged()
		event.TotalBytes = s.transfer.TotalBytes
	}
	return event
}
