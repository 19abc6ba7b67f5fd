package transport

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSessionClosed is returned when a finished or failed session is driven again.
var ErrSessionClosed = errors.New("transport session closed")

// Session is the transient state of one transfer.
type Session struct {
	// UploadURL is the session-scoped URL; empty for multipart uploads.
	UploadURL string
	// TotalBytes is the file size declared at initiation.
	TotalBytes int64

	mu       sync.Mutex
	acked    int64
	closed   bool
	metadata []byte
	mimeType string
}

func newSession(uploadURL string, total int64, metadata []byte, mimeType string) *Session {
	return &Session{UploadURL: uploadURL, TotalBytes: total, metadata: metadata, mimeType: mimeType}
}

// BytesAcknowledged returns the server-confirmed offset.
func (s *Session) BytesAcknowledged() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acked
}

// Closed reports whether the session has reached a terminal state.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// acknowledge moves the confirmed offset forward. Offsets must strictly
// increase and never exceed the total.
func (s *Session) acknowledge(offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if offset <= s.acked || offset > s.TotalBytes {
		return fmt.Errorf("acknowledged offset %d does not advance from %d within %d bytes", offset, s.acked, s.TotalBytes)
	}
	s.acked = offset
	return nil
}

// begin claims the session for a Drive call.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
