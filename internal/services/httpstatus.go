package services

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 512

// StatusError records an unexpected HTTP status returned by a remote service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

// NewStatusError captures the status and a bounded prefix of the body.
func NewStatusError(resp *http.Response) *StatusError {
	if resp == nil {
		return &StatusError{}
	}
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
