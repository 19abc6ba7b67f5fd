package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrValidation          = errors.New("validation error")
	ErrConfiguration       = errors.New("configuration error")
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	ErrInitiationFailed    = errors.New("upload initiation failed")
	ErrTransportFailed     = errors.New("transport failed")
	ErrPatchFailed         = errors.New("visibility patch failed")
	ErrCanceled            = errors.New("canceled")
)

// Wrap builds an error message that includes phase context while tagging it with
// the provided marker for later outcome classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrTransportFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsLocal reports whether err was detected before any network call was made.
func IsLocal(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrConfiguration)
}

// IsNetwork reports whether err is marked as a failure of a remote exchange.
// Such errors may still wrap a local cause, e.g. a credential that vanished
// between two chunks.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrAnalysisUnavailable) || errors.Is(err, ErrInitiationFailed) ||
		errors.Is(err, ErrTransportFailed) || errors.Is(err, ErrPatchFailed)
}

// IsCanceled reports whether err stems from a caller-initiated cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// Describe renders a one-line, human readable explanation naming the phase
// that failed.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var prefix string
	switch {
	case errors.Is(err, ErrUnauthenticated):
		prefix = "Not signed in"
	case errors.Is(err, ErrValidation):
		prefix = "Upload details are invalid"
	case errors.Is(err, ErrConfiguration):
		prefix = "Configuration problem"
	case errors.Is(err, ErrAnalysisUnavailable):
		prefix = "Content analysis failed"
	case errors.Is(err, ErrInitiationFailed):
		prefix = "Could not start the upload"
	case errors.Is(err, ErrTransportFailed):
		prefix = "Upload interrupted"
	case errors.Is(err, ErrPatchFailed):
		prefix = "Uploaded, but visibility could not be updated"
	case IsCanceled(err):
		prefix = "Upload canceled"
	default:
		return strings.TrimSpace(err.Error())
	}
	return prefix + " (" + strings.TrimSpace(err.Error()) + ")"
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
