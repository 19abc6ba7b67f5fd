package metadata

import (
	"fmt"

	"clipdeck/internal/services"
)

// Code classifies a validation failure.
type Code string

const (
	CodeInvalidField               Code = "invalid_field"
	CodeScheduleTooSoon            Code = "schedule_too_soon"
	CodeScheduleVisibilityConflict Code = "schedule_visibility_conflict"
)

// ValidationError reports a form problem found before any network call.
type ValidationError struct {
	Code    Code
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

// Unwrap ties every validation failure to services.ErrValidation.
func (e *ValidationError) Unwrap() error { return services.ErrValidation }
