package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFlowNotFound is returned when a booking flow id is unknown or expired.
	ErrFlowNotFound = errors.New("booking: flow not found")

	// ErrSubmitInFlight is returned when a submission is already pending for
	// the same flow.
	ErrSubmitInFlight = errors.New("booking: submission already in progress")

	// ErrUnknownField is returned by Draft.Update for an unrecognized field key.
	ErrUnknownField = errors.New("booking: unknown draft field")
)

// FieldError names one invalid or missing draft field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full set of field problems found before
// submission. No remote call is made while one of these is outstanding.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("booking: invalid draft: %s", strings.Join(names, ", "))
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
