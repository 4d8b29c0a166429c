package financial

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput        = errors.New("missing input")
	ErrInvalidValue        = errors.New("invalid value")
	ErrMalformedProjection = errors.New("malformed projection")
)

// MissingInputError reports an input group that was not supplied.
type MissingInputError struct {
	Group string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %s is required for calculations", ErrMissingInput, e.Group)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// InvalidValueError reports a field that violates its numeric constraint.
type InvalidValueError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %s=%s %s", ErrInvalidValue, e.Field, e.Value, e.Reason)
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalidValue }

// MalformedProjectionError reports a projection series that breaks month
// contiguity or the running-total invariant.
type MalformedProjectionError struct {
	Month  int
	Reason string
}

func (e *MalformedProjectionError) Error() string {
	if e.Month == 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedProjection, e.Reason)
	}
	return fmt.Sprintf("%s: month %d: %s", ErrMalformedProjection, e.Month, e.Reason)
}

func (e *MalformedProjectionError) Is(target error) bool { return target == ErrMalformedProjection }
