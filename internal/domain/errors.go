package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a request the service cannot turn into a feature vector.
// Its message is safe to return to clients.
type ValidationError struct {
	Field  string // empty when the body as a whole is invalid
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("Missing or invalid value for '%s'", e.Field)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ComputationError reports a valid request whose prediction could not be produced,
// such as a non-finite model output. Its message is safe to return to clients.
type ComputationError struct {
	Reason string
	Err    error
}

func (e *ComputationError) Error() string { return e.Reason }

func (e *ComputationError) Unwrap() error { return e.Err }

// InternalError wraps failures that must not leak to clients: inconsistent
// artifacts, unreachable backends, recovered panics.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

// ErrNonFiniteResult is the reason attached to a ComputationError when the model
// returns NaN or ±Inf.
var ErrNonFiniteResult = errors.New("Prediction result is not a finite number.") //nolint:staticcheck // client-facing message

// PublicMessage returns the message a client may see for err and whether err is a
// client error (validation or computation). Anything else maps to a generic
// message and false.
func PublicMessage(err error) (string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error(), true
	}
	var cerr *ComputationError
	if errors.As(err, &cerr) {
		return cerr.Error(), true
	}
	return "internal error", false
}
