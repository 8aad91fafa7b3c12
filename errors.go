package gorea

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the internal error taxonomy described in the
// design: invalid arguments, resource exhaustion, use-after-close, and
// timeouts. Runtime operations (Offer, Poll, Submit, latch Await) keep a
// bare boolean return on the hot path and never wrap these; they exist
// for the handful of constructors and for ConstructionError.
var (
	ErrInvalidArgument = errors.New("gorea: invalid argument")
	ErrResource        = errors.New("gorea: resource allocation failed")
	ErrClosed          = errors.New("gorea: already closed")
	ErrTimeout         = errors.New("gorea: timed out")
)

// ConstructionError reports why a constructor (NewArrayBlockingQueue,
// NewReentrantLock, NewFixedThreadPoolExecutor, ...) returned a zero value.
// Construction errors carry no partial state: a non-nil ConstructionError
// means the object was never usable.
type ConstructionError struct {
	Timestamp time.Time
	Component string
	Err       error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("gorea: %s: %v", e.Component, e.Err)
}

// Unwrap supports errors.Is/errors.As against the sentinel taxonomy above.
func (e *ConstructionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newConstructionError(component string, cause error) *ConstructionError {
	return &ConstructionError{
		Timestamp: time.Now(),
		Component: component,
		Err:       cause,
	}
}
