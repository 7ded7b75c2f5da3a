package rgbdtrack

import (
	"errors"
	"fmt"
)

// ErrAborted is matched by every error returned from a session that was
// stopped by an unexpected fault
var ErrAborted = errors.New("tracking session aborted")

// FaultError describes the fault that aborted a session
type FaultError struct {
	// Frame is the number of frames retrieved when the fault occurred
	Frame int
	// State is the state the session was in
	State State
	// Err is the underlying fault
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%v at frame %d while %s: %v", ErrAborted, e.Frame, e.State, e.Err)
}

// Unwrap allows matching both ErrAborted and the underlying fault
func (e *FaultError) Unwrap() []error {
	return []error{ErrAborted, e.Err}
}
