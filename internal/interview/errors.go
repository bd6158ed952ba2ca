package interview

import (
	"errors"
	"fmt"
)

// ErrSessionState matches every error caused by calling an operation in a
// state that forbids it. It never wraps storage or collaborator failures.
var ErrSessionState = errors.New("invalid session state")

var (
	ErrNoActiveSession   = errors.New("no active session")
	ErrSessionActive     = errors.New("a session is already active")
	ErrSessionEnded      = errors.New("session already ended")
	ErrInvalidTransition = errors.New("transition not allowed")
)

type SessionStateError struct {
	Op    string
	State State
	Err   error
}

func (e *SessionStateError) Error() string {
	return fmt.Sprintf("%s: %v (state %s)", e.Op, e.Err, e.State)
}

func (e *SessionStateError) Unwrap() error {
	return e.Err
}

func (e *SessionStateError) Is(target error) bool {
	return target == ErrSessionState
}

func NewSessionStateError(op string, state State, err error) error {
	return &SessionStateError{Op: op, State: state, Err: err}
}
