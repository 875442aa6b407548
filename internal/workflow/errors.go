package workflow

import "errors"

// Validation errors. These stall the current step without losing any
// session state; the presentation layer re-prompts and the same action
// can be retried.
var (
	ErrUnknownDriver     = errors.New("driver not found in registry")
	ErrDriverBusy        = errors.New("another session is working this driver")
	ErrNoActiveSession   = errors.New("no active session")
	ErrInvalidAmount     = errors.New("value is not a valid amount")
	ErrInvalidTransition = errors.New("action not valid in current step")
)
