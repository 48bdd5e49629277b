package dispatch

import "errors"

// Sentinel errors for the dispatch service layer.
var (
	// ErrInvalidTransition is returned by a commit whose row already left pending.
	ErrInvalidTransition = errors.New("recipient is not pending")
	// ErrIntegrity is returned when a commit would break a row invariant.
	ErrIntegrity = errors.New("dispatch integrity violation")
)
