package engagement

import "errors"

// Sentinel errors for the engagement service layer.
var (
	ErrNotFound     = errors.New("tracking token not found")
	ErrInvalidEvent = errors.New("invalid engagement event")
)
