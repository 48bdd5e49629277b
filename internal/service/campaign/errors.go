package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNotFound           = errors.New("campaign not found")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrDuplicatePairing   = errors.New("recipient already enrolled in campaign")
	ErrDuplicateRecipient = errors.New("recipient email already exists")
)
