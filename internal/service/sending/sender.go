// Package sending defines the mail-transport capability the dispatch
// scheduler depends on.
//
// Transports (SES, SMTP, log) live in mailing/ and implement Sender. A
// transport reports a permanent rejection by wrapping ErrHardBounce; every
// other error is treated as a plain delivery failure.
package sending

import (
	"context"
	"errors"
)

// ErrHardBounce marks a permanent rejection of the recipient address.
var ErrHardBounce = errors.New("hard bounce")

// Message is one rendered simulation email.
type Message struct {
	FromEmail string
	FromName  string
	ToEmail   string
	ToName    string
	Subject   string
	HTMLBody  string
	TextBody  string
	// Tags correlate the message with its campaign at the transport
	// (SES message tags, SMTP X- headers).
	Tags map[string]string
}

// Result is what a transport reports for an accepted message.
type Result struct {
	MessageID string
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
}

// IsHardBounce reports whether err marks a permanent rejection.
func IsHardBounce(err error) bool {
	return errors.Is(err, ErrHardBounce)
}
