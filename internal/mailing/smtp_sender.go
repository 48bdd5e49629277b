package mailing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/ignite/awaresim/internal/pkg/logger"
	"github.com/ignite/awaresim/internal/service/sending"
)

// SMTP reply codes that reject the recipient mailbox itself.
var hardBounceCodes = map[int]bool{
	550: true, // mailbox unavailable
	551: true, // user not local
	553: true, // mailbox name not allowed
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	send func(e *email.Email, addr string, a smtp.Auth) error
}

// NewSMTPSender creates a sender for host:port. PLAIN auth is used when a
// username is given.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		auth: auth,
		send: func(e *email.Email, addr string, a smtp.Auth) error { return e.Send(addr, a) },
	}
}

// Send delivers one message. The SMTP exchange itself cannot be cancelled;
// ctx is checked before it starts.
func (s *SMTPSender) Send(ctx context.Context, msg *sending.Message) (*sending.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := email.NewEmail()
	e.From = formatAddress(msg.FromName, msg.FromEmail)
	e.To = []string{formatAddress(msg.ToName, msg.ToEmail)}
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTMLBody)
	e.Text = []byte(msg.TextBody)
	for k, v := range msg.Tags {
		e.Headers.Set(tagHeader(k), v)
	}

	if err := s.send(e, s.addr, s.auth); err != nil {
		var tpErr *textproto.Error
		if errors.As(err, &tpErr) && hardBounceCodes[tpErr.Code] {
			return nil, fmt.Errorf("%w: smtp %d %s", sending.ErrHardBounce, tpErr.Code, tpErr.Msg)
		}
		return nil, fmt.Errorf("smtp send: %w", err)
	}

	logger.Debug("smtp sent", "recipient_email", msg.ToEmail)
	return &sending.Result{}, nil
}

// tagHeader maps "campaign_id" to "X-Campaign-Id".
func tagHeader(tag string) string {
	return "X-" + textproto.CanonicalMIMEHeaderKey(strings.ReplaceAll(tag, "_", "-"))
}
