package mailing

import (
	"context"
	"fmt"

	"github.com/ignite/awaresim/internal/config"
	"github.com/ignite/awaresim/internal/service/sending"
)

// Transport names accepted in mail.transport.
const (
	TransportSES  = "ses"
	TransportSMTP = "smtp"
	TransportLog  = "log"
)

// NewSender builds the configured transport.
func NewSender(ctx context.Context, cfg config.MailConfig) (sending.Sender, error) {
	switch cfg.Transport {
	case TransportSES:
		client, err := NewSESClient(ctx, cfg.SES.Region, cfg.SES.AccessKey, cfg.SES.SecretKey)
		if err != nil {
			return nil, err
		}
		return NewSESSender(client, cfg.SES.ConfigurationSet), nil
	case TransportSMTP:
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("mail.smtp.host is required for the smtp transport")
		}
		return NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password), nil
	case TransportLog, "":
		return NewLogSender(), nil
	}
	return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
}
