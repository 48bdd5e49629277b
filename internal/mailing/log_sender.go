package mailing

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ignite/awaresim/internal/pkg/logger"
	"github.com/ignite/awaresim/internal/service/sending"
)

// LogSender accepts every message and only logs it. It is the development
// transport; nothing leaves the process.
type LogSender struct {
	sent atomic.Int64
}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) Send(ctx context.Context, msg *sending.Message) (*sending.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	s.sent.Add(1)
	logger.Info("log transport accepted message",
		"recipient_email", msg.ToEmail,
		"subject", msg.Subject,
		"message_id", id,
	)
	return &sending.Result{MessageID: id}, nil
}

// Sent returns how many messages were accepted.
func (s *LogSender) Sent() int64 { return s.sent.Load() }
