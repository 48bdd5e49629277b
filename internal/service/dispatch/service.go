package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/metrics"
	"github.com/ignite/awaresim/internal/pkg/logger"
	"github.com/ignite/awaresim/internal/service/sending"
)

// maxFailReasonLen bounds the error text stored on the row.
const maxFailReasonLen = 1000

// TickResult summarizes one scheduler tick.
type TickResult struct {
	Campaigns int `json:"campaigns"`
	Attempted int `json:"attempted"`
	// Sent is the number of recipients successfully processed.
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Bounced int `json:"bounced"`
	// CommitErrors counts outcomes that could not be stored; those rows stay
	// pending and are picked up again.
	CommitErrors int `json:"commit_errors"`
}

// Service runs dispatch ticks. Concurrent ticks are safe for the store but
// may double-send under read skew; callers serialize them with a lock.
type Service struct {
	repo     Repository
	composer Composer
	sender   sending.Sender
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the dispatch clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a dispatch service.
func NewService(repo Repository, composer Composer, sender sending.Sender, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		composer: composer,
		sender:   sender,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick runs one dispatch pass over every due campaign. Per-recipient
// failures are recorded, not returned; an error means the pass could not
// start or ctx ended.
func (s *Service) Tick(ctx context.Context) (*TickResult, error) {
	began := time.Now()
	defer func() { metrics.DispatchTickDuration.Observe(time.Since(began).Seconds()) }()

	campaigns, err := s.repo.DueCampaigns(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("due campaigns: %w", err)
	}

	res := &TickResult{Campaigns: len(campaigns)}
	for i := range campaigns {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		s.dispatchCampaign(ctx, &campaigns[i], res)
	}

	if res.Attempted > 0 {
		logger.Info("dispatch tick",
			"campaigns", res.Campaigns,
			"attempted", res.Attempted,
			"sent", res.Sent,
			"failed", res.Failed,
			"bounced", res.Bounced,
		)
	}
	return res, ctx.Err()
}

func (s *Service) dispatchCampaign(ctx context.Context, c *domain.Campaign, res *TickResult) {
	targets, err := s.repo.PendingRecipients(ctx, c.ID, c.Throttle())
	if err != nil {
		logger.Error("select pending recipients", "campaign_id", c.ID, "error", err)
		return
	}
	for i := range targets {
		if ctx.Err() != nil {
			return
		}
		res.Attempted++
		s.dispatchOne(ctx, c, &targets[i], res)
	}
}

func (s *Service) dispatchOne(ctx context.Context, c *domain.Campaign, t *domain.DispatchTarget, res *TickResult) {
	msg, err := s.composer.Compose(c, t)
	if err == nil {
		_, err = s.sender.Send(ctx, msg)
	}

	if err != nil {
		if ctx.Err() != nil {
			// interrupted, not refused; the row stays pending for the next tick
			logger.Warn("dispatch interrupted", "campaign_id", c.ID, "campaign_recipient_id", t.CampaignRecipientID)
			return
		}
		s.recordFailure(ctx, c, t, err, res)
		return
	}

	now := s.now()
	audit := newAudit(domain.AuditEmailSent, c, t, now)
	if err := s.repo.CommitSent(ctx, t.CampaignRecipientID, now, audit); err != nil {
		s.commitError(c, t, err, res)
		return
	}
	res.Sent++
	metrics.DispatchOutcomes.WithLabelValues(string(domain.StatusSent)).Inc()
}

func (s *Service) recordFailure(ctx context.Context, c *domain.Campaign, t *domain.DispatchTarget, sendErr error, res *TickResult) {
	status := domain.StatusFailed
	if sending.IsHardBounce(sendErr) {
		status = domain.StatusBounced
	}
	reason := truncate(sendErr.Error(), maxFailReasonLen)

	audit := newAudit(domain.AuditEmailFailed, c, t, s.now())
	audit.Metadata["error"] = reason
	audit.Metadata["status"] = string(status)

	logger.Warn("dispatch failed",
		"campaign_id", c.ID,
		"campaign_recipient_id", t.CampaignRecipientID,
		"recipient_email", t.Recipient.Email,
		"status", status,
		"error", reason,
	)

	if err := s.repo.CommitFailed(ctx, t.CampaignRecipientID, status, reason, audit); err != nil {
		s.commitError(c, t, err, res)
		return
	}
	if status == domain.StatusBounced {
		res.Bounced++
	} else {
		res.Failed++
	}
	metrics.DispatchOutcomes.WithLabelValues(string(status)).Inc()
}

func (s *Service) commitError(c *domain.Campaign, t *domain.DispatchTarget, err error, res *TickResult) {
	res.CommitErrors++
	metrics.DispatchCommitErrors.Inc()
	level := logger.Error
	if errors.Is(err, ErrInvalidTransition) {
		// another runner already settled this row
		level = logger.Warn
	}
	level("dispatch commit failed",
		"campaign_id", c.ID,
		"campaign_recipient_id", t.CampaignRecipientID,
		"error", err,
	)
}

func newAudit(action string, c *domain.Campaign, t *domain.DispatchTarget, at time.Time) *domain.AuditLog {
	return &domain.AuditLog{
		Action:  action,
		ActorID: c.CreatedBy,
		Metadata: map[string]any{
			"campaign_id":           c.ID,
			"recipient_id":          t.Recipient.ID,
			"campaign_recipient_id": t.CampaignRecipientID,
		},
		CreatedAt: at,
	}
}

// truncate bounds s to n bytes of valid UTF-8. Transport errors echo
// server replies verbatim and may carry any byte.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
