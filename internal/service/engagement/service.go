package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/metrics"
	"github.com/ignite/awaresim/internal/pkg/logger"
)

// Receipt reports the outcome of a Record call to the HTTP layer.
type Receipt struct {
	Target Target
	// Stored is false when the token resolved but the store failed. The
	// caller still answers successfully.
	Stored bool
}

// Service records tracking callbacks. It is safe for concurrent use.
type Service struct {
	repo Repository
	pub  Publisher
	now  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher fans every stored event out to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithClock overrides the event clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an engagement service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve validates the token shape and looks it up without recording.
func (s *Service) Resolve(ctx context.Context, token string) (*Target, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.Resolve(ctx, token)
}

// Record resolves token and records ev against it. Unknown or malformed
// tokens return ErrNotFound and write nothing. A store failure after the
// token resolved is logged and reported through Receipt.Stored.
func (s *Service) Record(ctx context.Context, token string, ev *domain.EmailEvent) (*Receipt, error) {
	if !ev.EventType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEvent, ev.EventType)
	}

	target, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	ev.CampaignRecipientID = target.CampaignRecipientID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.now()
	}
	if ev.Metadata == nil {
		ev.Metadata = map[string]string{}
	}

	rc := &Receipt{Target: *target}
	if err := s.repo.Record(ctx, ev); err != nil {
		metrics.TrackingStoreErrors.WithLabelValues(string(ev.EventType)).Inc()
		logger.Error("engagement record failed",
			"event_type", ev.EventType,
			"campaign_recipient_id", target.CampaignRecipientID,
			"error", err,
		)
		return rc, nil
	}
	rc.Stored = true
	metrics.TrackingEvents.WithLabelValues(string(ev.EventType), ev.DeviceType).Inc()

	if s.pub != nil {
		s.pub.Publish(ctx, ev)
	}
	return rc, nil
}
