package engagement

import (
	"context"

	"github.com/ignite/awaresim/internal/domain"
)

// Target is what a tracking token resolves to.
type Target struct {
	CampaignRecipientID int64
	CampaignID          int64
	LandingSlug         string
}

// Repository defines the data access contract for engagement recording.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Resolve looks up a tracking token. Returns ErrNotFound for unknown tokens.
	Resolve(ctx context.Context, token string) (*Target, error)

	// Record appends the event and applies its engagement to the owning
	// CampaignRecipient atomically. ev.ID is set on success.
	Record(ctx context.Context, ev *domain.EmailEvent) error
}

// Publisher fans recorded events out to downstream consumers. Publish must
// not block the caller on network I/O.
type Publisher interface {
	Publish(ctx context.Context, ev *domain.EmailEvent)
}
