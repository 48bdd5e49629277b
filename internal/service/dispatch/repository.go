package dispatch

import (
	"context"
	"time"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/service/sending"
)

// Repository defines the data access contract of the scheduler.
// Implementations must be safe for concurrent use.
type Repository interface {
	// DueCampaigns returns campaigns with start_at <= now < end_at.
	DueCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error)

	// PendingRecipients returns up to limit pending rows of the campaign in
	// insertion order.
	PendingRecipients(ctx context.Context, campaignID int64, limit int) ([]domain.DispatchTarget, error)

	// CommitSent sets status=sent and sent_at and appends audit, atomically.
	// Returns ErrInvalidTransition, writing nothing, if the row is not pending.
	CommitSent(ctx context.Context, campaignRecipientID int64, sentAt time.Time, audit *domain.AuditLog) error

	// CommitFailed sets status (failed or bounced) and fail_reason and
	// appends audit, atomically, under the same pending guard.
	CommitFailed(ctx context.Context, campaignRecipientID int64, status domain.RecipientStatus, reason string, audit *domain.AuditLog) error
}

// Composer renders the message of one dispatch target.
type Composer interface {
	Compose(c *domain.Campaign, t *domain.DispatchTarget) (*sending.Message, error)
}
