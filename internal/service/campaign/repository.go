package campaign

import (
	"context"

	"github.com/ignite/awaresim/internal/domain"
)

// Repository defines the data access contract for campaigns and their
// enrollments. Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id int64) (*domain.Campaign, error)

	// Create inserts a new campaign and returns its ID.
	Create(ctx context.Context, c *domain.Campaign) (int64, error)

	// CreateRecipient inserts a recipient. Returns ErrDuplicateRecipient when
	// the email is taken.
	CreateRecipient(ctx context.Context, r *domain.Recipient) (int64, error)

	// Enroll inserts a pending CampaignRecipient. Returns ErrDuplicatePairing
	// if the pair exists, ErrNotFound or ErrRecipientNotFound for dangling
	// references.
	Enroll(ctx context.Context, cr *domain.CampaignRecipient) (int64, error)

	// ListRecipients returns the engagement rows of a campaign with their
	// recipients, in enrollment order.
	ListRecipients(ctx context.Context, campaignID int64) ([]Enrollment, error)
}

// Enrollment is a CampaignRecipient joined with its recipient.
type Enrollment struct {
	State     domain.CampaignRecipient `json:"state"`
	Recipient domain.Recipient         `json:"recipient"`
}
