package domain

import "time"

// Recipient is a person that can be enrolled into campaigns. Department and
// Role are only used to group reporting.
type Recipient struct {
	ID         int64     `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	FullName   string    `json:"full_name" db:"full_name"`
	Department string    `json:"department" db:"department"`
	Role       string    `json:"role" db:"role"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DisplayName returns the full name, or the email when no name is known.
func (r *Recipient) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Email
}

// DispatchTarget is a pending CampaignRecipient joined with the person it
// addresses. It is the unit of work of the dispatch scheduler.
type DispatchTarget struct {
	CampaignRecipientID int64     `json:"campaign_recipient_id"`
	TrackingToken       string    `json:"tracking_token"`
	Recipient           Recipient `json:"recipient"`
}
