package domain

import "time"

// Audit actions written by the dispatch scheduler.
const (
	AuditEmailSent   = "campaign_email_sent"
	AuditEmailFailed = "campaign_email_failed"
)

// AuditLog is an append-only compliance record. Rows are never updated.
type AuditLog struct {
	ID        int64          `json:"id" db:"id"`
	Action    string         `json:"action" db:"action"`
	ActorID   *int64         `json:"actor_id,omitempty" db:"actor_id"`
	Metadata  map[string]any `json:"metadata" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
