package domain

import (
	"strings"
	"time"
)

// DefaultThrottlePerMinute is applied when a campaign carries no throttle.
const DefaultThrottlePerMinute = 60

// Campaign is a time-windowed phishing simulation. It is owned by the
// administrative tooling; the engine only reads it.
type Campaign struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name" validate:"required,max=255"`
	Description       string    `json:"description" db:"description"`
	Subject           string    `json:"subject" db:"subject" validate:"max=255"`
	EmailTemplate     string    `json:"email_template" db:"email_template" validate:"required"`
	LandingSlug       string    `json:"landing_slug" db:"landing_slug" validate:"required,max=120"`
	StartAt           time.Time `json:"start_at" db:"start_at" validate:"required"`
	EndAt             time.Time `json:"end_at" db:"end_at" validate:"required,gtfield=StartAt"`
	ThrottlePerMinute int       `json:"throttle_per_minute" db:"throttle_per_minute" validate:"min=1"`
	CreatedBy         *int64    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Active reports whether now falls inside the half-open window [StartAt, EndAt).
func (c *Campaign) Active(now time.Time) bool {
	return !now.Before(c.StartAt) && now.Before(c.EndAt)
}

// MessageSubject returns the subject line, falling back to the campaign name.
func (c *Campaign) MessageSubject() string {
	if s := strings.TrimSpace(c.Subject); s != "" {
		return s
	}
	return c.Name
}

// Throttle returns the per-tick send budget, never less than one.
func (c *Campaign) Throttle() int {
	if c.ThrottlePerMinute <= 0 {
		return DefaultThrottlePerMinute
	}
	return c.ThrottlePerMinute
}
