package domain

import (
	"errors"
	"fmt"
	"time"
)

// RecipientStatus enumerates the dispatch lifecycle of a CampaignRecipient.
type RecipientStatus string

const (
	StatusPending RecipientStatus = "pending"
	StatusSent    RecipientStatus = "sent"
	StatusBounced RecipientStatus = "bounced"
	StatusFailed  RecipientStatus = "failed"
)

// IsTerminal returns true once a dispatch outcome has been recorded.
func (s RecipientStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusBounced || s == StatusFailed
}

// ErrSentWithoutTimestamp is returned by Validate for a sent row lacking sent_at.
var ErrSentWithoutTimestamp = errors.New("status sent requires sent_at")

// CampaignRecipient is the engagement state of one recipient within one
// campaign. First-occurrence timestamps are write-once; counters grow on
// every occurrence.
type CampaignRecipient struct {
	ID            int64           `json:"id" db:"id"`
	CampaignID    int64           `json:"campaign_id" db:"campaign_id"`
	RecipientID   int64           `json:"recipient_id" db:"recipient_id"`
	Status        RecipientStatus `json:"status" db:"status"`
	TrackingToken string          `json:"-" db:"tracking_token"`

	SentAt          *time.Time `json:"sent_at" db:"sent_at"`
	OpenedAt        *time.Time `json:"opened_at" db:"opened_at"`
	OpenSeenAt      *time.Time `json:"open_seen_at" db:"open_seen_at"`
	ClickedAt       *time.Time `json:"clicked_at" db:"clicked_at"`
	LandingViewedAt *time.Time `json:"landing_viewed_at" db:"landing_viewed_at"`
	CTAClickedAt    *time.Time `json:"cta_clicked_at" db:"cta_clicked_at"`
	SubmitAttemptAt *time.Time `json:"submit_attempt_at" db:"submit_attempt_at"`
	ReportedAt      *time.Time `json:"reported_at" db:"reported_at"`

	ClickCount       int `json:"click_count" db:"click_count"`
	LandingViewCount int `json:"landing_view_count" db:"landing_view_count"`
	CTAClickCount    int `json:"cta_click_count" db:"cta_click_count"`

	SubmitAttempted     bool              `json:"submit_attempted" db:"submit_attempted"`
	FailReason          string            `json:"fail_reason,omitempty" db:"fail_reason"`
	ReportChannel       string            `json:"report_channel,omitempty" db:"report_channel"`
	OpenSignalQuality   OpenSignalQuality `json:"open_signal_quality,omitempty" db:"open_signal_quality"`
	TimeToClickSeconds  *int64            `json:"time_to_click_seconds" db:"time_to_click_seconds"`
	TimeToReportSeconds *int64            `json:"time_to_report_seconds" db:"time_to_report_seconds"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CanTransition reports whether the dispatch status may move to next.
// Only pending rows move, and never backward.
func (cr *CampaignRecipient) CanTransition(next RecipientStatus) bool {
	return cr.Status == StatusPending && next.IsTerminal()
}

// Validate checks the row-level invariants the store also enforces.
func (cr *CampaignRecipient) Validate() error {
	switch cr.Status {
	case StatusPending, StatusSent, StatusBounced, StatusFailed:
	default:
		return fmt.Errorf("unknown status %q", cr.Status)
	}
	if cr.Status == StatusSent && cr.SentAt == nil {
		return ErrSentWithoutTimestamp
	}
	return nil
}

// Engagement is the state change produced by one tracking callback.
type Engagement struct {
	Kind          EventType
	At            time.Time
	SignalQuality OpenSignalQuality
	ReportChannel string
}

// Apply folds one engagement into the row: first-occurrence timestamps are
// set only while unset, counters always grow, and latencies are computed on
// the first occurrence when sent_at is known. Stores must perform the same
// change atomically (set-if-null), never as read-modify-write.
func (cr *CampaignRecipient) Apply(e Engagement) {
	at := e.At
	switch e.Kind {
	case EventOpen:
		setOnce(&cr.OpenedAt, at)
		setOnce(&cr.OpenSeenAt, at)
		if e.SignalQuality != "" {
			cr.OpenSignalQuality = e.SignalQuality
		}
	case EventClick:
		cr.ClickCount++
		if cr.ClickedAt == nil {
			cr.TimeToClickSeconds = cr.secondsSinceSent(at)
		}
		setOnce(&cr.ClickedAt, at)
	case EventCTAClick:
		cr.CTAClickCount++
		setOnce(&cr.CTAClickedAt, at)
	case EventLandingView:
		cr.LandingViewCount++
		setOnce(&cr.LandingViewedAt, at)
	case EventSubmitAttempt:
		cr.SubmitAttempted = true
		setOnce(&cr.SubmitAttemptAt, at)
	case EventReport:
		if e.ReportChannel != "" {
			cr.ReportChannel = e.ReportChannel
		}
		if cr.ReportedAt == nil {
			cr.TimeToReportSeconds = cr.secondsSinceSent(at)
		}
		setOnce(&cr.ReportedAt, at)
	}
}

func (cr *CampaignRecipient) secondsSinceSent(at time.Time) *int64 {
	if cr.SentAt == nil {
		return nil
	}
	secs := int64(at.Sub(*cr.SentAt) / time.Second)
	return &secs
}

func setOnce(field **time.Time, at time.Time) {
	if *field == nil {
		t := at
		*field = &t
	}
}
