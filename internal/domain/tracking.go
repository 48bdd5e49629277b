package domain

import "time"

// EventType enumerates the engagement signals a recipient can produce.
type EventType string

const (
	EventOpen          EventType = "open"
	EventClick         EventType = "click"
	EventLandingView   EventType = "landing_view"
	EventCTAClick      EventType = "cta_click"
	EventSubmitAttempt EventType = "submit_attempt"
	EventReport        EventType = "report"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventOpen, EventClick, EventLandingView, EventCTAClick, EventSubmitAttempt, EventReport:
		return true
	}
	return false
}

// OpenSignalQuality estimates how much an open pixel load can be trusted.
// Clients that prefetch remote images report "low".
type OpenSignalQuality string

const (
	SignalQualityLow    OpenSignalQuality = "low"
	SignalQualityMedium OpenSignalQuality = "medium"
)

// Device classes produced by the client classifier.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// SignalOther is the fallback label of every classifier dimension.
const SignalOther = "other"

// ClientSignals is the structured view of a raw user-agent string.
type ClientSignals struct {
	DeviceType          string `json:"device_type" db:"device_type"`
	OSFamily            string `json:"os_family" db:"os_family"`
	BrowserFamily       string `json:"browser_family" db:"browser_family"`
	EmailClientHint     string `json:"email_client_hint" db:"email_client_hint"`
	MessageProviderHint string `json:"message_provider_hint" db:"message_provider_hint"`
	IsWebview           bool   `json:"is_webview" db:"is_webview"`
}

// MetaReportChannel is the metadata key carrying the channel of a report event.
const MetaReportChannel = "report_channel"

// EmailEvent is one row of the append-only engagement log. One row is written
// per callback received, repeats included. Raw IP addresses never appear here.
type EmailEvent struct {
	ID                    int64             `json:"id" db:"id"`
	CampaignRecipientID   int64             `json:"campaign_recipient_id" db:"campaign_recipient_id"`
	EventType             EventType         `json:"event_type" db:"event_type"`
	ClientSignals                           // classifier output
	IPTruncated           string            `json:"ip_address_truncated" db:"ip_address_truncated"`
	IPHash                string            `json:"ip_hash" db:"ip_hash"`
	UserAgent             string            `json:"user_agent" db:"user_agent"`
	Referer               string            `json:"referer" db:"referer"`
	Language              string            `json:"language" db:"language"`
	TimezoneOffsetMinutes *int              `json:"timezone_offset_minutes,omitempty" db:"timezone_offset_minutes"`
	OpenSignalQuality     OpenSignalQuality `json:"open_signal_quality,omitempty" db:"open_signal_quality"`
	Metadata              map[string]string `json:"metadata" db:"metadata"`
	CreatedAt             time.Time         `json:"created_at" db:"created_at"`
}

// Engagement returns the recipient-state change this event produces.
func (e *EmailEvent) Engagement() Engagement {
	return Engagement{
		Kind:          e.EventType,
		At:            e.CreatedAt,
		SignalQuality: e.OpenSignalQuality,
		ReportChannel: e.Metadata[MetaReportChannel],
	}
}
