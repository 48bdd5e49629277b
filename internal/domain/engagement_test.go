package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func sentRecipient() *CampaignRecipient {
	sent := t0
	return &CampaignRecipient{ID: 1, Status: StatusSent, SentAt: &sent}
}

func TestApply_OpenSetsBothTimestampsOnce(t *testing.T) {
	cr := sentRecipient()

	cr.Apply(Engagement{Kind: EventOpen, At: t0.Add(time.Minute), SignalQuality: SignalQualityLow})
	cr.Apply(Engagement{Kind: EventOpen, At: t0.Add(time.Hour), SignalQuality: SignalQualityMedium})

	require.NotNil(t, cr.OpenedAt)
	require.NotNil(t, cr.OpenSeenAt)
	assert.Equal(t, t0.Add(time.Minute), *cr.OpenedAt)
	assert.Equal(t, t0.Add(time.Minute), *cr.OpenSeenAt)
	// quality tracks the latest open
	assert.Equal(t, SignalQualityMedium, cr.OpenSignalQuality)
}

func TestApply_ClickCountsEveryOccurrence(t *testing.T) {
	cr := sentRecipient()

	cr.Apply(Engagement{Kind: EventClick, At: t0.Add(90 * time.Second)})
	cr.Apply(Engagement{Kind: EventClick, At: t0.Add(10 * time.Minute)})

	assert.Equal(t, 2, cr.ClickCount)
	require.NotNil(t, cr.ClickedAt)
	assert.Equal(t, t0.Add(90*time.Second), *cr.ClickedAt)
	require.NotNil(t, cr.TimeToClickSeconds)
	assert.Equal(t, int64(90), *cr.TimeToClickSeconds)
}

func TestApply_NoLatencyWithoutSentAt(t *testing.T) {
	cr := &CampaignRecipient{Status: StatusPending}

	cr.Apply(Engagement{Kind: EventClick, At: t0})
	cr.Apply(Engagement{Kind: EventReport, At: t0, ReportChannel: "button"})

	assert.Equal(t, 1, cr.ClickCount)
	assert.NotNil(t, cr.ClickedAt)
	assert.Nil(t, cr.TimeToClickSeconds)
	assert.NotNil(t, cr.ReportedAt)
	assert.Nil(t, cr.TimeToReportSeconds)
}

func TestApply_ReportKeepsFirstTimestampAndLatestChannel(t *testing.T) {
	cr := sentRecipient()

	cr.Apply(Engagement{Kind: EventReport, At: t0.Add(2 * time.Minute), ReportChannel: "outlook_button"})
	cr.Apply(Engagement{Kind: EventReport, At: t0.Add(5 * time.Minute), ReportChannel: "helpdesk"})

	assert.Equal(t, t0.Add(2*time.Minute), *cr.ReportedAt)
	assert.Equal(t, int64(120), *cr.TimeToReportSeconds)
	assert.Equal(t, "helpdesk", cr.ReportChannel)
}

func TestApply_LandingCTAAndSubmit(t *testing.T) {
	cr := sentRecipient()

	cr.Apply(Engagement{Kind: EventLandingView, At: t0.Add(time.Minute)})
	cr.Apply(Engagement{Kind: EventLandingView, At: t0.Add(2 * time.Minute)})
	cr.Apply(Engagement{Kind: EventCTAClick, At: t0.Add(3 * time.Minute)})
	cr.Apply(Engagement{Kind: EventSubmitAttempt, At: t0.Add(4 * time.Minute)})
	cr.Apply(Engagement{Kind: EventSubmitAttempt, At: t0.Add(5 * time.Minute)})

	assert.Equal(t, 2, cr.LandingViewCount)
	assert.Equal(t, t0.Add(time.Minute), *cr.LandingViewedAt)
	assert.Equal(t, 1, cr.CTAClickCount)
	assert.Equal(t, t0.Add(3*time.Minute), *cr.CTAClickedAt)
	assert.True(t, cr.SubmitAttempted)
	assert.Equal(t, t0.Add(4*time.Minute), *cr.SubmitAttemptAt)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to RecipientStatus
		want     bool
	}{
		{StatusPending, StatusSent, true},
		{StatusPending, StatusBounced, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusPending, false},
		{StatusSent, StatusFailed, false},
		{StatusFailed, StatusSent, false},
		{StatusBounced, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			cr := &CampaignRecipient{Status: tt.from}
			assert.Equal(t, tt.want, cr.CanTransition(tt.to))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&CampaignRecipient{Status: StatusPending}).Validate())
	assert.NoError(t, sentRecipient().Validate())
	assert.ErrorIs(t, (&CampaignRecipient{Status: StatusSent}).Validate(), ErrSentWithoutTimestamp)
	assert.Error(t, (&CampaignRecipient{Status: "queued"}).Validate())
}

func TestEmailEventEngagement(t *testing.T) {
	ev := &EmailEvent{
		EventType: EventReport,
		CreatedAt: t0,
		Metadata:  map[string]string{MetaReportChannel: "phish_button"},
	}
	e := ev.Engagement()
	assert.Equal(t, EventReport, e.Kind)
	assert.Equal(t, t0, e.At)
	assert.Equal(t, "phish_button", e.ReportChannel)
}

func TestEventTypeValid(t *testing.T) {
	assert.True(t, EventLandingView.Valid())
	assert.False(t, EventType("bounce").Valid())
}
