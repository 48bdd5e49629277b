package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriticality(t *testing.T) {
	now := t0
	tests := []struct {
		name string
		cr   CampaignRecipient
		want Criticality
	}{
		{"no signal", CampaignRecipient{}, CriticalityNone},
		{"seen open only", CampaignRecipient{OpenSeenAt: &now}, CriticalityLow},
		{"confident open", CampaignRecipient{OpenedAt: &now}, CriticalityLow},
		{"click only", CampaignRecipient{ClickCount: 1}, CriticalityMedium},
		{"landing view", CampaignRecipient{LandingViewCount: 2, OpenedAt: &now}, CriticalityMedium},
		{"cta", CampaignRecipient{CTAClickCount: 1}, CriticalityMedium},
		{"submit", CampaignRecipient{SubmitAttempted: true, CTAClickCount: 3}, CriticalityHigh},
		{"reported beats everything", CampaignRecipient{
			ReportedAt: &now, SubmitAttempted: true, ClickCount: 4, OpenedAt: &now,
		}, CriticalityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cr.Criticality())
		})
	}
}

func TestCriticalityRankIsTotal(t *testing.T) {
	order := []Criticality{CriticalityNone, CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Rank(), order[i-1].Rank(), "%s should outrank %s", order[i], order[i-1])
	}
}
