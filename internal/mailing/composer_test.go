package mailing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/awaresim/internal/domain"
)

func TestComposer_Compose(t *testing.T) {
	c := NewComposer(NewRenderer(), ComposerConfig{
		TrackingBaseURL: "https://sim.example.com",
		FromEmail:       "it-support@example.com",
		FromName:        "IT Support",
	})
	camp := &domain.Campaign{ID: 7, Name: "Password expiry", EmailTemplate: `<a href="{{ landing_url }}">Reset</a>`, LandingSlug: "reset"}
	target := &domain.DispatchTarget{
		CampaignRecipientID: 42,
		TrackingToken:       "tok-42",
		Recipient:           domain.Recipient{ID: 3, Email: "bob@example.com"},
	}

	msg, err := c.Compose(camp, target)
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", msg.ToEmail)
	assert.Equal(t, "Password expiry", msg.Subject, "subject falls back to the campaign name")
	assert.Equal(t, "IT Support", msg.FromName)
	assert.Contains(t, msg.HTMLBody, `href="https://sim.example.com/l/reset?t=tok-42"`)
	assert.Contains(t, msg.HTMLBody, "/t/tok-42/open")
	assert.Equal(t, "Reset", msg.TextBody)
	assert.Equal(t, map[string]string{"campaign_id": "7", "campaign_recipient_id": "42"}, msg.Tags)
}
