package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCampaignActiveWindow(t *testing.T) {
	c := &Campaign{StartAt: t0, EndAt: t0.Add(time.Hour)}

	assert.False(t, c.Active(t0.Add(-time.Second)))
	assert.True(t, c.Active(t0))
	assert.True(t, c.Active(t0.Add(59*time.Minute)))
	assert.False(t, c.Active(t0.Add(time.Hour)), "end is exclusive")
}

func TestCampaignDefaults(t *testing.T) {
	c := &Campaign{Name: "Q3 payroll lure"}
	assert.Equal(t, "Q3 payroll lure", c.MessageSubject())
	assert.Equal(t, DefaultThrottlePerMinute, c.Throttle())

	c.Subject = "Action required: payroll update"
	c.ThrottlePerMinute = 5
	assert.Equal(t, "Action required: payroll update", c.MessageSubject())
	assert.Equal(t, 5, c.Throttle())
}

func TestRecipientDisplayName(t *testing.T) {
	r := &Recipient{Email: "ana@example.com"}
	assert.Equal(t, "ana@example.com", r.DisplayName())
	r.FullName = "Ana Ruiz"
	assert.Equal(t, "Ana Ruiz", r.DisplayName())
}
