package mailing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTrackingURLs(t *testing.T) {
	token := "4f6c2b8e-1d2a-4c3b-9e8f-0a1b2c3d4e5f"
	urls := BuildTrackingURLs("https://sim.example.com/", token, "payroll-update")

	assert.Equal(t, "https://sim.example.com/t/"+token+"/open", urls.Pixel)
	assert.Equal(t, "https://sim.example.com/t/"+token+"/click", urls.Click)
	assert.Equal(t, "https://sim.example.com/t/"+token+"/cta", urls.CTA)
	assert.Equal(t, "https://sim.example.com/t/"+token+"/submit", urls.Submit)
	assert.Equal(t, "https://sim.example.com/t/"+token+"/report", urls.Report)
	assert.Equal(t, "https://sim.example.com/t/"+token+"/landing-view", urls.LandingView)
	assert.Equal(t, "https://sim.example.com/l/payroll-update?t="+token, urls.Landing)
}

func TestBuildTrackingURLs_EscapesSlug(t *testing.T) {
	urls := BuildTrackingURLs("https://sim.example.com", "tok", "a b/c")
	assert.Equal(t, "https://sim.example.com/l/a%20b%2Fc?t=tok", urls.Landing)
}
