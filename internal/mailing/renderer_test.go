package mailing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() RenderInput {
	return RenderInput{
		URLs:           BuildTrackingURLs("https://sim.example.com", "tok-1", "hr"),
		RecipientEmail: "ana@example.com",
		RecipientName:  "Ana <Ruiz>",
		CampaignName:   "HR survey",
	}
}

func TestRender_SubstitutesBindings(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(`<p>Hi {{ recipient_name }}</p><a href="{{ click_url }}">Open</a>{{ tracking_pixel }}`, sampleInput())
	require.NoError(t, err)

	assert.Contains(t, out.HTML, "Hi Ana &lt;Ruiz&gt;")
	assert.Contains(t, out.HTML, `href="https://sim.example.com/t/tok-1/click"`)
	assert.Equal(t, 1, strings.Count(out.HTML, "/t/tok-1/open"), "explicit placeholder is not duplicated")
}

func TestRender_AppendsPixelWhenMissing(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(`<p>Hello</p>`, sampleInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.HTML, "<p>Hello</p><br><img src=\"https://sim.example.com/t/tok-1/open\""))
}

func TestRender_UnknownVariableIsEmpty(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(`[{{ department }}]{{ tracking_pixel }}`, sampleInput())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.HTML, "[]"))
}

func TestRender_ParseError(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render(`{% if %}`, sampleInput())
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	got := PlainText("<p>Hi Ana &amp; team</p><p>Click <a href=\"x\">here</a></p><br><img src=\"p\" />")
	assert.Equal(t, "Hi Ana & team\nClick here", got)
}
