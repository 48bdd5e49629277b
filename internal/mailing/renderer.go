package mailing

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

var (
	pixelPlaceholder = regexp.MustCompile(`\{\{-?\s*tracking_pixel\s*-?\}\}`)
	tagPattern       = regexp.MustCompile(`(?s)<[^>]*>`)
	blankRuns        = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
	breakTags        = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</tr>|</h[1-6]>`)
)

// RenderInput carries everything a template can reference.
type RenderInput struct {
	URLs           TrackingURLs
	RecipientEmail string
	RecipientName  string
	CampaignName   string
}

// Rendered is a message body in both alternatives.
type Rendered struct {
	HTML string
	Text string
}

// Renderer renders campaign templates with Liquid. Parsed templates are
// cached by source text. Safe for concurrent use.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a renderer with a fresh Liquid engine.
func NewRenderer() *Renderer {
	return &Renderer{engine: liquid.NewEngine()}
}

// PixelTag returns the hidden open-tracking image for a pixel URL.
func PixelTag(pixelURL string) string {
	return `<img src="` + html.EscapeString(pixelURL) + `" width="1" height="1" style="display:none;" alt="" />`
}

// Render fills the template. Unknown variables render empty. When the
// template has no tracking_pixel placeholder the pixel is appended after a
// line break so opens are still measured.
func (r *Renderer) Render(source string, in RenderInput) (*Rendered, error) {
	if !pixelPlaceholder.MatchString(source) {
		source += "<br>{{ tracking_pixel }}"
	}

	tpl, err := r.parse(source)
	if err != nil {
		return nil, err
	}

	out, rerr := tpl.RenderString(bindings(in))
	if rerr != nil {
		return nil, fmt.Errorf("render template: %w", rerr)
	}
	return &Rendered{HTML: out, Text: PlainText(out)}, nil
}

func (r *Renderer) parse(source string) (*liquid.Template, error) {
	if cached, ok := r.cache.Load(source); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := r.engine.ParseString(source)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	r.cache.Store(source, tpl)
	return tpl, nil
}

// Text bindings are HTML-escaped since the output is an HTML body.
func bindings(in RenderInput) liquid.Bindings {
	return liquid.Bindings{
		"tracking_pixel":   PixelTag(in.URLs.Pixel),
		"click_url":        in.URLs.Click,
		"landing_url":      in.URLs.Landing,
		"cta_url":          in.URLs.CTA,
		"submit_url":       in.URLs.Submit,
		"report_url":       in.URLs.Report,
		"landing_view_url": in.URLs.LandingView,
		"recipient_email":  html.EscapeString(in.RecipientEmail),
		"recipient_name":   html.EscapeString(in.RecipientName),
		"campaign_name":    html.EscapeString(in.CampaignName),
	}
}

// PlainText derives the text alternative of an HTML body.
func PlainText(body string) string {
	s := breakTags.ReplaceAllString(body, "$0\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
