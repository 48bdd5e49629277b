package mailing

import (
	"net/url"
	"strings"
)

// TrackingURLs are the absolute callback URLs of one recipient.
type TrackingURLs struct {
	Pixel       string `json:"tracking_pixel"`
	Click       string `json:"click_url"`
	CTA         string `json:"cta_url"`
	Submit      string `json:"submit_url"`
	Report      string `json:"report_url"`
	LandingView string `json:"landing_view_url"`
	Landing     string `json:"landing_url"`
}

// BuildTrackingURLs derives every callback URL from the token. It is pure:
// the same inputs always give the same URLs.
func BuildTrackingURLs(baseURL, token, landingSlug string) TrackingURLs {
	base := strings.TrimRight(baseURL, "/")
	t := base + "/t/" + url.PathEscape(token)
	return TrackingURLs{
		Pixel:       t + "/open",
		Click:       t + "/click",
		CTA:         t + "/cta",
		Submit:      t + "/submit",
		Report:      t + "/report",
		LandingView: t + "/landing-view",
		Landing:     base + "/l/" + url.PathEscape(landingSlug) + "?t=" + url.QueryEscape(token),
	}
}
