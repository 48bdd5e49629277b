package tracking

import (
	"strings"

	"github.com/ignite/awaresim/internal/domain"
)

// rule maps a lower-cased user-agent to a label. Every group in all must
// contribute at least one matching needle and no needle in none may match.
// Tables are evaluated in order and the first matching rule wins, so the
// order of a table is its tie-break.
type rule struct {
	label string
	all   [][]string
	none  []string
}

func (r rule) match(ua string) bool {
	for _, group := range r.all {
		if !containsAny(ua, group...) {
			return false
		}
	}
	return !containsAny(ua, r.none...)
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func oneOf(needles ...string) [][]string { return [][]string{needles} }

func firstMatch(table []rule, ua, fallback string) string {
	for _, r := range table {
		if r.match(ua) {
			return r.label
		}
	}
	return fallback
}

// Tablet keywords are checked before mobile ones: iPad and Android tablet
// agents frequently carry "mobile" as well.
var deviceRules = []rule{
	{label: domain.DeviceTablet, all: oneOf("ipad", "tablet")},
	{label: domain.DeviceMobile, all: oneOf("iphone", "ipod", "android", "mobile")},
}

// iOS precedes macOS because iPhone agents embed "like Mac OS X", and
// Android precedes Linux for the same reason.
var osRules = []rule{
	{label: "Windows", all: oneOf("windows")},
	{label: "iOS", all: oneOf("iphone", "ipad", "ipod", "ios")},
	{label: "macOS", all: oneOf("mac os x", "macintosh")},
	{label: "Android", all: oneOf("android")},
	{label: "Linux", all: oneOf("linux")},
}

// Vendor tokens nest: Edge carries Chrome and Safari, Chrome carries Safari.
var browserRules = []rule{
	{label: "Edge", all: oneOf("edg/", "edge/")},
	{label: "Chrome", all: oneOf("chrome/", "crios/")},
	{label: "Safari", all: oneOf("safari/"), none: []string{"chrome/", "crios/", "chromium/", "fxios/"}},
	{label: "Firefox", all: oneOf("firefox/", "fxios/")},
}

var emailClientRules = []rule{
	{label: "Outlook", all: oneOf("outlook")},
	{label: "OWA", all: oneOf("owa", "outlook web")},
	{label: "GmailMobile", all: [][]string{{"gmail"}, {"mobile", "iphone", "android"}}},
	{label: "GmailWeb", all: oneOf("gmail")},
	{label: "AppleMail", all: oneOf("apple mail", "applemail", "mail/")},
	{label: "Thunderbird", all: oneOf("thunderbird")},
}

var providerRules = []rule{
	{label: "m365", all: oneOf("outlook", "owa")},
	{label: "google", all: oneOf("gmail", "googleimageproxy")},
}

// In-app browsers: Android WebView, LINE, Instagram, Facebook.
var webviewNeedles = []string{"; wv", "webview", "line/", "instagram", "fbav", "fban", "fb_iab"}

// Clients that fetch remote images on their own (native Apple Mail, the
// Gmail image proxy) produce opens that do not imply a human looked.
var lowQualityOpenRules = []rule{
	{label: string(domain.SignalQualityLow), all: [][]string{{"applemail", "mail/"}, {"mac os x", "iphone", "ipad"}}},
	{label: string(domain.SignalQualityLow), all: [][]string{{"googleimageproxy", "gmail"}, {"google"}}},
}

// ClassifyUserAgent derives the structured client signals of a raw
// User-Agent header. It is deterministic and never fails.
func ClassifyUserAgent(userAgent string) domain.ClientSignals {
	ua := strings.ToLower(userAgent)

	device := domain.DeviceUnknown
	if strings.TrimSpace(ua) != "" {
		device = firstMatch(deviceRules, ua, domain.DeviceDesktop)
	}

	return domain.ClientSignals{
		DeviceType:          device,
		OSFamily:            firstMatch(osRules, ua, domain.SignalOther),
		BrowserFamily:       firstMatch(browserRules, ua, domain.SignalOther),
		EmailClientHint:     firstMatch(emailClientRules, ua, domain.SignalOther),
		MessageProviderHint: firstMatch(providerRules, ua, domain.SignalOther),
		IsWebview:           containsAny(ua, webviewNeedles...),
	}
}

// OpenSignalQuality estimates how much an open from this agent can be
// trusted. It never prevents the open from being recorded.
func OpenSignalQuality(userAgent string) domain.OpenSignalQuality {
	q := firstMatch(lowQualityOpenRules, strings.ToLower(userAgent), string(domain.SignalQualityMedium))
	return domain.OpenSignalQuality(q)
}
