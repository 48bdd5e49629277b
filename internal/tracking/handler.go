package tracking

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/metrics"
	"github.com/ignite/awaresim/internal/pkg/httputil"
	"github.com/ignite/awaresim/internal/service/engagement"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

const (
	defaultReportChannel = "other"
	maxReportChannelLen  = 64
	// offsets beyond a day are not timezones
	maxTZOffsetMinutes = 24 * 60
)

// Recorder is the engagement capability the handlers need.
type Recorder interface {
	Record(ctx context.Context, token string, ev *domain.EmailEvent) (*engagement.Receipt, error)
}

// Options configures a Handler.
type Options struct {
	// IPHashSalt keys the one-way client address hash.
	IPHashSalt string
	// AllowedOrigins are the landing origins allowed to post the submit
	// beacon. Empty allows any origin.
	AllowedOrigins []string
}

// Handler serves the public tracking callbacks.
type Handler struct {
	rec  Recorder
	opts Options
}

func NewHandler(rec Recorder, opts Options) *Handler {
	return &Handler{rec: rec, opts: opts}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/t/{token}", func(r chi.Router) {
		r.Get("/open", h.HandleOpen)
		r.Get("/click", h.HandleClick)
		r.Get("/cta", h.HandleCTA)
		r.Post("/submit", h.HandleSubmit)
		r.Get("/report", h.HandleReport)
		r.Get("/landing-view", h.HandleLandingView)
	})
	r.Get("/l/{slug}", h.HandleLanding)
	return r
}

func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	ev := h.newEvent(r, domain.EventOpen)
	ev.OpenSignalQuality = OpenSignalQuality(ev.UserAgent)
	if _, ok := h.record(w, r, ev); !ok {
		return
	}
	servePixel(w)
}

func (h *Handler) HandleLandingView(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.record(w, r, h.newEvent(r, domain.EventLandingView)); !ok {
		return
	}
	servePixel(w)
}

func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	h.recordAndRedirect(w, r, domain.EventClick)
}

func (h *Handler) HandleCTA(w http.ResponseWriter, r *http.Request) {
	h.recordAndRedirect(w, r, domain.EventCTAClick)
}

func (h *Handler) recordAndRedirect(w http.ResponseWriter, r *http.Request, kind domain.EventType) {
	rc, ok := h.record(w, r, h.newEvent(r, kind))
	if !ok {
		return
	}
	http.Redirect(w, r, LandingPath(rc.Target.LandingSlug, chi.URLParam(r, "token")), http.StatusFound)
}

// HandleSubmit records that the recipient tried to submit the landing
// form. Submitted form values are never read.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.record(w, r, h.newEvent(r, domain.EventSubmitAttempt)); !ok {
		return
	}
	if httputil.WantsJSON(r) {
		httputil.OK(w, map[string]string{"status": "ok", "message": "Thank you"})
		return
	}
	httputil.HTML(w, submitAckHTML)
}

func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ev := h.newEvent(r, domain.EventReport)
	ev.Metadata[domain.MetaReportChannel] = reportChannel(r.URL.Query().Get("channel"))
	if _, ok := h.record(w, r, ev); !ok {
		return
	}
	httputil.OK(w, map[string]string{"status": "ok"})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

// record runs the engagement pipeline. It writes the error response itself
// and returns false when the handler must stop.
func (h *Handler) record(w http.ResponseWriter, r *http.Request, ev *domain.EmailEvent) (*engagement.Receipt, bool) {
	rc, err := h.rec.Record(r.Context(), chi.URLParam(r, "token"), ev)
	switch {
	case errors.Is(err, engagement.ErrNotFound):
		metrics.TrackingNotFound.Inc()
		httputil.NotFound(w, "not found")
		return nil, false
	case err != nil:
		httputil.InternalError(w, err)
		return nil, false
	}
	return rc, true
}

func (h *Handler) newEvent(r *http.Request, kind domain.EventType) *domain.EmailEvent {
	ua := cleanText(r.UserAgent())
	id := Identify(h.opts.IPHashSalt, ClientIP(r))
	return &domain.EmailEvent{
		EventType:             kind,
		ClientSignals:         ClassifyUserAgent(ua),
		IPTruncated:           id.Truncated,
		IPHash:                id.Hash,
		UserAgent:             ua,
		Referer:               cleanText(r.Referer()),
		Language:              cleanText(r.Header.Get("Accept-Language")),
		TimezoneOffsetMinutes: parseTZOffset(r.URL.Query().Get("tz")),
		Metadata:              map[string]string{},
	}
}

func servePixel(w http.ResponseWriter) {
	httputil.NoStore(w)
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Content-Length", strconv.Itoa(len(pixelGIF)))
	w.Write(pixelGIF)
}

// parseTZOffset returns nil for anything that is not a plausible offset
// in minutes.
func parseTZOffset(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= -maxTZOffsetMinutes || n >= maxTZOffsetMinutes {
		return nil
	}
	return &n
}

func reportChannel(raw string) string {
	ch := strings.TrimSpace(cleanText(raw))
	if ch == "" {
		return defaultReportChannel
	}
	return truncateUTF8(ch, maxReportChannelLen)
}

// cleanText drops bytes that are not valid UTF-8. Headers and decoded query
// values may carry any byte, and text columns reject them.
func cleanText(s string) string {
	return strings.ToValidUTF8(s, "")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// LandingPath is where click and CTA callbacks send the browser. The token
// rides along so the landing page can fire its own beacon.
func LandingPath(slug, token string) string {
	p := "/l/" + url.PathEscape(slug)
	if token == "" {
		return p
	}
	return p + "?t=" + url.QueryEscape(token)
}
