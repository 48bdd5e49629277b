package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/service/engagement"
)

// EngagementRepo implements engagement.Repository against PostgreSQL.
type EngagementRepo struct{ db *sql.DB }

// NewEngagementRepo creates a Postgres-backed engagement repository.
func NewEngagementRepo(db *sql.DB) *EngagementRepo { return &EngagementRepo{db: db} }

func (r *EngagementRepo) Resolve(ctx context.Context, token string) (*engagement.Target, error) {
	var t engagement.Target
	err := r.db.QueryRowContext(ctx, `
		SELECT cr.id, cr.campaign_id, c.landing_slug
		FROM campaign_recipients cr
		JOIN campaigns c ON c.id = cr.campaign_id
		WHERE cr.tracking_token = $1
	`, token).Scan(&t.CampaignRecipientID, &t.CampaignID, &t.LandingSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engagement.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	return &t, nil
}

// Record inserts the event and folds it into the owning row in one
// transaction.
func (r *EngagementRepo) Record(ctx context.Context, ev *domain.EmailEvent) error {
	meta, err := jsonb(ev.Metadata)
	if err != nil {
		return fmt.Errorf("encode event metadata: %w", err)
	}
	update, args := stateUpdate(ev.CampaignRecipientID, ev.Engagement())

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var tz sql.NullInt64
		if ev.TimezoneOffsetMinutes != nil {
			tz = sql.NullInt64{Int64: int64(*ev.TimezoneOffsetMinutes), Valid: true}
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO email_events
				(campaign_recipient_id, event_type, device_type, os_family, browser_family,
				 email_client_hint, message_provider_hint, is_webview, ip_address_truncated,
				 ip_hash, user_agent, referer, language, timezone_offset_minutes,
				 open_signal_quality, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING id
		`, ev.CampaignRecipientID, string(ev.EventType), ev.DeviceType, ev.OSFamily, ev.BrowserFamily,
			ev.EmailClientHint, ev.MessageProviderHint, ev.IsWebview, nullString(ev.IPTruncated),
			nullString(ev.IPHash), ev.UserAgent, ev.Referer, ev.Language, tz,
			nullString(string(ev.OpenSignalQuality)), meta, ev.CreatedAt,
		).Scan(&ev.ID)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}

		res, err := tx.ExecContext(ctx, update, args...)
		if err != nil {
			return fmt.Errorf("apply engagement: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return engagement.ErrNotFound
		}
		return nil
	})
}

// stateUpdate returns the conditional UPDATE for one engagement. Timestamps
// are only written while NULL and latencies only on the first occurrence;
// every SET expression reads the pre-update row.
func stateUpdate(id int64, e domain.Engagement) (string, []any) {
	switch e.Kind {
	case domain.EventOpen:
		return `UPDATE campaign_recipients SET
			opened_at = COALESCE(opened_at, $2),
			open_seen_at = COALESCE(open_seen_at, $2),
			open_signal_quality = COALESCE(NULLIF($3, ''), open_signal_quality)
			WHERE id = $1`, []any{id, e.At, string(e.SignalQuality)}
	case domain.EventClick:
		return `UPDATE campaign_recipients SET
			click_count = click_count + 1,
			time_to_click_seconds = CASE
				WHEN clicked_at IS NULL AND sent_at IS NOT NULL
				THEN TRUNC(EXTRACT(EPOCH FROM ($2::timestamptz - sent_at)))::bigint
				ELSE time_to_click_seconds END,
			clicked_at = COALESCE(clicked_at, $2)
			WHERE id = $1`, []any{id, e.At}
	case domain.EventLandingView:
		return `UPDATE campaign_recipients SET
			landing_view_count = landing_view_count + 1,
			landing_viewed_at = COALESCE(landing_viewed_at, $2)
			WHERE id = $1`, []any{id, e.At}
	case domain.EventCTAClick:
		return `UPDATE campaign_recipients SET
			cta_click_count = cta_click_count + 1,
			cta_clicked_at = COALESCE(cta_clicked_at, $2)
			WHERE id = $1`, []any{id, e.At}
	case domain.EventSubmitAttempt:
		return `UPDATE campaign_recipients SET
			submit_attempted = TRUE,
			submit_attempt_at = COALESCE(submit_attempt_at, $2)
			WHERE id = $1`, []any{id, e.At}
	default: // report
		return `UPDATE campaign_recipients SET
			report_channel = COALESCE(NULLIF($3, ''), report_channel),
			time_to_report_seconds = CASE
				WHEN reported_at IS NULL AND sent_at IS NOT NULL
				THEN TRUNC(EXTRACT(EPOCH FROM ($2::timestamptz - sent_at)))::bigint
				ELSE time_to_report_seconds END,
			reported_at = COALESCE(reported_at, $2)
			WHERE id = $1`, []any{id, e.At, e.ReportChannel}
	}
}
