package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/service/campaign"
)

const campaignColumns = `id, name, COALESCE(description,''), COALESCE(subject,''), email_template,
	landing_slug, start_at, end_at, throttle_per_minute, created_by, created_at, updated_at`

const recipientStateColumns = `cr.id, cr.campaign_id, cr.recipient_id, cr.status, cr.tracking_token,
	cr.sent_at, cr.opened_at, cr.open_seen_at, cr.clicked_at, cr.landing_viewed_at,
	cr.cta_clicked_at, cr.submit_attempt_at, cr.reported_at,
	cr.click_count, cr.landing_view_count, cr.cta_click_count, cr.submit_attempted,
	COALESCE(cr.fail_reason,''), COALESCE(cr.report_channel,''), COALESCE(cr.open_signal_quality,''),
	cr.time_to_click_seconds, cr.time_to_report_seconds, cr.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(s rowScanner) (*domain.Campaign, error) {
	var c domain.Campaign
	var createdBy sql.NullInt64
	if err := s.Scan(
		&c.ID, &c.Name, &c.Description, &c.Subject, &c.EmailTemplate,
		&c.LandingSlug, &c.StartAt, &c.EndAt, &c.ThrottlePerMinute, &createdBy,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		c.CreatedBy = &createdBy.Int64
	}
	return &c, nil
}

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO campaigns
			(name, description, subject, email_template, landing_slug,
			 start_at, end_at, throttle_per_minute, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id
	`, c.Name, nullString(c.Description), nullString(c.Subject), c.EmailTemplate, c.LandingSlug,
		c.StartAt, c.EndAt, c.ThrottlePerMinute, nullInt64(c.CreatedBy),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create campaign: %w", err)
	}
	return id, nil
}

func (r *CampaignRepo) CreateRecipient(ctx context.Context, rc *domain.Recipient) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO recipients (email, full_name, department, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`, strings.ToLower(rc.Email), nullString(rc.FullName), nullString(rc.Department), nullString(rc.Role),
	).Scan(&id)
	if hasCode(err, codeUniqueViolation) {
		return 0, campaign.ErrDuplicateRecipient
	}
	if err != nil {
		return 0, fmt.Errorf("create recipient: %w", err)
	}
	return id, nil
}

// Enroll inserts a pending pairing. Both the (campaign, recipient) pair and
// the token are unique; either collision reports ErrDuplicatePairing.
func (r *CampaignRepo) Enroll(ctx context.Context, cr *domain.CampaignRecipient) (int64, error) {
	if err := cr.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO campaign_recipients (campaign_id, recipient_id, status, tracking_token, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`, cr.CampaignID, cr.RecipientID, cr.Status, cr.TrackingToken).Scan(&id)
	if err == nil {
		return id, nil
	}
	if pqErr, ok := pqError(err); ok {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return 0, campaign.ErrDuplicatePairing
		case codeForeignKeyViolation:
			if strings.Contains(pqErr.Constraint, "campaign_id") {
				return 0, campaign.ErrNotFound
			}
			return 0, campaign.ErrRecipientNotFound
		}
	}
	return 0, fmt.Errorf("enroll recipient: %w", err)
}

func (r *CampaignRepo) ListRecipients(ctx context.Context, campaignID int64) ([]campaign.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recipientStateColumns+`,
		       r.id, r.email, COALESCE(r.full_name,''), COALESCE(r.department,''),
		       COALESCE(r.role,''), r.created_at
		FROM campaign_recipients cr
		JOIN recipients r ON r.id = cr.recipient_id
		WHERE cr.campaign_id = $1
		ORDER BY cr.id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var out []campaign.Enrollment
	for rows.Next() {
		var e campaign.Enrollment
		s := &e.State
		rc := &e.Recipient
		if err := rows.Scan(
			&s.ID, &s.CampaignID, &s.RecipientID, &s.Status, &s.TrackingToken,
			&s.SentAt, &s.OpenedAt, &s.OpenSeenAt, &s.ClickedAt, &s.LandingViewedAt,
			&s.CTAClickedAt, &s.SubmitAttemptAt, &s.ReportedAt,
			&s.ClickCount, &s.LandingViewCount, &s.CTAClickCount, &s.SubmitAttempted,
			&s.FailReason, &s.ReportChannel, &s.OpenSignalQuality,
			&s.TimeToClickSeconds, &s.TimeToReportSeconds, &s.CreatedAt,
			&rc.ID, &rc.Email, &rc.FullName, &rc.Department, &rc.Role, &rc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
