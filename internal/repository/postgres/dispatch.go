package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/service/dispatch"
)

// DispatchRepo implements dispatch.Repository against PostgreSQL.
type DispatchRepo struct{ db *sql.DB }

// NewDispatchRepo creates a Postgres-backed dispatch repository.
func NewDispatchRepo(db *sql.DB) *DispatchRepo { return &DispatchRepo{db: db} }

func (r *DispatchRepo) DueCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE start_at <= $1 AND end_at > $1
		ORDER BY id
	`, now)
	if err != nil {
		return nil, fmt.Errorf("due campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *DispatchRepo) PendingRecipients(ctx context.Context, campaignID int64, limit int) ([]domain.DispatchTarget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cr.id, cr.tracking_token,
		       r.id, r.email, COALESCE(r.full_name,''), COALESCE(r.department,''),
		       COALESCE(r.role,''), r.created_at
		FROM campaign_recipients cr
		JOIN recipients r ON r.id = cr.recipient_id
		WHERE cr.campaign_id = $1 AND cr.status = 'pending'
		ORDER BY cr.id
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("pending recipients: %w", err)
	}
	defer rows.Close()

	var out []domain.DispatchTarget
	for rows.Next() {
		var t domain.DispatchTarget
		rc := &t.Recipient
		if err := rows.Scan(
			&t.CampaignRecipientID, &t.TrackingToken,
			&rc.ID, &rc.Email, &rc.FullName, &rc.Department, &rc.Role, &rc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *DispatchRepo) CommitSent(ctx context.Context, id int64, sentAt time.Time, audit *domain.AuditLog) error {
	if sentAt.IsZero() {
		return fmt.Errorf("%w: sent without sent_at", dispatch.ErrIntegrity)
	}
	return r.commit(ctx, audit, `
		UPDATE campaign_recipients
		SET status = 'sent', sent_at = $2
		WHERE id = $1 AND status = 'pending'
	`, id, sentAt)
}

func (r *DispatchRepo) CommitFailed(ctx context.Context, id int64, status domain.RecipientStatus, reason string, audit *domain.AuditLog) error {
	if status != domain.StatusFailed && status != domain.StatusBounced {
		return fmt.Errorf("%w: %q is not a failure status", dispatch.ErrIntegrity, status)
	}
	return r.commit(ctx, audit, `
		UPDATE campaign_recipients
		SET status = $2, fail_reason = $3
		WHERE id = $1 AND status = 'pending'
	`, id, string(status), reason)
}

// commit runs the guarded status update and the audit insert in one
// transaction. A row that already left pending updates nothing and rolls
// the audit back.
func (r *DispatchRepo) commit(ctx context.Context, audit *domain.AuditLog, update string, args ...any) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, update, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return dispatch.ErrInvalidTransition
		}
		return insertAudit(ctx, tx, audit)
	})
	if hasCode(err, codeCheckViolation) {
		return fmt.Errorf("%w: %v", dispatch.ErrIntegrity, err)
	}
	if err != nil {
		return fmt.Errorf("commit dispatch outcome: %w", err)
	}
	return nil
}

func insertAudit(ctx context.Context, tx *sql.Tx, a *domain.AuditLog) error {
	meta, err := jsonb(a.Metadata)
	if err != nil {
		return fmt.Errorf("encode audit metadata: %w", err)
	}
	at := a.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_logs (action, actor_id, metadata, created_at)
		VALUES ($1, $2, $3, $4)
	`, a.Action, nullInt64(a.ActorID), meta, at)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
