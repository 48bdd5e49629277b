package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/service/dispatch"
)

func (s *Store) DueCampaigns(_ context.Context, now time.Time) ([]domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Campaign
	for _, c := range s.campaigns {
		if c.Active(now) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) PendingRecipients(_ context.Context, campaignID int64, limit int) ([]domain.DispatchTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DispatchTarget
	for _, id := range s.order {
		if len(out) >= limit {
			break
		}
		cr := s.enrolled[id]
		if cr.CampaignID != campaignID || cr.Status != domain.StatusPending {
			continue
		}
		out = append(out, domain.DispatchTarget{
			CampaignRecipientID: cr.ID,
			TrackingToken:       cr.TrackingToken,
			Recipient:           *s.recipients[cr.RecipientID],
		})
	}
	return out, nil
}

func (s *Store) CommitSent(_ context.Context, id int64, sentAt time.Time, audit *domain.AuditLog) error {
	if sentAt.IsZero() {
		return fmt.Errorf("%w: sent without sent_at", dispatch.ErrIntegrity)
	}
	return s.commit(id, domain.StatusSent, audit, func(cr *domain.CampaignRecipient) {
		at := sentAt
		cr.SentAt = &at
	})
}

func (s *Store) CommitFailed(_ context.Context, id int64, status domain.RecipientStatus, reason string, audit *domain.AuditLog) error {
	if status != domain.StatusFailed && status != domain.StatusBounced {
		return fmt.Errorf("%w: %q is not a failure status", dispatch.ErrIntegrity, status)
	}
	return s.commit(id, status, audit, func(cr *domain.CampaignRecipient) {
		cr.FailReason = reason
	})
}

// commit applies a status transition and appends its audit row, or does
// nothing at all.
func (s *Store) commit(id int64, status domain.RecipientStatus, audit *domain.AuditLog, apply func(*domain.CampaignRecipient)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cr, ok := s.enrolled[id]
	if !ok || !cr.CanTransition(status) {
		return dispatch.ErrInvalidTransition
	}
	next := *cr
	next.Status = status
	apply(&next)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %v", dispatch.ErrIntegrity, err)
	}
	*cr = next

	a := *audit
	a.ID = s.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.audits = append(s.audits, a)
	return nil
}
