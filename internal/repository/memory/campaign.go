package memory

import (
	"context"
	"strings"
	"time"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/service/campaign"
)

func (s *Store) Get(_ context.Context, id int64) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) Create(_ context.Context, c *domain.Campaign) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.ID = s.id()
	now := time.Now().UTC()
	cp.CreatedAt, cp.UpdatedAt = now, now
	s.campaigns[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) CreateRecipient(_ context.Context, r *domain.Recipient) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.recipients {
		if strings.EqualFold(existing.Email, r.Email) {
			return 0, campaign.ErrDuplicateRecipient
		}
	}
	cp := *r
	cp.ID = s.id()
	cp.CreatedAt = time.Now().UTC()
	s.recipients[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) Enroll(_ context.Context, cr *domain.CampaignRecipient) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[cr.CampaignID]; !ok {
		return 0, campaign.ErrNotFound
	}
	if _, ok := s.recipients[cr.RecipientID]; !ok {
		return 0, campaign.ErrRecipientNotFound
	}
	pair := [2]int64{cr.CampaignID, cr.RecipientID}
	if _, ok := s.byPair[pair]; ok {
		return 0, campaign.ErrDuplicatePairing
	}
	if _, ok := s.byToken[cr.TrackingToken]; ok {
		return 0, campaign.ErrDuplicatePairing
	}
	if err := cr.Validate(); err != nil {
		return 0, err
	}

	cp := copyRecipientState(cr)
	cp.ID = s.id()
	cp.CreatedAt = time.Now().UTC()
	s.enrolled[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	s.byPair[pair] = cp.ID
	s.byToken[cp.TrackingToken] = cp.ID
	return cp.ID, nil
}

func (s *Store) ListRecipients(_ context.Context, campaignID int64) ([]campaign.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []campaign.Enrollment
	for _, id := range s.order {
		cr := s.enrolled[id]
		if cr.CampaignID != campaignID {
			continue
		}
		out = append(out, campaign.Enrollment{
			State:     copyRecipientState(cr),
			Recipient: *s.recipients[cr.RecipientID],
		})
	}
	return out, nil
}
