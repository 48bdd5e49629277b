package memory

import (
	"context"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/service/engagement"
)

func (s *Store) Resolve(_ context.Context, token string) (*engagement.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byToken[token]
	if !ok {
		return nil, engagement.ErrNotFound
	}
	cr := s.enrolled[id]
	t := &engagement.Target{CampaignRecipientID: cr.ID, CampaignID: cr.CampaignID}
	if c, ok := s.campaigns[cr.CampaignID]; ok {
		t.LandingSlug = c.LandingSlug
	}
	return t, nil
}

// Record appends ev and folds it into the owning row under one lock, so
// concurrent callbacks serialize exactly like the conditional UPDATE.
func (s *Store) Record(_ context.Context, ev *domain.EmailEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cr, ok := s.enrolled[ev.CampaignRecipientID]
	if !ok {
		return engagement.ErrNotFound
	}
	ev.ID = s.id()
	stored := *ev
	stored.Metadata = make(map[string]string, len(ev.Metadata))
	for k, v := range ev.Metadata {
		stored.Metadata[k] = v
	}
	s.events = append(s.events, stored)
	cr.Apply(ev.Engagement())
	return nil
}
