// Package memory implements every repository interface in process memory.
//
// A single mutex is the serialization point, which gives the same
// set-if-null and pending-guard semantics the PostgreSQL repositories get
// from conditional UPDATEs. It backs tests and local development.
package memory

import (
	"sync"
	"time"

	"github.com/ignite/awaresim/internal/domain"
)

// Store holds campaigns, recipients, enrollments, events and audit rows.
type Store struct {
	mu sync.Mutex

	campaigns  map[int64]*domain.Campaign
	recipients map[int64]*domain.Recipient
	enrolled   map[int64]*domain.CampaignRecipient // keyed by id
	order      []int64                             // enrollment ids in insertion order
	byToken    map[string]int64
	byPair     map[[2]int64]int64
	events     []domain.EmailEvent
	audits     []domain.AuditLog

	nextID int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		campaigns:  make(map[int64]*domain.Campaign),
		recipients: make(map[int64]*domain.Recipient),
		enrolled:   make(map[int64]*domain.CampaignRecipient),
		byToken:    make(map[string]int64),
		byPair:     make(map[[2]int64]int64),
	}
}

// id hands out increasing ids shared by every table. Callers hold mu.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CampaignRecipient returns a copy of one engagement row.
func (s *Store) CampaignRecipient(id int64) (domain.CampaignRecipient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cr, ok := s.enrolled[id]
	if !ok {
		return domain.CampaignRecipient{}, false
	}
	return copyRecipientState(cr), true
}

// Events returns a copy of the event log.
func (s *Store) Events() []domain.EmailEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.EmailEvent(nil), s.events...)
}

// AuditLogs returns a copy of the audit trail.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditLog(nil), s.audits...)
}

// copyRecipientState deep-copies the timestamp pointers so callers cannot
// mutate stored state.
func copyRecipientState(cr *domain.CampaignRecipient) domain.CampaignRecipient {
	out := *cr
	out.SentAt = cloneTime(cr.SentAt)
	out.OpenedAt = cloneTime(cr.OpenedAt)
	out.OpenSeenAt = cloneTime(cr.OpenSeenAt)
	out.ClickedAt = cloneTime(cr.ClickedAt)
	out.LandingViewedAt = cloneTime(cr.LandingViewedAt)
	out.CTAClickedAt = cloneTime(cr.CTAClickedAt)
	out.SubmitAttemptAt = cloneTime(cr.SubmitAttemptAt)
	out.ReportedAt = cloneTime(cr.ReportedAt)
	out.TimeToClickSeconds = cloneInt(cr.TimeToClickSeconds)
	out.TimeToReportSeconds = cloneInt(cr.TimeToReportSeconds)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(n *int64) *int64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
