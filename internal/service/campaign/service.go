package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/pkg/logger"
	"github.com/ignite/awaresim/internal/pkg/validation"
)

// Service implements campaign setup, enrollment and reporting. All public
// methods are safe for concurrent use if the repository is.
type Service struct {
	repo     Repository
	newToken func() string
}

// NewService creates a campaign service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, newToken: func() string { return uuid.NewString() }}
}

// Get returns a single campaign.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	return s.repo.Get(ctx, id)
}

// CreateInput holds the fields for creating a new campaign.
type CreateInput struct {
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Subject           string    `json:"subject"`
	EmailTemplate     string    `json:"email_template"`
	LandingSlug       string    `json:"landing_slug"`
	StartAt           time.Time `json:"start_at"`
	EndAt             time.Time `json:"end_at"`
	ThrottlePerMinute int       `json:"throttle_per_minute"`
	CreatedBy         *int64    `json:"created_by,omitempty"`
}

// Create validates and persists a campaign. A zero throttle takes the default.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Campaign, error) {
	c := &domain.Campaign{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Subject:           strings.TrimSpace(in.Subject),
		EmailTemplate:     in.EmailTemplate,
		LandingSlug:       strings.TrimSpace(in.LandingSlug),
		StartAt:           in.StartAt.UTC(),
		EndAt:             in.EndAt.UTC(),
		ThrottlePerMinute: in.ThrottlePerMinute,
		CreatedBy:         in.CreatedBy,
	}
	if c.ThrottlePerMinute == 0 {
		c.ThrottlePerMinute = domain.DefaultThrottlePerMinute
	}
	if err := validation.Struct(c); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	c.ID = id
	return c, nil
}

// RecipientInput holds the fields of a new recipient.
type RecipientInput struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"max=255"`
	Department string `json:"department" validate:"max=120"`
	Role       string `json:"role" validate:"max=120"`
}

// AddRecipient validates and persists a recipient. Emails are stored lower-cased.
func (s *Service) AddRecipient(ctx context.Context, in RecipientInput) (*domain.Recipient, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	r := &domain.Recipient{
		Email:      in.Email,
		FullName:   strings.TrimSpace(in.FullName),
		Department: strings.TrimSpace(in.Department),
		Role:       strings.TrimSpace(in.Role),
	}
	id, err := s.repo.CreateRecipient(ctx, r)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return r, nil
}

// EnrollResult reports what Enroll did.
type EnrollResult struct {
	Enrolled []domain.CampaignRecipient
	// Skipped counts recipients that were already enrolled.
	Skipped int
}

// Enroll pairs each recipient with the campaign, minting a fresh tracking
// token per pairing. Existing pairings are skipped and keep their token.
func (s *Service) Enroll(ctx context.Context, campaignID int64, recipientIDs []int64) (*EnrollResult, error) {
	if _, err := s.repo.Get(ctx, campaignID); err != nil {
		return nil, err
	}

	res := &EnrollResult{}
	seen := make(map[int64]bool, len(recipientIDs))
	for _, rid := range recipientIDs {
		if seen[rid] {
			res.Skipped++
			continue
		}
		seen[rid] = true

		cr := &domain.CampaignRecipient{
			CampaignID:    campaignID,
			RecipientID:   rid,
			Status:        domain.StatusPending,
			TrackingToken: s.newToken(),
		}
		id, err := s.repo.Enroll(ctx, cr)
		if errors.Is(err, ErrDuplicatePairing) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("enroll recipient %d: %w", rid, err)
		}
		cr.ID = id
		res.Enrolled = append(res.Enrolled, *cr)
	}

	logger.Info("campaign enrollment",
		"campaign_id", campaignID,
		"enrolled", len(res.Enrolled),
		"skipped", res.Skipped,
	)
	return res, nil
}

// RecipientReport is one row of a campaign engagement report.
type RecipientReport struct {
	Enrollment
	Criticality domain.Criticality `json:"criticality"`
}

// Report is the engagement report of a campaign.
type Report struct {
	CampaignID int64                      `json:"campaign_id"`
	Rows       []RecipientReport          `json:"rows"`
	ByLevel    map[domain.Criticality]int `json:"by_level"`
	Sent       int                        `json:"sent"`
	Bounced    int                        `json:"bounced"`
	Failed     int                        `json:"failed"`
}

// Report scores every enrollment of the campaign.
func (s *Service) Report(ctx context.Context, campaignID int64) (*Report, error) {
	if _, err := s.repo.Get(ctx, campaignID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListRecipients(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}

	rep := &Report{
		CampaignID: campaignID,
		Rows:       make([]RecipientReport, 0, len(rows)),
		ByLevel:    make(map[domain.Criticality]int),
	}
	for _, e := range rows {
		level := e.State.Criticality()
		rep.Rows = append(rep.Rows, RecipientReport{Enrollment: e, Criticality: level})
		rep.ByLevel[level]++
		switch e.State.Status {
		case domain.StatusSent:
			rep.Sent++
		case domain.StatusBounced:
			rep.Bounced++
		case domain.StatusFailed:
			rep.Failed++
		}
	}
	return rep, nil
}
