package campaign_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/pkg/validation"
	"github.com/ignite/awaresim/internal/repository/memory"
	"github.com/ignite/awaresim/internal/service/campaign"
)

func validInput() campaign.CreateInput {
	now := time.Now()
	return campaign.CreateInput{
		Name:          "  Benefits enrolment  ",
		EmailTemplate: "<p>{{ recipient_name }}</p>",
		LandingSlug:   "benefits",
		StartAt:       now,
		EndAt:         now.Add(24 * time.Hour),
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	svc := campaign.NewService(memory.New())
	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotZero(t, c.ID)
	assert.Equal(t, "Benefits enrolment", c.Name)
	assert.Equal(t, domain.DefaultThrottlePerMinute, c.ThrottlePerMinute)
	assert.Equal(t, time.UTC, c.StartAt.Location())
}

func TestCreate_Validation(t *testing.T) {
	tests := map[string]func(*campaign.CreateInput){
		"missing name":     func(in *campaign.CreateInput) { in.Name = " " },
		"missing template": func(in *campaign.CreateInput) { in.EmailTemplate = "" },
		"missing slug":     func(in *campaign.CreateInput) { in.LandingSlug = "" },
		"end before start": func(in *campaign.CreateInput) { in.EndAt = in.StartAt.Add(-time.Minute) },
		"negative throttle": func(in *campaign.CreateInput) {
			in.ThrottlePerMinute = -1
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := campaign.NewService(memory.New()).Create(context.Background(), in)
			var verr *validation.Error
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestAddRecipient(t *testing.T) {
	svc := campaign.NewService(memory.New())
	ctx := context.Background()

	r, err := svc.AddRecipient(ctx, campaign.RecipientInput{Email: " Bob@Example.COM ", FullName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", r.Email)

	_, err = svc.AddRecipient(ctx, campaign.RecipientInput{Email: "bob@example.com"})
	assert.ErrorIs(t, err, campaign.ErrDuplicateRecipient)

	_, err = svc.AddRecipient(ctx, campaign.RecipientInput{Email: "not an address"})
	assert.Error(t, err)
}

func TestEnroll_SkipsExistingPairings(t *testing.T) {
	store := memory.New()
	svc := campaign.NewService(store)
	ctx := context.Background()

	c, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	a, _ := svc.AddRecipient(ctx, campaign.RecipientInput{Email: "a@example.com"})
	b, _ := svc.AddRecipient(ctx, campaign.RecipientInput{Email: "b@example.com"})

	first, err := svc.Enroll(ctx, c.ID, []int64{a.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, first.Enrolled, 1)
	assert.Equal(t, 1, first.Skipped)
	assert.Equal(t, domain.StatusPending, first.Enrolled[0].Status)
	assert.Len(t, first.Enrolled[0].TrackingToken, 36)

	second, err := svc.Enroll(ctx, c.ID, []int64{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, second.Enrolled, 1)
	assert.Equal(t, b.ID, second.Enrolled[0].RecipientID)
	assert.NotEqual(t, first.Enrolled[0].TrackingToken, second.Enrolled[0].TrackingToken)

	stored, _ := store.CampaignRecipient(first.Enrolled[0].ID)
	assert.Equal(t, first.Enrolled[0].TrackingToken, stored.TrackingToken)
}

func TestEnroll_UnknownCampaign(t *testing.T) {
	_, err := campaign.NewService(memory.New()).Enroll(context.Background(), 404, []int64{1})
	assert.ErrorIs(t, err, campaign.ErrNotFound)
}

func TestReport_ScoresEveryRecipient(t *testing.T) {
	store := memory.New()
	svc := campaign.NewService(store)
	ctx := context.Background()

	c, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	var ids []int64
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		r, err := svc.AddRecipient(ctx, campaign.RecipientInput{Email: email})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	res, err := svc.Enroll(ctx, c.ID, ids)
	require.NoError(t, err)

	sentAt := time.Now().UTC()
	require.NoError(t, store.CommitSent(ctx, res.Enrolled[0].ID, sentAt, &domain.AuditLog{Action: domain.AuditEmailSent}))
	require.NoError(t, store.CommitFailed(ctx, res.Enrolled[1].ID, domain.StatusBounced, "550", &domain.AuditLog{Action: domain.AuditEmailFailed}))
	require.NoError(t, store.Record(ctx, &domain.EmailEvent{
		CampaignRecipientID: res.Enrolled[0].ID,
		EventType:           domain.EventSubmitAttempt,
		CreatedAt:           sentAt.Add(time.Minute),
	}))

	rep, err := svc.Report(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 3)
	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, 1, rep.Bounced)
	assert.Equal(t, 0, rep.Failed)
	assert.Equal(t, domain.CriticalityHigh, rep.Rows[0].Criticality)
	assert.Equal(t, "a@example.com", rep.Rows[0].Recipient.Email)
	assert.Equal(t, 2, rep.ByLevel[domain.CriticalityNone])
}
