package mailing

import (
	"strconv"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/service/sending"
)

// ComposerConfig holds the sender identity and the public tracking base URL.
type ComposerConfig struct {
	TrackingBaseURL string
	FromEmail       string
	FromName        string
}

// Composer builds the outgoing message of one dispatch target.
type Composer struct {
	renderer *Renderer
	cfg      ComposerConfig
}

// NewComposer creates a composer.
func NewComposer(r *Renderer, cfg ComposerConfig) *Composer {
	return &Composer{renderer: r, cfg: cfg}
}

// Compose renders the campaign template for t.
func (c *Composer) Compose(camp *domain.Campaign, t *domain.DispatchTarget) (*sending.Message, error) {
	urls := BuildTrackingURLs(c.cfg.TrackingBaseURL, t.TrackingToken, camp.LandingSlug)
	body, err := c.renderer.Render(camp.EmailTemplate, RenderInput{
		URLs:           urls,
		RecipientEmail: t.Recipient.Email,
		RecipientName:  t.Recipient.DisplayName(),
		CampaignName:   camp.Name,
	})
	if err != nil {
		return nil, err
	}

	return &sending.Message{
		FromEmail: c.cfg.FromEmail,
		FromName:  c.cfg.FromName,
		ToEmail:   t.Recipient.Email,
		ToName:    t.Recipient.FullName,
		Subject:   camp.MessageSubject(),
		HTMLBody:  body.HTML,
		TextBody:  body.Text,
		Tags: map[string]string{
			"campaign_id":           strconv.FormatInt(camp.ID, 10),
			"campaign_recipient_id": strconv.FormatInt(t.CampaignRecipientID, 10),
		},
	}, nil
}
