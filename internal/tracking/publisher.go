package tracking

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/ignite/awaresim/internal/domain"
	"github.com/ignite/awaresim/internal/metrics"
	"github.com/ignite/awaresim/internal/pkg/logger"
)

const publishTimeout = 5 * time.Second

// SQSAPI is the subset of the SQS client the publisher uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// EventMessage is the queue payload of a recorded engagement event.
type EventMessage struct {
	EventID             int64                    `json:"event_id"`
	CampaignRecipientID int64                    `json:"campaign_recipient_id"`
	EventType           domain.EventType         `json:"event_type"`
	Signals             domain.ClientSignals     `json:"signals"`
	IPTruncated         string                   `json:"ip_address_truncated"`
	IPHash              string                   `json:"ip_hash"`
	OpenSignalQuality   domain.OpenSignalQuality `json:"open_signal_quality,omitempty"`
	Metadata            map[string]string        `json:"metadata,omitempty"`
	Timestamp           time.Time                `json:"timestamp"`
}

// Publisher fans recorded events out to an SQS queue for downstream
// analytics. Sends run in the background so callbacks never wait on AWS.
type Publisher struct {
	client   SQSAPI
	queueURL string
	wg       sync.WaitGroup
}

func NewPublisher(client SQSAPI, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

func (p *Publisher) Publish(_ context.Context, ev *domain.EmailEvent) {
	body, err := json.Marshal(EventMessage{
		EventID:             ev.ID,
		CampaignRecipientID: ev.CampaignRecipientID,
		EventType:           ev.EventType,
		Signals:             ev.ClientSignals,
		IPTruncated:         ev.IPTruncated,
		IPHash:              ev.IPHash,
		OpenSignalQuality:   ev.OpenSignalQuality,
		Metadata:            ev.Metadata,
		Timestamp:           ev.CreatedAt,
	})
	if err != nil {
		logger.Error("marshal engagement event", "error", err)
		return
	}

	kind := string(ev.EventType)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// detached from the request, which ends before the send does
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(p.queueURL),
			MessageBody: aws.String(string(body)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"event_type": {DataType: aws.String("String"), StringValue: aws.String(kind)},
			},
		})
		if err != nil {
			metrics.PublishErrors.Inc()
			logger.Error("publish engagement event", "event_type", kind, "error", err)
		}
	}()
}

// Wait blocks until in-flight sends finish or ctx ends.
func (p *Publisher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
