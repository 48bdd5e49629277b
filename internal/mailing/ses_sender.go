package mailing

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/awaresim/internal/pkg/logger"
	"github.com/ignite/awaresim/internal/service/sending"
)

// SESAPI is the subset of the SES v2 client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends messages via AWS SES using the SDK v2.
type SESSender struct {
	client           SESAPI
	configurationSet string
}

// NewSESSender wraps an SES client. configurationSet may be empty.
func NewSESSender(client SESAPI, configurationSet string) *SESSender {
	return &SESSender{client: client, configurationSet: configurationSet}
}

// NewSESClient builds an SES v2 client. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewSESClient(ctx context.Context, region, accessKey, secretKey string) (*sesv2.Client, error) {
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sesv2.NewFromConfig(cfg), nil
}

// Send delivers one message. A MessageRejected response is reported as a
// hard bounce.
func (s *SESSender) Send(ctx context.Context, msg *sending.Message) (*sending.Result, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(formatAddress(msg.FromName, msg.FromEmail)),
		Destination:      &types.Destination{ToAddresses: []string{formatAddress(msg.ToName, msg.ToEmail)}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: messageTags(msg.Tags),
	}
	if msg.TextBody != "" {
		input.Content.Simple.Body.Text = &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}
	}
	if s.configurationSet != "" {
		input.ConfigurationSetName = aws.String(s.configurationSet)
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		var rejected *types.MessageRejected
		if errors.As(err, &rejected) {
			return nil, fmt.Errorf("%w: ses: %s", sending.ErrHardBounce, aws.ToString(rejected.Message))
		}
		return nil, fmt.Errorf("ses send: %w", err)
	}

	id := aws.ToString(out.MessageId)
	logger.Debug("ses sent", "recipient_email", msg.ToEmail, "message_id", id)
	return &sending.Result{MessageID: id}, nil
}

func messageTags(tags map[string]string) []types.MessageTag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.MessageTag, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.MessageTag{Name: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return (&mail.Address{Name: name, Address: email}).String()
}
