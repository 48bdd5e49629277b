package mailing

import (
	"context"
	"errors"
	"net/smtp"
	"net/textproto"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/awaresim/internal/config"
	"github.com/ignite/awaresim/internal/service/sending"
)

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-123")}, nil
}

func testMessage() *sending.Message {
	return &sending.Message{
		FromEmail: "it@example.com",
		FromName:  "IT",
		ToEmail:   "bob@example.com",
		Subject:   "Reset",
		HTMLBody:  "<p>x</p>",
		TextBody:  "x",
		Tags:      map[string]string{"campaign_recipient_id": "9", "campaign_id": "1"},
	}
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	s := NewSESSender(fake, "sim-events")

	res, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, "ses-123", res.MessageID)

	require.NotNil(t, fake.in)
	assert.Equal(t, `"IT" <it@example.com>`, aws.ToString(fake.in.FromEmailAddress))
	assert.Equal(t, []string{"bob@example.com"}, fake.in.Destination.ToAddresses)
	assert.Equal(t, "sim-events", aws.ToString(fake.in.ConfigurationSetName))
	require.Len(t, fake.in.EmailTags, 2)
	assert.Equal(t, "campaign_id", aws.ToString(fake.in.EmailTags[0].Name))
	assert.Equal(t, "x", aws.ToString(fake.in.Content.Simple.Body.Text.Data))
}

func TestSESSender_RejectedIsHardBounce(t *testing.T) {
	s := NewSESSender(&fakeSES{err: &types.MessageRejected{Message: aws.String("Address blacklisted")}}, "")

	_, err := s.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.True(t, sending.IsHardBounce(err))
}

func TestSESSender_OtherErrorIsNotBounce(t *testing.T) {
	s := NewSESSender(&fakeSES{err: errors.New("throttled")}, "")

	_, err := s.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.False(t, sending.IsHardBounce(err))
}

func TestSMTPSender_Send(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "user", "pass")
	var got *email.Email
	var gotAddr string
	s.send = func(e *email.Email, addr string, _ smtp.Auth) error {
		got, gotAddr = e, addr
		return nil
	}

	_, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"bob@example.com"}, got.To)
	assert.Equal(t, "Reset", got.Subject)
	assert.Equal(t, "9", got.Headers.Get("X-Campaign-Recipient-Id"))
}

func TestSMTPSender_MailboxUnavailableIsHardBounce(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 25, "", "")
	s.send = func(*email.Email, string, smtp.Auth) error {
		return &textproto.Error{Code: 550, Msg: "5.1.1 user unknown"}
	}

	_, err := s.Send(context.Background(), testMessage())
	assert.True(t, sending.IsHardBounce(err))
}

func TestSMTPSender_AuthFailureIsNotBounce(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 25, "u", "p")
	s.send = func(*email.Email, string, smtp.Auth) error {
		return &textproto.Error{Code: 535, Msg: "authentication failed"}
	}

	_, err := s.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.False(t, sending.IsHardBounce(err))
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 25, "", "")
	called := false
	s.send = func(*email.Email, string, smtp.Auth) error { called = true; return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Send(ctx, testMessage())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestNewSender(t *testing.T) {
	ctx := context.Background()

	s, err := NewSender(ctx, config.MailConfig{Transport: "log"})
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(ctx, config.MailConfig{Transport: "smtp", SMTP: config.SMTPConfig{Host: "localhost", Port: 25}})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	_, err = NewSender(ctx, config.MailConfig{Transport: "smtp"})
	assert.Error(t, err)

	_, err = NewSender(ctx, config.MailConfig{Transport: "pigeon"})
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	s := NewLogSender()
	res, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.NotEmpty(t, res.MessageID)
	assert.Equal(t, int64(1), s.Sent())
}
