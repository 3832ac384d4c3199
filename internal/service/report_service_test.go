package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexnjoya/mindlink/internal/models"
	"github.com/alexnjoya/mindlink/internal/validation"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func finishedRecord() *models.GameSession {
	return &models.GameSession{
		ID:         "5f1b6c7e-2d1a-4a57-9a39-0c3c1f4f1d2e",
		GameTitle:  "guess what",
		TotalScore: 3516,
		MMSEScore:  25,
		Complete:   true,
	}
}

func TestReportServiceDisabled(t *testing.T) {
	svc, err := NewReportService(context.Background(), "us-east-1", "", "MindLink", "", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.SendSessionReport(context.Background(), "ada@example.com", "Ada", finishedRecord()))
}

func TestSendSessionReport(t *testing.T) {
	ses := &fakeSES{}
	svc := newReportService(ses, "reports@mindlink.test", "MindLink", "https://mindlink.test", zap.NewNop())

	require.NoError(t, svc.SendSessionReport(context.Background(), "ada@example.com", "Ada <3", finishedRecord()))
	require.Len(t, ses.inputs, 1)

	input := ses.inputs[0]
	assert.Equal(t, "MindLink <reports@mindlink.test>", aws.ToString(input.FromEmailAddress))
	assert.Equal(t, []string{"ada@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "Your guess what results", aws.ToString(input.Content.Simple.Subject.Data))

	htmlBody := aws.ToString(input.Content.Simple.Body.Html.Data)
	assert.Contains(t, htmlBody, "Ada &lt;3")
	assert.Contains(t, htmlBody, "25 / 30</span> (Normal)")
	assert.Contains(t, htmlBody, "https://mindlink.test/sessions/5f1b6c7e-2d1a-4a57-9a39-0c3c1f4f1d2e")

	textBody := aws.ToString(input.Content.Simple.Body.Text.Data)
	assert.Contains(t, textBody, "Total score: 3516")
	assert.Contains(t, textBody, "MMSE estimate: 25 / 30 (Normal)")
}

func TestSendSessionReportError(t *testing.T) {
	ses := &fakeSES{err: errors.New("throttled")}
	svc := newReportService(ses, "reports@mindlink.test", "", "", zap.NewNop())

	err := svc.SendSessionReport(context.Background(), "ada@example.com", "", finishedRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestSendSessionReportRejectsBadAddress(t *testing.T) {
	ses := &fakeSES{}
	svc := newReportService(ses, "reports@mindlink.test", "", "", zap.NewNop())

	err := svc.SendSessionReport(context.Background(), "not-an-address", "", finishedRecord())
	assert.True(t, validation.IsValidationError(err))
	assert.Empty(t, ses.inputs)
}
