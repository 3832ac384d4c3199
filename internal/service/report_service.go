package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/alexnjoya/mindlink/internal/models"
	"github.com/alexnjoya/mindlink/internal/scoring"
	"github.com/alexnjoya/mindlink/internal/validation"
)

// emailSender is the part of the SES client the report service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// ReportService emails players a summary of each completed session via
// Amazon SES
type ReportService struct {
	client     emailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewReportService creates a new report service. Without a from address the
// service is disabled and every send is skipped.
func NewReportService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*ReportService, error) {
	if fromEmail == "" {
		logger.Info("session reports disabled: SES_FROM_EMAIL not configured")
		return &ReportService{enabled: false, logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("session reports enabled",
		zap.String("from", fromEmail),
		zap.String("region", awsRegion),
	)
	return newReportService(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, logger), nil
}

func newReportService(client emailSender, fromEmail, fromName, appBaseURL string, logger *zap.Logger) *ReportService {
	return &ReportService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}
}

// IsEnabled returns whether reports are sent
func (s *ReportService) IsEnabled() bool {
	return s.enabled
}

// SendSessionReport emails the outcome of a completed session
func (s *ReportService) SendSessionReport(ctx context.Context, toEmail, toName string, record *models.GameSession) error {
	if !s.enabled {
		s.logger.Debug("skipping session report (service disabled)", zap.String("session_id", record.ID))
		return nil
	}
	if err := validation.ValidateEmail(toEmail); err != nil {
		return err
	}

	if toName == "" {
		toName = "there"
	}
	classification := scoring.Classify(float64(record.MMSEScore))
	subject := fmt.Sprintf("Your %s results", record.GameTitle)
	link := fmt.Sprintf("%s/sessions/%s", s.appBaseURL, record.ID)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #5b4bdb; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.score { font-size: 28px; font-weight: bold; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s complete</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Here is how your session went.</p>
			<p>Total score: <span class="score">%d</span></p>
			<p>MMSE estimate: <span class="score">%d / %d</span> (%s)</p>
			<p>The estimate comes from game performance and is not a diagnosis.</p>
			<p><a href="%s">View the session</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from MindLink. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(record.GameTitle), html.EscapeString(toName), record.TotalScore,
		record.MMSEScore, scoring.MaxMMSE, classification, html.EscapeString(link))

	textBody := fmt.Sprintf(`Hi %s,

Here is how your %s session went.

Total score: %d
MMSE estimate: %d / %d (%s)

The estimate comes from game performance and is not a diagnosis.

View the session: %s

---
This is an automated email from MindLink. Please do not reply.
`, toName, record.GameTitle, record.TotalScore, record.MMSEScore, scoring.MaxMMSE, classification, link)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *ReportService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("email sent", fields...)
	return nil
}
