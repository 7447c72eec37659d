package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService sends transactional mail via AWS SES
type SESService struct {
	client    *ses.Client
	fromEmail string
	fromName  string
}

// NewSESService creates a new email service using AWS SES
func NewSESService(region, fromEmail, fromName string) (*SESService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESService{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendMagicLink sends the passwordless sign-in link. The link is single-use
// and short-lived; the email says so.
func (e *SESService) SendMagicLink(ctx context.Context, toEmail, linkURL string) error {
	subject := "Your Code Crafts sign-in link"
	htmlBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.button { display: inline-block; padding: 12px 24px; background-color: #10b981; color: white; text-decoration: none; border-radius: 6px; margin: 20px 0; }
			</style>
		</head>
		<body>
			<div class="container">
				<h1>Sign in to Code Crafts</h1>
				<p>Click the button below to sign in. The link works once and expires in 15 minutes.</p>
				<a href="%s" class="button">Sign In</a>
				<p>Or copy and paste this link into your browser:</p>
				<p style="word-break: break-all; color: #666;">%s</p>
				<p>If you didn't request this email, you can safely ignore it.</p>
				<hr>
				<p style="color: #999; font-size: 12px;">This is an automated message from Code Crafts.</p>
			</div>
		</body>
		</html>
	`, linkURL, linkURL)

	textBody := fmt.Sprintf(`
Sign in to Code Crafts

Click the link below to sign in. The link works once and expires in 15 minutes.

%s

If you didn't request this email, you can safely ignore it.

This is an automated message from Code Crafts.
	`, linkURL)

	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
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
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
