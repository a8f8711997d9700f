package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"rescueradar/models"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// ErrEmailAuthentication is returned when the provider rejects our credentials
var ErrEmailAuthentication = errors.New("email service authentication failed")

// EmailService delivers a rendered email and returns the provider message id
type EmailService interface {
	Send(ctx context.Context, email models.OutgoingEmail) (string, error)
	Provider() string
}

type Sender struct {
	Name  string
	Email string
}

// BrevoEmailService talks to the Brevo transactional email API
type BrevoEmailService struct {
	client *brevo.APIClient
	sender Sender
}

func NewBrevoEmailService(apiKey string, sender Sender) *BrevoEmailService {
	return newBrevoEmailService(apiKey, sender, "")
}

// newBrevoEmailService points the SDK at basePath when it is set
func newBrevoEmailService(apiKey string, sender Sender, basePath string) *BrevoEmailService {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	if basePath != "" {
		cfg.BasePath = basePath
	}
	return &BrevoEmailService{
		client: brevo.NewAPIClient(cfg),
		sender: sender,
	}
}

func (s *BrevoEmailService) Provider() string { return "brevo" }

func (s *BrevoEmailService) Send(ctx context.Context, email models.OutgoingEmail) (string, error) {
	result, resp, err := s.client.TransactionalEmailsApi.SendTransacEmail(ctx, brevo.SendSmtpEmail{
		Sender:      &brevo.SendSmtpEmailSender{Name: s.sender.Name, Email: s.sender.Email},
		To:          []brevo.SendSmtpEmailTo{{Email: email.To, Name: email.ToName}},
		Subject:     email.Subject,
		HtmlContent: email.HTMLContent,
		Tags:        email.Tags,
	})
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return "", ErrEmailAuthentication
	}
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	return result.MessageId, nil
}

// SendGridEmailService delivers through SendGrid's v3 mail API
type SendGridEmailService struct {
	client *sendgrid.Client
	sender Sender
}

func NewSendGridEmailService(apiKey string, sender Sender) *SendGridEmailService {
	return &SendGridEmailService{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
	}
}

func (s *SendGridEmailService) Provider() string { return "sendgrid" }

func (s *SendGridEmailService) Send(ctx context.Context, email models.OutgoingEmail) (string, error) {
	from := mail.NewEmail(s.sender.Name, s.sender.Email)
	to := mail.NewEmail(email.ToName, email.To)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = email.Subject
	message.AddPersonalizations(personalization)
	message.AddContent(mail.NewContent("text/html", email.HTMLContent))
	message.AddCategories(email.Tags...)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return "", fmt.Errorf("sendgrid request failed: %w", err)
	}
	if response.StatusCode == http.StatusUnauthorized {
		return "", ErrEmailAuthentication
	}
	if response.StatusCode >= 300 {
		return "", fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}

// MockEmailService logs emails instead of sending them
type MockEmailService struct{}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (s *MockEmailService) Provider() string { return "mock" }

func (s *MockEmailService) Send(ctx context.Context, email models.OutgoingEmail) (string, error) {
	logrus.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
		"tags":    email.Tags,
	}).Info("📧 Mock email sent")
	return fmt.Sprintf("mock-%d", time.Now().UnixNano()), nil
}
