// internal/notification/email.go

package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// EmailService delivers email notifications
type EmailService interface {
	SendEmail(ctx context.Context, notification *EmailNotification) error
}

// SendGridEmailService implements email notifications using SendGrid
type SendGridEmailService struct {
	from     string
	fromName string
	log      *zap.Logger

	// send returns the HTTP status of the SendGrid API call.
	send func(ctx context.Context, message *mail.SGMailV3) (int, error)
}

// NewSendGridEmailService creates a new SendGrid email service
func NewSendGridEmailService(apiKey, from, fromName string, log *zap.Logger) (*SendGridEmailService, error) {
	if apiKey == "" || from == "" {
		return nil, fmt.Errorf("incomplete SendGrid configuration")
	}

	client := sendgrid.NewSendClient(apiKey)
	return &SendGridEmailService{
		from:     from,
		fromName: fromName,
		log:      log,
		send: func(ctx context.Context, message *mail.SGMailV3) (int, error) {
			resp, err := client.SendWithContext(ctx, message)
			if err != nil {
				return 0, err
			}
			return resp.StatusCode, nil
		},
	}, nil
}

// SendEmail sends a single email via SendGrid
func (s *SendGridEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(notification.ToName, notification.To)
	message := mail.NewSingleEmail(from, notification.Subject, to, notification.Body, notification.HTML)

	status, err := s.send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", status)
	}

	s.log.Debug("email sent", zap.String("to", notification.To), zap.String("subject", notification.Subject))
	return nil
}

// MockEmailService records emails instead of sending them
type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []*EmailNotification
	log        *zap.Logger
}

func NewMockEmailService(log *zap.Logger) *MockEmailService {
	return &MockEmailService{log: log}
}

func (m *MockEmailService) SendEmail(_ context.Context, notification *EmailNotification) error {
	m.mu.Lock()
	m.SentEmails = append(m.SentEmails, notification)
	m.mu.Unlock()

	m.log.Info("mock email", zap.String("to", notification.To), zap.String("subject", notification.Subject))
	return nil
}

// Sent returns a copy of the recorded emails.
func (m *MockEmailService) Sent() []*EmailNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*EmailNotification(nil), m.SentEmails...)
}
