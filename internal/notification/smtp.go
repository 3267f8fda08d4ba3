package notification

import (
	"context"
	"crypto/tls"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPEmailService delivers email through a plain SMTP relay.
type SMTPEmailService struct {
	from     string
	fromName string
	log      *zap.Logger

	send func(messages ...*gomail.Message) error
}

func NewSMTPEmailService(host string, port int, username, password, from, fromName string, log *zap.Logger) (*SMTPEmailService, error) {
	if host == "" || username == "" || password == "" || from == "" {
		return nil, fmt.Errorf("incomplete SMTP configuration")
	}

	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}

	return &SMTPEmailService{
		from:     from,
		fromName: fromName,
		log:      log,
		send:     dialer.DialAndSend,
	}, nil
}

func (s *SMTPEmailService) buildMessage(notification *EmailNotification) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, s.fromName))
	if notification.ToName != "" {
		m.SetHeader("To", m.FormatAddress(notification.To, notification.ToName))
	} else {
		m.SetHeader("To", notification.To)
	}
	m.SetHeader("Subject", notification.Subject)

	m.SetBody("text/plain", notification.Body)
	if notification.HTML != "" {
		m.AddAlternative("text/html", notification.HTML)
	}
	return m
}

// SendEmail dials the relay for every call. gomail has no context support,
// so cancellation is only honoured before dialing.
func (s *SMTPEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.send(s.buildMessage(notification)); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	s.log.Debug("email sent", zap.String("to", notification.To), zap.String("subject", notification.Subject))
	return nil
}
