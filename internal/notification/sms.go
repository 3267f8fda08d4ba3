package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// SMSService delivers text messages
type SMSService interface {
	SendSMS(ctx context.Context, notification *SMSNotification) error
}

// messageCreator is the slice of the Twilio API this package uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSMSService implements SMS notifications using Twilio
type TwilioSMSService struct {
	api  messageCreator
	from string
	log  *zap.Logger
}

// NewTwilioSMSService creates a new Twilio SMS service
func NewTwilioSMSService(accountSID, authToken, from string, log *zap.Logger) (*TwilioSMSService, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("incomplete Twilio configuration")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSService{api: client.Api, from: from, log: log}, nil
}

// SendSMS sends a single SMS. The Twilio client has no context support;
// ctx is only checked before the call.
func (s *TwilioSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(notification.To)
	params.SetFrom(s.from)
	params.SetBody(notification.Message)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS via Twilio: %w", err)
	}

	if resp.Sid != nil {
		s.log.Debug("sms sent", zap.String("to", notification.To), zap.String("sid", *resp.Sid))
	}
	return nil
}

// MockSMSService records messages instead of sending them
type MockSMSService struct {
	mu           sync.Mutex
	SentMessages []*SMSNotification
	log          *zap.Logger
}

func NewMockSMSService(log *zap.Logger) *MockSMSService {
	return &MockSMSService{log: log}
}

func (m *MockSMSService) SendSMS(_ context.Context, notification *SMSNotification) error {
	m.mu.Lock()
	m.SentMessages = append(m.SentMessages, notification)
	m.mu.Unlock()

	m.log.Info("mock sms", zap.String("to", notification.To))
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockSMSService) Sent() []*SMSNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*SMSNotification(nil), m.SentMessages...)
}
