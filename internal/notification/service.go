// internal/notification/service.go

package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/kurtgav/wizardmatch-sub001/internal/profile"
)

var notificationsSent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Mutual-interest notifications by channel and outcome",
	},
	[]string{"channel", "outcome"},
)

// Notifier tells both members of a pair that they matched, each through
// their own contact preference.
type Notifier struct {
	email EmailService
	sms   SMSService
	log   *zap.Logger
}

func NewNotifier(email EmailService, sms SMSService, log *zap.Logger) *Notifier {
	return &Notifier{email: email, sms: sms, log: log.Named("notification")}
}

// NotifyMutualMatch attempts both deliveries and joins their errors.
func (n *Notifier) NotifyMutualMatch(ctx context.Context, a, b *profile.User, source Source) error {
	return errors.Join(
		n.notify(ctx, a, b, source),
		n.notify(ctx, b, a, source),
	)
}

func (n *Notifier) notify(ctx context.Context, to, partner *profile.User, source Source) error {
	text, html, err := renderMutualMatch(mutualMatchData{
		Name:        to.DisplayName(),
		PartnerName: partner.DisplayName(),
		Source:      source,
	})
	if err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}

	channel := channelFor(to)
	switch channel {
	case "":
		return nil
	case "sms":
		err = n.sms.SendSMS(ctx, &SMSNotification{To: to.PhoneNumber, Message: text})
	default:
		err = n.email.SendEmail(ctx, &EmailNotification{
			To:      to.Email,
			ToName:  to.FirstName,
			Subject: mutualMatchSubject,
			Body:    text,
			HTML:    html,
		})
	}

	if err != nil {
		notificationsSent.WithLabelValues(channel, "failure").Inc()
		return fmt.Errorf("notify %s via %s: %w", to.ID, channel, err)
	}
	notificationsSent.WithLabelValues(channel, "success").Inc()
	n.log.Info("mutual match notification sent",
		zap.String("user_id", to.ID.String()),
		zap.String("channel", channel),
		zap.String("source", string(source)),
	)
	return nil
}

// channelFor returns "" when the user opted out. An SMS preference without
// a phone number falls back to email.
func channelFor(u *profile.User) string {
	switch u.ContactPreference {
	case profile.ContactNone:
		return ""
	case profile.ContactSMS:
		if u.PhoneNumber != "" {
			return "sms"
		}
	}
	return "email"
}
