package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/mente-aberta-api/internal/config"
	"github.com/spec-kit/mente-aberta-api/internal/events"
)

// NotificationService turns domain events into outbound email and webhook notifications.
// Delivery is stubbed: messages are logged.
type NotificationService struct {
	logger   *zap.Logger
	cfg      config.NotificationConfig
	resetURL string
}

// NotificationEvents lists the event types that produce a notification.
var NotificationEvents = []events.EventType{
	events.EventPasswordResetRequested,
	events.EventInviteRedeemed,
	events.EventFeedbackSubmitted,
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.Config) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		logger:   logger,
		cfg:      cfg.Notification,
		resetURL: cfg.Auth.PasswordResetURL,
	}
}

// Handle delivers the notification for one event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventPasswordResetRequested:
		return n.handlePasswordResetRequested(ctx, event)
	case events.EventInviteRedeemed:
		return n.handleInviteRedeemed(ctx, event)
	case events.EventFeedbackSubmitted:
		return n.handleFeedbackSubmitted(ctx, event)
	default:
		return fmt.Errorf("no notification for event %s", event.Type)
	}
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	link, err := n.resetLink(payload.Token)
	if err != nil {
		return err
	}
	n.sendEmailNotificationStub(ctx, event, payload.Email, "Reset your password", link)
	return nil
}

func (n *NotificationService) handleInviteRedeemed(ctx context.Context, event events.Event) error {
	n.logger.Info("InviteRedeemed", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleFeedbackSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("FeedbackSubmitted", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) resetLink(token string) (string, error) {
	u, err := url.Parse(n.resetURL)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to, subject, body string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Info("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_len", len(body)),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
