package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/events"
)

// NotificationService handles emitting notifications for account events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventClientInvited, n.handleClientInvited)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPortalAccessChanged, n.handlePortalAccessChanged)
	n.dispatcher.Subscribe(events.EventStaffRoleChanged, n.handleStaffRoleChanged)
}

func (n *NotificationService) handleClientInvited(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ClientInvitedPayload)
	n.logger.Info("ClientInvited", zap.String("account_id", event.AccountID), zap.Time("expires_at", payload.ExpiresAt))
	n.sendEmailNotificationStub(ctx, event, payload.Email, n.link("/activate", payload.Token))
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.PasswordResetRequestedPayload)
	n.logger.Info("PasswordResetRequested", zap.String("account_id", event.AccountID), zap.String("kind", string(payload.Kind)))
	n.sendEmailNotificationStub(ctx, event, payload.Email, n.link("/reset-password", payload.Token))
	return nil
}

func (n *NotificationService) handlePortalAccessChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("PortalAccessChanged", zap.String("account_id", event.AccountID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStaffRoleChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("StaffRoleChanged", zap.String("account_id", event.AccountID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) link(path, token string) string {
	return strings.TrimRight(n.cfg.PortalURL, "/") + path + "?token=" + token
}

// The link carries a live credential, so it is only written at debug level.
func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to, link string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("event_type", string(event.Type)),
		zap.String("link", link))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("account_id", event.AccountID),
		zap.String("event_type", string(event.Type)))
}
