package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
)

// AuditService records security-relevant account events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuditConfig
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.AuditConfig) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to account events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleAuditLog)
	a.dispatcher.Subscribe(events.EventPasswordChanged, a.handleAuditLog)
	a.dispatcher.Subscribe(events.EventRoleChanged, a.handleSensitiveChange)
	a.dispatcher.Subscribe(events.EventTokenRevoked, a.handleAuditLog)
	a.dispatcher.Subscribe(events.EventUserDeleted, a.handleSensitiveChange)
}

func (a *AuditService) handleUserRegistered(ctx context.Context, event events.Event) error {
	a.logger.Info("audit", zap.String("event", string(event.Type)), zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	a.sendWelcomeEmailStub(ctx, event)
	return nil
}

func (a *AuditService) handleAuditLog(_ context.Context, event events.Event) error {
	a.logger.Info("audit", zap.String("event", string(event.Type)), zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

// handleSensitiveChange additionally notifies the external webhook, if any.
func (a *AuditService) handleSensitiveChange(ctx context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	a.sendWebhookStub(ctx, event)
	return nil
}

func (a *AuditService) sendWelcomeEmailStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.EmailFrom) == "" {
		return
	}
	a.logger.Debug("sendWelcomeEmailStub",
		zap.String("from", a.cfg.EmailFrom),
		zap.String("user_id", event.UserID))
}

func (a *AuditService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("sendWebhookStub",
		zap.String("url", a.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
