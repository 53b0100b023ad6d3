package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/mail"
)

// NotificationService handles outbound notifications for domain events. Its
// main job is delivering password-reset codes by mail.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mail.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender mail.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordResetCompleted, n.handleLogged)
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleLogged)
	n.dispatcher.Subscribe(events.EventUserDeleted, n.handleLogged)
	n.dispatcher.Subscribe(events.EventJobCreated, n.handleLogged)
	n.dispatcher.Subscribe(events.EventJobUpdated, n.handleLogged)
	n.dispatcher.Subscribe(events.EventJobDeleted, n.handleLogged)
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return nil
	}

	body := fmt.Sprintf("Your password reset code is: %s", payload.ResetCode)
	if err := n.sender.Send(ctx, payload.Email, "Password Reset Code", body); err != nil {
		n.logger.Error("failed to send reset code email",
			zap.String("email", payload.Email),
			zap.Error(err))
		return err
	}

	n.logger.Info("reset code email sent", zap.String("email", payload.Email))
	return nil
}

func (n *NotificationService) handleLogged(_ context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	return nil
}
