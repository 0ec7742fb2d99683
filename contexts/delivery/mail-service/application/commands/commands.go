package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "beacon/contexts/delivery/mail-service/application"
	"beacon/contexts/delivery/mail-service/domain/entities"
	domainerrors "beacon/contexts/delivery/mail-service/domain/errors"
	"beacon/contexts/delivery/mail-service/ports"
)

type EnqueueCommand struct {
	Recipient    string
	Subject      string
	Body         string
	ScheduledFor *time.Time
}

type UseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Enqueue validates the request and persists a pending message. It returns
// immediately; delivery happens on a later dispatcher tick and is observable
// only through the message status.
func (uc UseCase) Enqueue(ctx context.Context, cmd EnqueueCommand) (entities.Message, error) {
	logger := application.ResolveLogger(uc.Logger)
	recipient := strings.TrimSpace(cmd.Recipient)
	subject := strings.TrimSpace(cmd.Subject)
	if recipient == "" || !strings.Contains(recipient, "@") || subject == "" {
		logger.Warn("mail enqueue invalid input",
			"event", "mail_enqueue_invalid_input",
			"module", "delivery/mail-service",
			"layer", "application",
			"has_recipient", recipient != "",
			"has_subject", subject != "",
		)
		return entities.Message{}, domainerrors.ErrInvalidMessageInput
	}

	now := uc.now()
	scheduledFor := now
	if cmd.ScheduledFor != nil {
		scheduledFor = cmd.ScheduledFor.UTC()
	}

	messageID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Error("mail enqueue id generation failed",
			"event", "mail_enqueue_id_generation_failed",
			"module", "delivery/mail-service",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.Message{}, err
	}

	message := entities.Message{
		ID:           messageID,
		Recipient:    recipient,
		Subject:      subject,
		Body:         cmd.Body,
		Status:       entities.MessageStatusPending,
		ScheduledFor: scheduledFor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Repository.CreateMessage(ctx, message); err != nil {
		logger.Error("mail enqueue create failed",
			"event", "mail_enqueue_create_failed",
			"module", "delivery/mail-service",
			"layer", "application",
			"message_id", message.ID,
			"error", err.Error(),
		)
		return entities.Message{}, err
	}
	logger.Info("mail message enqueued",
		"event", "mail_message_enqueued",
		"module", "delivery/mail-service",
		"layer", "application",
		"message_id", message.ID,
		"scheduled_for", scheduledFor.Format(time.RFC3339),
	)
	return message, nil
}

func (uc UseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
