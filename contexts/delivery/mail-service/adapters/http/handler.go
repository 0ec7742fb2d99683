package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "beacon/contexts/delivery/mail-service/application"
	"beacon/contexts/delivery/mail-service/application/commands"
	"beacon/contexts/delivery/mail-service/application/queries"
	"beacon/contexts/delivery/mail-service/domain/entities"
	domainerrors "beacon/contexts/delivery/mail-service/domain/errors"
	httptransport "beacon/contexts/delivery/mail-service/transport/http"
)

type Handler struct {
	Commands commands.UseCase
	Queries  queries.UseCase
	Logger   *slog.Logger
}

func (h Handler) EnqueueHandler(
	ctx context.Context,
	req httptransport.EnqueueMessageRequest,
) (httptransport.EnqueueMessageResponse, error) {
	logger := application.ResolveLogger(h.Logger)

	cmd := commands.EnqueueCommand{
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
	}
	if req.ScheduledFor != "" {
		scheduledFor, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err != nil {
			return httptransport.EnqueueMessageResponse{}, domainerrors.ErrInvalidMessageInput
		}
		cmd.ScheduledFor = &scheduledFor
	}

	message, err := h.Commands.Enqueue(ctx, cmd)
	if err != nil {
		return httptransport.EnqueueMessageResponse{}, err
	}
	logger.Info("mail http enqueue completed",
		"event", "mail_http_enqueue_completed",
		"module", "delivery/mail-service",
		"layer", "adapter",
		"message_id", message.ID,
	)
	return httptransport.EnqueueMessageResponse{
		MessageID: message.ID,
		Status:    string(message.Status),
	}, nil
}

func (h Handler) GetMessageHandler(ctx context.Context, messageID string) (httptransport.MessageDTO, error) {
	message, err := h.Queries.Get(ctx, messageID)
	if err != nil {
		return httptransport.MessageDTO{}, err
	}
	return messageDTO(message), nil
}

func (h Handler) ListMessagesHandler(
	ctx context.Context,
	status string,
	limit int,
) (httptransport.ListMessagesResponse, error) {
	messages, err := h.Queries.ListByStatus(ctx, status, limit)
	if err != nil {
		return httptransport.ListMessagesResponse{}, err
	}
	dtos := make([]httptransport.MessageDTO, 0, len(messages))
	for _, message := range messages {
		dtos = append(dtos, messageDTO(message))
	}
	return httptransport.ListMessagesResponse{Messages: dtos}, nil
}

func messageDTO(message entities.Message) httptransport.MessageDTO {
	dto := httptransport.MessageDTO{
		ID:           message.ID,
		Recipient:    message.Recipient,
		Subject:      message.Subject,
		Status:       string(message.Status),
		Attempts:     message.Attempts,
		LastError:    message.LastError,
		ScheduledFor: message.ScheduledFor.Format(time.RFC3339),
	}
	if message.SentAt != nil {
		dto.SentAt = message.SentAt.Format(time.RFC3339)
	}
	return dto
}
