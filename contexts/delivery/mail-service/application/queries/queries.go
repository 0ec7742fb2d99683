package queries

import (
	"context"
	"log/slog"
	"strings"

	application "beacon/contexts/delivery/mail-service/application"
	"beacon/contexts/delivery/mail-service/domain/entities"
	domainerrors "beacon/contexts/delivery/mail-service/domain/errors"
	"beacon/contexts/delivery/mail-service/ports"
)

const defaultListLimit = 50

type UseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (uc UseCase) Get(ctx context.Context, messageID string) (entities.Message, error) {
	message, err := uc.Repository.GetMessage(ctx, strings.TrimSpace(messageID))
	if err != nil {
		return entities.Message{}, err
	}
	return message, nil
}

func (uc UseCase) ListByStatus(ctx context.Context, status string, limit int) ([]entities.Message, error) {
	logger := application.ResolveLogger(uc.Logger)
	normalized := entities.MessageStatus(strings.ToLower(strings.TrimSpace(status)))
	switch normalized {
	case entities.MessageStatusPending, entities.MessageStatusSending,
		entities.MessageStatusSent, entities.MessageStatusFailed:
	default:
		logger.Warn("mail list invalid status filter",
			"event", "mail_list_invalid_status_filter",
			"module", "delivery/mail-service",
			"layer", "application",
			"status", status,
		)
		return nil, domainerrors.ErrInvalidStatusFilter
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return uc.Repository.ListMessagesByStatus(ctx, normalized, limit)
}
