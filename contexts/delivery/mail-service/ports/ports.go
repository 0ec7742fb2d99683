package ports

import (
	"context"
	"time"

	"beacon/contexts/delivery/mail-service/domain/entities"
	"beacon/internal/shared/delivery"
)

type Repository interface {
	CreateMessage(ctx context.Context, message entities.Message) error
	GetMessage(ctx context.Context, messageID string) (entities.Message, error)
	ListMessagesByStatus(ctx context.Context, status entities.MessageStatus, limit int) ([]entities.Message, error)
	// ClaimDue atomically selects and claims up to limit messages that are
	// pending, due at now, and below the attempt ceiling, ordered oldest
	// due first. A claimed row is invisible to concurrent claims until the
	// dispatcher writes its final status back.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]entities.Message, error)
	UpdateMessage(ctx context.Context, message entities.Message) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, req delivery.Request) delivery.Outcome
}
