package ports

import (
	"context"
	"time"

	"beacon/contexts/delivery/webhook-service/domain/entities"
	"beacon/internal/shared/delivery"
)

type Repository interface {
	CreateSubscription(ctx context.Context, subscription entities.Subscription) error
	GetSubscription(ctx context.Context, subscriptionID string) (entities.Subscription, error)
	ListByTenant(ctx context.Context, tenantID string) ([]entities.Subscription, error)
	// ListActiveMatching resolves the fan-out set: active subscriptions of
	// the tenant whose event patterns contain eventName or the wildcard.
	ListActiveMatching(ctx context.Context, tenantID string, eventName string) ([]entities.Subscription, error)
	UpdateSubscription(ctx context.Context, subscription entities.Subscription) error
	DeleteSubscription(ctx context.Context, subscriptionID string) error
	// RecordDeliveryFailure bumps the failure counter atomically so
	// concurrent fan-outs never lose increments.
	RecordDeliveryFailure(ctx context.Context, subscriptionID string) error
	MarkTriggered(ctx context.Context, subscriptionID string, at time.Time) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type SecretGenerator interface {
	NewSecret(ctx context.Context) (string, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, req delivery.Request) delivery.Outcome
}
