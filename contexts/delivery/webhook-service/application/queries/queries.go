package queries

import (
	"context"
	"log/slog"
	"strings"

	"beacon/contexts/delivery/webhook-service/domain/entities"
	domainerrors "beacon/contexts/delivery/webhook-service/domain/errors"
	"beacon/contexts/delivery/webhook-service/ports"
)

type UseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (uc UseCase) Get(ctx context.Context, tenantID, subscriptionID string) (entities.Subscription, error) {
	subscription, err := uc.Repository.GetSubscription(ctx, strings.TrimSpace(subscriptionID))
	if err != nil {
		return entities.Subscription{}, err
	}
	if subscription.TenantID != strings.TrimSpace(tenantID) {
		return entities.Subscription{}, domainerrors.ErrSubscriptionNotFound
	}
	return subscription, nil
}

func (uc UseCase) ListByTenant(ctx context.Context, tenantID string) ([]entities.Subscription, error) {
	return uc.Repository.ListByTenant(ctx, strings.TrimSpace(tenantID))
}
