package commands

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	application "beacon/contexts/delivery/webhook-service/application"
	"beacon/contexts/delivery/webhook-service/domain/entities"
	domainerrors "beacon/contexts/delivery/webhook-service/domain/errors"
	"beacon/contexts/delivery/webhook-service/ports"
)

type RegisterCommand struct {
	TenantID string
	URL      string
	Events   []string
}

type UseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Secrets    ports.SecretGenerator
	Logger     *slog.Logger
}

// Register validates and persists a new subscription. The generated secret
// is part of the returned entity; this is the only code path besides
// RotateSecret that may hand it out.
func (uc UseCase) Register(ctx context.Context, cmd RegisterCommand) (entities.Subscription, error) {
	logger := application.ResolveLogger(uc.Logger)

	tenantID := strings.TrimSpace(cmd.TenantID)
	endpoint := strings.TrimSpace(cmd.URL)
	events := normalizeEvents(cmd.Events)
	if tenantID == "" || len(events) == 0 || !validEndpoint(endpoint) {
		logger.Warn("webhook register invalid input",
			"event", "webhook_register_invalid_input",
			"module", "delivery/webhook-service",
			"layer", "application",
			"tenant_id", tenantID,
			"has_url", endpoint != "",
			"event_count", len(events),
		)
		return entities.Subscription{}, domainerrors.ErrInvalidSubscriptionInput
	}

	subscriptionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Subscription{}, err
	}
	secret, err := uc.Secrets.NewSecret(ctx)
	if err != nil {
		logger.Error("webhook register secret generation failed",
			"event", "webhook_register_secret_generation_failed",
			"module", "delivery/webhook-service",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.Subscription{}, err
	}

	now := uc.Clock.Now().UTC()
	subscription := entities.Subscription{
		ID:        subscriptionID,
		TenantID:  tenantID,
		URL:       endpoint,
		Secret:    secret,
		Events:    events,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Repository.CreateSubscription(ctx, subscription); err != nil {
		logger.Error("webhook register create failed",
			"event", "webhook_register_create_failed",
			"module", "delivery/webhook-service",
			"layer", "application",
			"subscription_id", subscription.ID,
			"tenant_id", tenantID,
			"error", err.Error(),
		)
		return entities.Subscription{}, err
	}
	logger.Info("webhook subscription registered",
		"event", "webhook_subscription_registered",
		"module", "delivery/webhook-service",
		"layer", "application",
		"subscription_id", subscription.ID,
		"tenant_id", tenantID,
		"event_count", len(events),
	)
	return subscription, nil
}

// RotateSecret replaces the shared secret. The previous secret stops
// verifying immediately; callers coordinate rotation with the receiver.
func (uc UseCase) RotateSecret(ctx context.Context, tenantID, subscriptionID string) (entities.Subscription, error) {
	logger := application.ResolveLogger(uc.Logger)
	subscription, err := uc.ownedSubscription(ctx, tenantID, subscriptionID)
	if err != nil {
		return entities.Subscription{}, err
	}

	secret, err := uc.Secrets.NewSecret(ctx)
	if err != nil {
		return entities.Subscription{}, err
	}
	subscription.Secret = secret
	subscription.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Repository.UpdateSubscription(ctx, subscription); err != nil {
		return entities.Subscription{}, err
	}
	logger.Info("webhook secret rotated",
		"event", "webhook_secret_rotated",
		"module", "delivery/webhook-service",
		"layer", "application",
		"subscription_id", subscription.ID,
		"tenant_id", subscription.TenantID,
	)
	return subscription, nil
}

func (uc UseCase) SetActive(ctx context.Context, tenantID, subscriptionID string, active bool) (entities.Subscription, error) {
	logger := application.ResolveLogger(uc.Logger)
	subscription, err := uc.ownedSubscription(ctx, tenantID, subscriptionID)
	if err != nil {
		return entities.Subscription{}, err
	}

	subscription.IsActive = active
	subscription.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Repository.UpdateSubscription(ctx, subscription); err != nil {
		return entities.Subscription{}, err
	}
	logger.Info("webhook subscription status changed",
		"event", "webhook_subscription_status_changed",
		"module", "delivery/webhook-service",
		"layer", "application",
		"subscription_id", subscription.ID,
		"tenant_id", subscription.TenantID,
		"is_active", active,
	)
	return subscription, nil
}

func (uc UseCase) Remove(ctx context.Context, tenantID, subscriptionID string) error {
	logger := application.ResolveLogger(uc.Logger)
	subscription, err := uc.ownedSubscription(ctx, tenantID, subscriptionID)
	if err != nil {
		return err
	}
	if err := uc.Repository.DeleteSubscription(ctx, subscription.ID); err != nil {
		return err
	}
	logger.Info("webhook subscription removed",
		"event", "webhook_subscription_removed",
		"module", "delivery/webhook-service",
		"layer", "application",
		"subscription_id", subscription.ID,
		"tenant_id", subscription.TenantID,
	)
	return nil
}

// ownedSubscription loads the subscription and hides it from tenants that
// do not own it, so cross-tenant probing cannot distinguish "not yours"
// from "does not exist".
func (uc UseCase) ownedSubscription(ctx context.Context, tenantID, subscriptionID string) (entities.Subscription, error) {
	subscription, err := uc.Repository.GetSubscription(ctx, strings.TrimSpace(subscriptionID))
	if err != nil {
		return entities.Subscription{}, err
	}
	if subscription.TenantID != strings.TrimSpace(tenantID) {
		return entities.Subscription{}, domainerrors.ErrSubscriptionNotFound
	}
	return subscription, nil
}

func normalizeEvents(events []string) []string {
	normalized := make([]string, 0, len(events))
	seen := make(map[string]bool, len(events))
	for _, event := range events {
		event = strings.TrimSpace(event)
		if event == "" || seen[event] {
			continue
		}
		seen[event] = true
		normalized = append(normalized, event)
	}
	return normalized
}

func validEndpoint(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
