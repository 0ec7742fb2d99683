package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "beacon/contexts/delivery/webhook-service/application"
	"beacon/contexts/delivery/webhook-service/application/commands"
	"beacon/contexts/delivery/webhook-service/application/fanout"
	"beacon/contexts/delivery/webhook-service/application/inbound"
	"beacon/contexts/delivery/webhook-service/application/queries"
	"beacon/contexts/delivery/webhook-service/domain/entities"
	httptransport "beacon/contexts/delivery/webhook-service/transport/http"
)

type Handler struct {
	Commands   commands.UseCase
	Queries    queries.UseCase
	Dispatcher *fanout.Dispatcher
	Verifier   inbound.Verifier
	Logger     *slog.Logger
}

func (h Handler) RegisterHandler(
	ctx context.Context,
	tenantID string,
	req httptransport.RegisterWebhookRequest,
) (httptransport.WebhookCreatedResponse, error) {
	subscription, err := h.Commands.Register(ctx, commands.RegisterCommand{
		TenantID: tenantID,
		URL:      req.URL,
		Events:   req.Events,
	})
	if err != nil {
		return httptransport.WebhookCreatedResponse{}, err
	}
	return httptransport.WebhookCreatedResponse{
		ID:       subscription.ID,
		Secret:   subscription.Secret,
		URL:      subscription.URL,
		Events:   subscription.Events,
		IsActive: subscription.IsActive,
	}, nil
}

func (h Handler) GetHandler(
	ctx context.Context,
	tenantID string,
	subscriptionID string,
) (httptransport.WebhookDTO, error) {
	subscription, err := h.Queries.Get(ctx, tenantID, subscriptionID)
	if err != nil {
		return httptransport.WebhookDTO{}, err
	}
	return webhookDTO(subscription), nil
}

func (h Handler) ListHandler(ctx context.Context, tenantID string) (httptransport.ListWebhooksResponse, error) {
	subscriptions, err := h.Queries.ListByTenant(ctx, tenantID)
	if err != nil {
		return httptransport.ListWebhooksResponse{}, err
	}
	dtos := make([]httptransport.WebhookDTO, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		dtos = append(dtos, webhookDTO(subscription))
	}
	return httptransport.ListWebhooksResponse{Webhooks: dtos}, nil
}

func (h Handler) RotateSecretHandler(
	ctx context.Context,
	tenantID string,
	subscriptionID string,
) (httptransport.RotateSecretResponse, error) {
	subscription, err := h.Commands.RotateSecret(ctx, tenantID, subscriptionID)
	if err != nil {
		return httptransport.RotateSecretResponse{}, err
	}
	return httptransport.RotateSecretResponse{
		ID:     subscription.ID,
		Secret: subscription.Secret,
	}, nil
}

func (h Handler) SetStatusHandler(
	ctx context.Context,
	tenantID string,
	subscriptionID string,
	req httptransport.SetStatusRequest,
) (httptransport.WebhookDTO, error) {
	subscription, err := h.Commands.SetActive(ctx, tenantID, subscriptionID, req.IsActive)
	if err != nil {
		return httptransport.WebhookDTO{}, err
	}
	return webhookDTO(subscription), nil
}

func (h Handler) RemoveHandler(ctx context.Context, tenantID, subscriptionID string) error {
	return h.Commands.Remove(ctx, tenantID, subscriptionID)
}

// TriggerHandler starts the fan-out and always reports acceptance. A
// registry failure is logged here; fan-out is best-effort notification and
// the triggering request path never fails because of it.
func (h Handler) TriggerHandler(
	ctx context.Context,
	tenantID string,
	req httptransport.TriggerEventRequest,
) httptransport.TriggerEventResponse {
	logger := application.ResolveLogger(h.Logger)
	if err := h.Dispatcher.Dispatch(ctx, tenantID, req.Event, req.Payload); err != nil {
		logger.Error("webhook trigger fan-out aborted",
			"event", "webhook_trigger_aborted",
			"module", "delivery/webhook-service",
			"layer", "adapter",
			"tenant_id", tenantID,
			"event_name", req.Event,
			"error", err.Error(),
		)
	}
	return httptransport.TriggerEventResponse{Accepted: true}
}

// InboundHandler verifies a received webhook body. The boolean is the
// verdict; the error reports registry trouble only.
func (h Handler) InboundHandler(
	ctx context.Context,
	subscriptionID string,
	body []byte,
	signatureHeader string,
) (bool, error) {
	return h.Verifier.VerifyRequest(ctx, subscriptionID, body, signatureHeader)
}

func webhookDTO(subscription entities.Subscription) httptransport.WebhookDTO {
	dto := httptransport.WebhookDTO{
		ID:           subscription.ID,
		URL:          subscription.URL,
		Events:       subscription.Events,
		IsActive:     subscription.IsActive,
		FailureCount: subscription.FailureCount,
	}
	if subscription.LastTriggeredAt != nil {
		dto.LastTriggeredAt = subscription.LastTriggeredAt.Format(time.RFC3339)
	}
	return dto
}
