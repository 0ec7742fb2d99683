package fanout

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	application "beacon/contexts/delivery/webhook-service/application"
	"beacon/contexts/delivery/webhook-service/domain/entities"
	domainerrors "beacon/contexts/delivery/webhook-service/domain/errors"
	"beacon/contexts/delivery/webhook-service/ports"
	"beacon/internal/shared/delivery"
	"beacon/internal/shared/signature"
)

const (
	HeaderSignature = "X-Beacon-Signature"
	HeaderWebhookID = "X-Beacon-Webhook-Id"

	defaultUserAgent   = "beacon-webhooks/1.0"
	defaultMaxInFlight = 8
)

type envelope struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

// Dispatcher fans one tenant event out to every matching subscription.
// Each subscriber is an independent failure domain: deliveries run
// concurrently on a bounded pool, one endpoint's failure never touches
// another's, and nothing is retried.
type Dispatcher struct {
	Registry    ports.Repository
	Deliverer   ports.Deliverer
	Clock       ports.Clock
	MaxInFlight int
	Timeout     time.Duration
	UserAgent   string
	Logger      *slog.Logger

	wg sync.WaitGroup
}

// Dispatch resolves the fan-out set and starts delivery in the background.
// It returns once all attempts have been initiated; callers never block on
// delivery confirmation. A registry error aborts the whole fan-out and is
// returned for logging only.
func (d *Dispatcher) Dispatch(ctx context.Context, tenantID, eventName string, payload any) error {
	logger := application.ResolveLogger(d.Logger)

	tenantID = strings.TrimSpace(tenantID)
	eventName = strings.TrimSpace(eventName)
	if tenantID == "" || eventName == "" {
		return domainerrors.ErrInvalidEventName
	}

	subscriptions, err := d.Registry.ListActiveMatching(ctx, tenantID, eventName)
	if err != nil {
		logger.Error("webhook fan-out registry lookup failed",
			"event", "webhook_fanout_registry_failed",
			"module", "delivery/webhook-service",
			"layer", "application",
			"tenant_id", tenantID,
			"event_name", eventName,
			"error", err.Error(),
		)
		return err
	}
	if len(subscriptions) == 0 {
		logger.Debug("webhook fan-out matched no subscriptions",
			"event", "webhook_fanout_no_match",
			"module", "delivery/webhook-service",
			"layer", "application",
			"tenant_id", tenantID,
			"event_name", eventName,
		)
		return nil
	}

	now := d.now()
	body, err := json.Marshal(envelope{
		Event:     eventName,
		Timestamp: now.Format(time.RFC3339),
		Data:      payload,
	})
	if err != nil {
		logger.Error("webhook fan-out payload encode failed",
			"event", "webhook_fanout_encode_failed",
			"module", "delivery/webhook-service",
			"layer", "application",
			"tenant_id", tenantID,
			"event_name", eventName,
			"error", err.Error(),
		)
		return err
	}

	// In-flight deliveries outlive the triggering request; cancellation of
	// the caller's context must not abort them mid-send.
	deliveryCtx := context.WithoutCancel(ctx)

	limit := d.MaxInFlight
	if limit <= 0 {
		limit = defaultMaxInFlight
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		group := new(errgroup.Group)
		group.SetLimit(limit)
		for _, subscription := range subscriptions {
			subscription := subscription
			group.Go(func() error {
				d.deliverOne(deliveryCtx, subscription, eventName, body, now)
				return nil
			})
		}
		_ = group.Wait()
	}()

	logger.Info("webhook fan-out started",
		"event", "webhook_fanout_started",
		"module", "delivery/webhook-service",
		"layer", "application",
		"tenant_id", tenantID,
		"event_name", eventName,
		"subscription_count", len(subscriptions),
	)
	return nil
}

// Drain waits for outstanding deliveries. It exists for shutdown and tests
// only; correctness never depends on joining the fan-out.
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}

func (d *Dispatcher) deliverOne(
	ctx context.Context,
	subscription entities.Subscription,
	eventName string,
	body []byte,
	triggeredAt time.Time,
) {
	logger := application.ResolveLogger(d.Logger)

	userAgent := d.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	outcome := d.Deliverer.Deliver(ctx, delivery.Request{
		URL: subscription.URL,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"User-Agent":    userAgent,
			HeaderSignature: signature.Sign(body, []byte(subscription.Secret)),
			HeaderWebhookID: subscription.ID,
		},
		Body:    body,
		Timeout: d.Timeout,
	})

	if err := d.Registry.MarkTriggered(ctx, subscription.ID, triggeredAt); err != nil {
		logger.Error("webhook trigger bookkeeping failed",
			"event", "webhook_mark_triggered_failed",
			"module", "delivery/webhook-service",
			"layer", "application",
			"subscription_id", subscription.ID,
			"error", err.Error(),
		)
	}

	switch {
	case outcome.Err != "":
		// Only transport-level failures count against the subscription;
		// a reachable endpoint answering non-2xx does not.
		if err := d.Registry.RecordDeliveryFailure(ctx, subscription.ID); err != nil {
			logger.Error("webhook failure bookkeeping failed",
				"event", "webhook_record_failure_failed",
				"module", "delivery/webhook-service",
				"layer", "application",
				"subscription_id", subscription.ID,
				"error", err.Error(),
			)
		}
		logger.Warn("webhook delivery transport failure",
			"event", "webhook_delivery_transport_failed",
			"module", "delivery/webhook-service",
			"layer", "application",
			"subscription_id", subscription.ID,
			"event_name", eventName,
			"error", outcome.Err,
		)
	case !outcome.Success:
		logger.Warn("webhook delivery rejected by endpoint",
			"event", "webhook_delivery_rejected",
			"module", "delivery/webhook-service",
			"layer", "application",
			"subscription_id", subscription.ID,
			"event_name", eventName,
			"status_code", outcome.StatusCode,
			"response_excerpt", outcome.ResponseExcerpt,
		)
	default:
		logger.Info("webhook delivered",
			"event", "webhook_delivered",
			"module", "delivery/webhook-service",
			"layer", "application",
			"subscription_id", subscription.ID,
			"event_name", eventName,
			"status_code", outcome.StatusCode,
		)
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Clock != nil {
		return d.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
