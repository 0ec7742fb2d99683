package inbound

import (
	"context"
	"log/slog"
	"strings"

	application "beacon/contexts/delivery/webhook-service/application"
	"beacon/contexts/delivery/webhook-service/ports"
	"beacon/internal/shared/signature"
)

// Verifier authenticates webhooks received from external senders against
// the stored subscription secret. Verification is constant time; callers
// must reject processing when it reports invalid.
type Verifier struct {
	Registry ports.Repository
	Logger   *slog.Logger
}

// VerifyRequest loads the subscription and checks the claimed signature
// over the raw body bytes. It returns (false, nil) for a well-formed but
// unauthentic request; errors are reserved for registry failures.
func (v Verifier) VerifyRequest(
	ctx context.Context,
	subscriptionID string,
	body []byte,
	signatureHeader string,
) (bool, error) {
	logger := application.ResolveLogger(v.Logger)

	subscription, err := v.Registry.GetSubscription(ctx, strings.TrimSpace(subscriptionID))
	if err != nil {
		return false, err
	}

	valid := signature.Verify(body, strings.TrimSpace(signatureHeader), []byte(subscription.Secret))
	if !valid {
		logger.Warn("inbound webhook signature rejected",
			"event", "webhook_inbound_signature_rejected",
			"module", "delivery/webhook-service",
			"layer", "application",
			"subscription_id", subscription.ID,
		)
	}
	return valid, nil
}

// VerifySignature is the bare primitive for callers that already hold the
// secret.
func VerifySignature(body []byte, signatureHeader, secret string) bool {
	return signature.Verify(body, strings.TrimSpace(signatureHeader), []byte(secret))
}
