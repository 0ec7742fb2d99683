package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	application "beacon/contexts/delivery/mail-service/application"
	"beacon/contexts/delivery/mail-service/domain/entities"
	"beacon/contexts/delivery/mail-service/ports"
	"beacon/internal/shared/delivery"
)

const defaultBatchSize = 100

type mailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Dispatcher drains the persisted mail queue. One tick claims a batch of
// due pending messages, posts each to the mail provider endpoint, and
// writes the resulting status back. Ticks are serialized: a tick that
// starts while another is in flight is a no-op, so a message can never be
// claimed by two overlapping batches in the same process.
type Dispatcher struct {
	Repository ports.Repository
	Deliverer  ports.Deliverer
	Clock      ports.Clock
	Endpoint   string
	APIKey     string
	BatchSize  int
	Timeout    time.Duration
	Logger     *slog.Logger

	mu sync.Mutex
}

// Start drives RunOnce on a fixed period until ctx is done. Tick errors are
// already logged by RunOnce and never stop the loop.
func (d *Dispatcher) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = d.RunOnce(ctx)
		}
	}
}

func (d *Dispatcher) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(d.Logger)
	if !d.mu.TryLock() {
		logger.Warn("mail dispatch tick skipped, previous tick still in flight",
			"event", "mail_dispatch_tick_overlap_skipped",
			"module", "delivery/mail-service",
			"layer", "worker",
		)
		return nil
	}
	defer d.mu.Unlock()

	limit := d.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}
	now := d.now()

	batch, err := d.Repository.ClaimDue(ctx, now, limit)
	if err != nil {
		logger.Error("mail dispatch claim failed",
			"event", "mail_dispatch_claim_failed",
			"module", "delivery/mail-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	for _, message := range batch {
		d.send(ctx, message)
	}
	logger.Debug("mail dispatch tick completed",
		"event", "mail_dispatch_tick_completed",
		"module", "delivery/mail-service",
		"layer", "worker",
		"batch_size", len(batch),
	)
	return nil
}

// send performs one delivery attempt and records the outcome. Failures are
// contained to the message; they never abort the batch.
func (d *Dispatcher) send(ctx context.Context, message entities.Message) {
	logger := application.ResolveLogger(d.Logger)

	body, err := json.Marshal(mailPayload{
		To:      message.Recipient,
		Subject: message.Subject,
		Body:    message.Body,
	})
	if err != nil {
		d.recordFailure(ctx, message, err.Error())
		return
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if d.APIKey != "" {
		headers["Authorization"] = "Bearer " + d.APIKey
	}
	outcome := d.Deliverer.Deliver(ctx, delivery.Request{
		URL:     d.Endpoint,
		Headers: headers,
		Body:    body,
		Timeout: d.Timeout,
	})

	if outcome.Success {
		now := d.now()
		message.Status = entities.MessageStatusSent
		message.SentAt = &now
		message.UpdatedAt = now
		if err := d.Repository.UpdateMessage(ctx, message); err != nil {
			logger.Error("mail dispatch sent-state write failed",
				"event", "mail_dispatch_sent_write_failed",
				"module", "delivery/mail-service",
				"layer", "worker",
				"message_id", message.ID,
				"error", err.Error(),
			)
			return
		}
		logger.Info("mail message sent",
			"event", "mail_message_sent",
			"module", "delivery/mail-service",
			"layer", "worker",
			"message_id", message.ID,
			"attempts", message.Attempts+1,
		)
		return
	}

	reason := outcome.Err
	if reason == "" {
		reason = fmt.Sprintf("unexpected status %d: %s", outcome.StatusCode, outcome.ResponseExcerpt)
	}
	d.recordFailure(ctx, message, reason)
}

func (d *Dispatcher) recordFailure(ctx context.Context, message entities.Message, reason string) {
	logger := application.ResolveLogger(d.Logger)
	now := d.now()

	message.Attempts++
	message.LastError = reason
	message.UpdatedAt = now
	if message.Attempts >= entities.MaxAttempts {
		message.Status = entities.MessageStatusFailed
	} else {
		message.Status = entities.MessageStatusPending
	}
	if err := d.Repository.UpdateMessage(ctx, message); err != nil {
		logger.Error("mail dispatch failure-state write failed",
			"event", "mail_dispatch_failure_write_failed",
			"module", "delivery/mail-service",
			"layer", "worker",
			"message_id", message.ID,
			"error", err.Error(),
		)
		return
	}
	logger.Warn("mail delivery attempt failed",
		"event", "mail_delivery_attempt_failed",
		"module", "delivery/mail-service",
		"layer", "worker",
		"message_id", message.ID,
		"attempts", message.Attempts,
		"status", string(message.Status),
		"error", reason,
	)
}

func (d *Dispatcher) now() time.Time {
	if d.Clock != nil {
		return d.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
