package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"beacon/contexts/delivery/mail-service/adapters/memory"
	"beacon/contexts/delivery/mail-service/domain/entities"
	domainerrors "beacon/contexts/delivery/mail-service/domain/errors"
)

func TestEnqueueDefaultsScheduleToNow(t *testing.T) {
	store := memory.NewStore(nil)
	uc := UseCase{Repository: store, Clock: store, IDGen: store}

	before := time.Now().UTC()
	message, err := uc.Enqueue(context.Background(), EnqueueCommand{
		Recipient: "user@example.com",
		Subject:   "welcome",
		Body:      "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if message.Status != entities.MessageStatusPending {
		t.Fatalf("expected pending, got %s", message.Status)
	}
	if message.Attempts != 0 {
		t.Fatalf("expected zero attempts, got %d", message.Attempts)
	}
	if message.ScheduledFor.Before(before.Add(-time.Second)) {
		t.Fatalf("expected scheduled_for defaulted to now, got %v", message.ScheduledFor)
	}
	if _, err := store.GetMessage(context.Background(), message.ID); err != nil {
		t.Fatalf("enqueued message not persisted: %v", err)
	}
}

func TestEnqueueHonorsExplicitSchedule(t *testing.T) {
	store := memory.NewStore(nil)
	uc := UseCase{Repository: store, Clock: store, IDGen: store}

	scheduledFor := time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC)
	message, err := uc.Enqueue(context.Background(), EnqueueCommand{
		Recipient:    "user@example.com",
		Subject:      "reminder",
		ScheduledFor: &scheduledFor,
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if !message.ScheduledFor.Equal(scheduledFor) {
		t.Fatalf("expected scheduled_for %v, got %v", scheduledFor, message.ScheduledFor)
	}
}

func TestEnqueueRejectsMalformedInput(t *testing.T) {
	store := memory.NewStore(nil)
	uc := UseCase{Repository: store, Clock: store, IDGen: store}

	cases := []EnqueueCommand{
		{Recipient: "", Subject: "s"},
		{Recipient: "   ", Subject: "s"},
		{Recipient: "not-an-address", Subject: "s"},
		{Recipient: "user@example.com", Subject: ""},
	}
	for _, cmd := range cases {
		if _, err := uc.Enqueue(context.Background(), cmd); !errors.Is(err, domainerrors.ErrInvalidMessageInput) {
			t.Fatalf("expected ErrInvalidMessageInput for %+v, got %v", cmd, err)
		}
	}

	// Rejected requests never enter the queue.
	pending, err := store.ListMessagesByStatus(context.Background(), entities.MessageStatusPending, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty queue after rejected enqueues, got %d rows", len(pending))
	}
}
