package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"beacon/contexts/delivery/webhook-service/domain/entities"
	domainerrors "beacon/contexts/delivery/webhook-service/domain/errors"
)

func fixture(id, tenantID string, active bool, createdAt time.Time, events ...string) entities.Subscription {
	return entities.Subscription{
		ID:        id,
		TenantID:  tenantID,
		URL:       "https://hooks.example.com/" + id,
		Secret:    "secret-" + id,
		Events:    events,
		IsActive:  active,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	store := NewStore(nil)
	subscription := fixture("sub-1", "tenant-1", true, time.Now().UTC(), "x")

	if err := store.CreateSubscription(context.Background(), subscription); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := store.CreateSubscription(context.Background(), subscription); !errors.Is(err, domainerrors.ErrSubscriptionExists) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestListByTenantOrdersByCreation(t *testing.T) {
	base := time.Now().UTC()
	store := NewStore([]entities.Subscription{
		fixture("sub-late", "tenant-1", true, base.Add(2*time.Minute), "x"),
		fixture("sub-early", "tenant-1", true, base, "x"),
		fixture("sub-foreign", "tenant-2", true, base.Add(time.Minute), "x"),
	})

	listed, err := store.ListByTenant(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(listed))
	}
	if listed[0].ID != "sub-early" || listed[1].ID != "sub-late" {
		t.Fatalf("rows out of creation order: %s, %s", listed[0].ID, listed[1].ID)
	}
}

func TestListActiveMatchingFilters(t *testing.T) {
	now := time.Now().UTC()
	store := NewStore([]entities.Subscription{
		fixture("sub-exact", "tenant-1", true, now, "dashboard.created"),
		fixture("sub-wild", "tenant-1", true, now.Add(time.Second), entities.EventWildcard),
		fixture("sub-inactive", "tenant-1", false, now, entities.EventWildcard),
		fixture("sub-mismatch", "tenant-1", true, now, "dashboard.deleted"),
		fixture("sub-foreign", "tenant-2", true, now, "dashboard.created"),
	})

	matching, err := store.ListActiveMatching(context.Background(), "tenant-1", "dashboard.created")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(matching) != 2 {
		t.Fatalf("expected exact + wildcard matches, got %d rows", len(matching))
	}
	if matching[0].ID != "sub-exact" || matching[1].ID != "sub-wild" {
		t.Fatalf("unexpected match set: %s, %s", matching[0].ID, matching[1].ID)
	}
}

func TestRecordDeliveryFailureIncrements(t *testing.T) {
	store := NewStore([]entities.Subscription{
		fixture("sub-1", "tenant-1", true, time.Now().UTC(), "x"),
	})

	for i := 0; i < 3; i++ {
		if err := store.RecordDeliveryFailure(context.Background(), "sub-1"); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}
	subscription, _ := store.GetSubscription(context.Background(), "sub-1")
	if subscription.FailureCount != 3 {
		t.Fatalf("expected failure count 3, got %d", subscription.FailureCount)
	}

	if err := store.RecordDeliveryFailure(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrSubscriptionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkTriggeredStampsTime(t *testing.T) {
	store := NewStore([]entities.Subscription{
		fixture("sub-1", "tenant-1", true, time.Now().UTC(), "x"),
	})

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := store.MarkTriggered(context.Background(), "sub-1", at); err != nil {
		t.Fatalf("mark triggered: %v", err)
	}
	subscription, _ := store.GetSubscription(context.Background(), "sub-1")
	if subscription.LastTriggeredAt == nil || !subscription.LastTriggeredAt.Equal(at) {
		t.Fatalf("expected last_triggered_at %v, got %v", at, subscription.LastTriggeredAt)
	}
}

func TestDeleteSubscription(t *testing.T) {
	store := NewStore([]entities.Subscription{
		fixture("sub-1", "tenant-1", true, time.Now().UTC(), "x"),
	})

	if err := store.DeleteSubscription(context.Background(), "sub-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetSubscription(context.Background(), "sub-1"); !errors.Is(err, domainerrors.ErrSubscriptionNotFound) {
		t.Fatalf("expected row gone, got %v", err)
	}
	if err := store.DeleteSubscription(context.Background(), "sub-1"); !errors.Is(err, domainerrors.ErrSubscriptionNotFound) {
		t.Fatalf("double delete must report not found, got %v", err)
	}
}

func TestNewSecretShape(t *testing.T) {
	store := NewStore(nil)
	first, err := store.NewSecret(context.Background())
	if err != nil {
		t.Fatalf("secret generation failed: %v", err)
	}
	second, _ := store.NewSecret(context.Background())
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	if first == second {
		t.Fatalf("secrets must not repeat")
	}
}
