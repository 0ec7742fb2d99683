package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"beacon/contexts/delivery/mail-service/adapters/memory"
	"beacon/contexts/delivery/mail-service/domain/entities"
	"beacon/internal/shared/delivery"
)

type stubDeliverer struct {
	mu       sync.Mutex
	requests []delivery.Request
	outcomes []delivery.Outcome
	block    chan struct{}
}

func (s *stubDeliverer) Deliver(_ context.Context, req delivery.Request) delivery.Outcome {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.outcomes) == 0 {
		return delivery.Outcome{Success: true, StatusCode: 200}
	}
	outcome := s.outcomes[0]
	if len(s.outcomes) > 1 {
		s.outcomes = s.outcomes[1:]
	}
	return outcome
}

func (s *stubDeliverer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type failingRepository struct{}

func (failingRepository) CreateMessage(context.Context, entities.Message) error {
	return errors.New("store unreachable")
}

func (failingRepository) GetMessage(context.Context, string) (entities.Message, error) {
	return entities.Message{}, errors.New("store unreachable")
}

func (failingRepository) ListMessagesByStatus(context.Context, entities.MessageStatus, int) ([]entities.Message, error) {
	return nil, errors.New("store unreachable")
}

func (failingRepository) ClaimDue(context.Context, time.Time, int) ([]entities.Message, error) {
	return nil, errors.New("store unreachable")
}

func (failingRepository) UpdateMessage(context.Context, entities.Message) error {
	return errors.New("store unreachable")
}

func seededStore(t *testing.T, scheduledFor time.Time) *memory.Store {
	t.Helper()
	return memory.NewStore([]entities.Message{{
		ID:           "msg-1",
		Recipient:    "user@example.com",
		Subject:      "weekly digest",
		Body:         "<p>hello</p>",
		Status:       entities.MessageStatusPending,
		ScheduledFor: scheduledFor,
		CreatedAt:    scheduledFor,
		UpdatedAt:    scheduledFor,
	}})
}

func TestRunOnceMarksSentOnSuccess(t *testing.T) {
	scheduledFor := time.Now().UTC().Add(-time.Minute)
	store := seededStore(t, scheduledFor)
	deliverer := &stubDeliverer{}
	dispatcher := &Dispatcher{
		Repository: store,
		Deliverer:  deliverer,
		Endpoint:   "http://mail.internal/send",
		APIKey:     "key-123",
	}

	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	message, err := store.GetMessage(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if message.Status != entities.MessageStatusSent {
		t.Fatalf("expected sent, got %s", message.Status)
	}
	if message.SentAt == nil {
		t.Fatalf("sent message must carry sent_at")
	}
	if message.SentAt.Before(message.ScheduledFor) {
		t.Fatalf("sent_at %v precedes scheduled_for %v", message.SentAt, message.ScheduledFor)
	}
	if deliverer.calls() != 1 {
		t.Fatalf("expected exactly one delivery attempt, got %d", deliverer.calls())
	}
	if deliverer.requests[0].Headers["Authorization"] != "Bearer key-123" {
		t.Fatalf("expected bearer auth header, got %q", deliverer.requests[0].Headers["Authorization"])
	}
}

func TestRetriesThenFailsAtAttemptCeiling(t *testing.T) {
	scheduledFor := time.Now().UTC().Add(-time.Minute)
	store := seededStore(t, scheduledFor)
	deliverer := &stubDeliverer{outcomes: []delivery.Outcome{{Err: "dial tcp: connection refused"}}}
	dispatcher := &Dispatcher{Repository: store, Deliverer: deliverer, Endpoint: "http://mail.internal/send"}

	for tick := 1; tick <= 2; tick++ {
		if err := dispatcher.RunOnce(context.Background()); err != nil {
			t.Fatalf("tick %d failed: %v", tick, err)
		}
		message, _ := store.GetMessage(context.Background(), "msg-1")
		if message.Status != entities.MessageStatusPending {
			t.Fatalf("after tick %d expected pending, got %s", tick, message.Status)
		}
		if message.Attempts != tick {
			t.Fatalf("after tick %d expected %d attempts, got %d", tick, tick, message.Attempts)
		}
		if message.LastError == "" {
			t.Fatalf("expected last_error recorded")
		}
	}

	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("third tick failed: %v", err)
	}
	message, _ := store.GetMessage(context.Background(), "msg-1")
	if message.Status != entities.MessageStatusFailed {
		t.Fatalf("expected failed at attempt ceiling, got %s", message.Status)
	}
	if message.Attempts != entities.MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", entities.MaxAttempts, message.Attempts)
	}

	// Terminal rows are never selected again.
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("post-terminal tick failed: %v", err)
	}
	if deliverer.calls() != entities.MaxAttempts {
		t.Fatalf("expected no attempts past the ceiling, got %d", deliverer.calls())
	}
}

func TestNon2xxResponseCountsAsFailure(t *testing.T) {
	scheduledFor := time.Now().UTC().Add(-time.Minute)
	store := seededStore(t, scheduledFor)
	deliverer := &stubDeliverer{outcomes: []delivery.Outcome{{StatusCode: 502, ResponseExcerpt: "bad gateway"}}}
	dispatcher := &Dispatcher{Repository: store, Deliverer: deliverer, Endpoint: "http://mail.internal/send"}

	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	message, _ := store.GetMessage(context.Background(), "msg-1")
	if message.Status != entities.MessageStatusPending || message.Attempts != 1 {
		t.Fatalf("expected pending with one attempt, got %s/%d", message.Status, message.Attempts)
	}
	if message.LastError == "" {
		t.Fatalf("expected status failure recorded in last_error")
	}
}

func TestOverlappingTicksNeverDoubleSend(t *testing.T) {
	scheduledFor := time.Now().UTC().Add(-time.Minute)
	store := seededStore(t, scheduledFor)
	deliverer := &stubDeliverer{block: make(chan struct{})}
	dispatcher := &Dispatcher{Repository: store, Deliverer: deliverer, Endpoint: "http://mail.internal/send"}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_ = dispatcher.RunOnce(context.Background())
	}()

	// Give the first tick time to claim the batch and park in the deliverer,
	// then force an overlapping tick. It must be a no-op.
	time.Sleep(50 * time.Millisecond)
	if err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("overlapping tick errored: %v", err)
	}

	close(deliverer.block)
	<-firstDone

	if deliverer.calls() != 1 {
		t.Fatalf("message delivered %d times, want exactly 1", deliverer.calls())
	}
	message, _ := store.GetMessage(context.Background(), "msg-1")
	if message.Status != entities.MessageStatusSent {
		t.Fatalf("expected sent, got %s", message.Status)
	}
}

func TestConcurrentDispatchersShareClaims(t *testing.T) {
	now := time.Now().UTC()
	seed := make([]entities.Message, 0, 20)
	for i := 0; i < 20; i++ {
		seed = append(seed, entities.Message{
			ID:           "msg-" + string(rune('a'+i)),
			Recipient:    "user@example.com",
			Subject:      "s",
			Status:       entities.MessageStatusPending,
			ScheduledFor: now.Add(-time.Minute),
			CreatedAt:    now.Add(-time.Minute),
			UpdatedAt:    now.Add(-time.Minute),
		})
	}
	store := memory.NewStore(seed)
	deliverer := &stubDeliverer{}

	// Two dispatcher instances over one store model two worker processes.
	// The claim-based select keeps their batches disjoint.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		dispatcher := &Dispatcher{Repository: store, Deliverer: deliverer, Endpoint: "http://mail.internal/send"}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = dispatcher.RunOnce(context.Background())
		}()
	}
	wg.Wait()

	if deliverer.calls() != 20 {
		t.Fatalf("expected each message attempted exactly once, got %d attempts for 20 messages", deliverer.calls())
	}
}

func TestStoreErrorAbortsTickWithoutPanic(t *testing.T) {
	dispatcher := &Dispatcher{Repository: failingRepository{}, Deliverer: &stubDeliverer{}, Endpoint: "http://mail.internal/send"}
	if err := dispatcher.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected claim error surfaced")
	}
	// A second tick after the store recovers must still run.
	if err := dispatcher.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected claim error surfaced on retry tick")
	}
}
