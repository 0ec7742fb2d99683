package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"beacon/contexts/delivery/webhook-service/domain/entities"
	domainerrors "beacon/contexts/delivery/webhook-service/domain/errors"

	"github.com/google/uuid"
)

type Store struct {
	mu            sync.RWMutex
	subscriptions map[string]entities.Subscription
}

func NewStore(seed []entities.Subscription) *Store {
	subscriptions := make(map[string]entities.Subscription, len(seed))
	for _, subscription := range seed {
		subscriptions[subscription.ID] = subscription
	}
	return &Store{subscriptions: subscriptions}
}

func (s *Store) CreateSubscription(_ context.Context, subscription entities.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subscription.ID]; exists {
		return domainerrors.ErrSubscriptionExists
	}
	s.subscriptions[subscription.ID] = subscription
	return nil
}

func (s *Store) GetSubscription(_ context.Context, subscriptionID string) (entities.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscription, exists := s.subscriptions[strings.TrimSpace(subscriptionID)]
	if !exists {
		return entities.Subscription{}, domainerrors.ErrSubscriptionNotFound
	}
	return subscription, nil
}

func (s *Store) ListByTenant(_ context.Context, tenantID string) ([]entities.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscriptions := make([]entities.Subscription, 0)
	for _, subscription := range s.subscriptions {
		if subscription.TenantID == tenantID {
			subscriptions = append(subscriptions, subscription)
		}
	}
	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].CreatedAt.Before(subscriptions[j].CreatedAt)
	})
	return subscriptions, nil
}

func (s *Store) ListActiveMatching(
	_ context.Context,
	tenantID string,
	eventName string,
) ([]entities.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscriptions := make([]entities.Subscription, 0)
	for _, subscription := range s.subscriptions {
		if subscription.TenantID == tenantID && subscription.Matches(eventName) {
			subscriptions = append(subscriptions, subscription)
		}
	}
	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].CreatedAt.Before(subscriptions[j].CreatedAt)
	})
	return subscriptions, nil
}

func (s *Store) UpdateSubscription(_ context.Context, subscription entities.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subscription.ID]; !exists {
		return domainerrors.ErrSubscriptionNotFound
	}
	s.subscriptions[subscription.ID] = subscription
	return nil
}

func (s *Store) DeleteSubscription(_ context.Context, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subscriptionID]; !exists {
		return domainerrors.ErrSubscriptionNotFound
	}
	delete(s.subscriptions, subscriptionID)
	return nil
}

func (s *Store) RecordDeliveryFailure(_ context.Context, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscription, exists := s.subscriptions[subscriptionID]
	if !exists {
		return domainerrors.ErrSubscriptionNotFound
	}
	subscription.FailureCount++
	s.subscriptions[subscriptionID] = subscription
	return nil
}

func (s *Store) MarkTriggered(_ context.Context, subscriptionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscription, exists := s.subscriptions[subscriptionID]
	if !exists {
		return domainerrors.ErrSubscriptionNotFound
	}
	subscription.LastTriggeredAt = &at
	s.subscriptions[subscriptionID] = subscription
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) NewSecret(_ context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
