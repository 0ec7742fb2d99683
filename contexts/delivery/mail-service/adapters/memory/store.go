package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"beacon/contexts/delivery/mail-service/domain/entities"
	domainerrors "beacon/contexts/delivery/mail-service/domain/errors"

	"github.com/google/uuid"
)

// staleClaimWindow is how long a claimed row may sit in sending before a
// later claim treats the owning tick as dead and reclaims it.
const staleClaimWindow = 5 * time.Minute

type Store struct {
	mu       sync.RWMutex
	messages map[string]entities.Message
}

func NewStore(seed []entities.Message) *Store {
	messages := make(map[string]entities.Message, len(seed))
	for _, message := range seed {
		messages[message.ID] = message
	}
	return &Store{messages: messages}
}

func (s *Store) CreateMessage(_ context.Context, message entities.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[message.ID]; exists {
		return domainerrors.ErrMessageExists
	}
	s.messages[message.ID] = message
	return nil
}

func (s *Store) GetMessage(_ context.Context, messageID string) (entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	message, exists := s.messages[strings.TrimSpace(messageID)]
	if !exists {
		return entities.Message{}, domainerrors.ErrMessageNotFound
	}
	return message, nil
}

func (s *Store) ListMessagesByStatus(
	_ context.Context,
	status entities.MessageStatus,
	limit int,
) ([]entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]entities.Message, 0)
	for _, message := range s.messages {
		if message.Status == status {
			messages = append(messages, message)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].ScheduledFor.Before(messages[j].ScheduledFor)
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

// ClaimDue selects due pending messages oldest first and flips them to
// sending under the store lock, so two claimers can never receive the same
// row. Rows stuck in sending past the stale window are reclaimed.
func (s *Store) ClaimDue(_ context.Context, now time.Time, limit int) ([]entities.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]entities.Message, 0)
	for _, message := range s.messages {
		if message.Attempts >= entities.MaxAttempts {
			continue
		}
		switch message.Status {
		case entities.MessageStatusPending:
			if !message.ScheduledFor.After(now) {
				due = append(due, message)
			}
		case entities.MessageStatusSending:
			if message.UpdatedAt.Before(now.Add(-staleClaimWindow)) {
				due = append(due, message)
			}
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]entities.Message, 0, len(due))
	for _, message := range due {
		message.Status = entities.MessageStatusSending
		message.UpdatedAt = now
		s.messages[message.ID] = message
		claimed = append(claimed, message)
	}
	return claimed, nil
}

func (s *Store) UpdateMessage(_ context.Context, message entities.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[message.ID]; !exists {
		return domainerrors.ErrMessageNotFound
	}
	s.messages[message.ID] = message
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
