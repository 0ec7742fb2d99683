package entities

import "time"

// EventWildcard subscribes an endpoint to every event its tenant emits.
const EventWildcard = "*"

type Subscription struct {
	ID              string
	TenantID        string
	URL             string
	Secret          string
	Events          []string
	IsActive        bool
	FailureCount    int
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Matches reports whether the subscription should receive eventName.
// Inactive subscriptions match nothing.
func (s Subscription) Matches(eventName string) bool {
	if !s.IsActive {
		return false
	}
	for _, pattern := range s.Events {
		if pattern == EventWildcard || pattern == eventName {
			return true
		}
	}
	return false
}
