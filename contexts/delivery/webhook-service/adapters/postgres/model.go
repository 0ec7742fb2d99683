package postgresadapter

import (
	"encoding/json"
	"time"

	"beacon/contexts/delivery/webhook-service/domain/entities"
)

type subscriptionModel struct {
	ID              string `gorm:"primaryKey"`
	TenantID        string `gorm:"index:idx_webhook_tenant_active,priority:1"`
	URL             string
	Secret          string
	Events          string `gorm:"type:jsonb"`
	IsActive        bool   `gorm:"index:idx_webhook_tenant_active,priority:2"`
	FailureCount    int
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (subscriptionModel) TableName() string {
	return "webhook_subscriptions"
}

func subscriptionModelFromEntity(subscription entities.Subscription) (subscriptionModel, error) {
	events, err := json.Marshal(subscription.Events)
	if err != nil {
		return subscriptionModel{}, err
	}
	return subscriptionModel{
		ID:              subscription.ID,
		TenantID:        subscription.TenantID,
		URL:             subscription.URL,
		Secret:          subscription.Secret,
		Events:          string(events),
		IsActive:        subscription.IsActive,
		FailureCount:    subscription.FailureCount,
		LastTriggeredAt: subscription.LastTriggeredAt,
		CreatedAt:       subscription.CreatedAt,
		UpdatedAt:       subscription.UpdatedAt,
	}, nil
}

func (m subscriptionModel) toEntity() (entities.Subscription, error) {
	var events []string
	if m.Events != "" {
		if err := json.Unmarshal([]byte(m.Events), &events); err != nil {
			return entities.Subscription{}, err
		}
	}
	return entities.Subscription{
		ID:              m.ID,
		TenantID:        m.TenantID,
		URL:             m.URL,
		Secret:          m.Secret,
		Events:          events,
		IsActive:        m.IsActive,
		FailureCount:    m.FailureCount,
		LastTriggeredAt: m.LastTriggeredAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}
