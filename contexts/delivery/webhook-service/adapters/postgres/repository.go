package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"beacon/contexts/delivery/webhook-service/domain/entities"
	domainerrors "beacon/contexts/delivery/webhook-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreateSubscription(ctx context.Context, subscription entities.Subscription) error {
	row, err := subscriptionModelFromEntity(subscription)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrSubscriptionExists
		}
		return r.logError("webhook_repo_create_subscription_failed", err, "subscription_id", subscription.ID)
	}
	return nil
}

func (r *Repository) GetSubscription(ctx context.Context, subscriptionID string) (entities.Subscription, error) {
	var row subscriptionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(subscriptionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Subscription{}, domainerrors.ErrSubscriptionNotFound
		}
		return entities.Subscription{}, r.logError("webhook_repo_get_subscription_failed", err, "subscription_id", subscriptionID)
	}
	return row.toEntity()
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]entities.Subscription, error) {
	var rows []subscriptionModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", strings.TrimSpace(tenantID)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("webhook_repo_list_by_tenant_failed", err, "tenant_id", tenantID)
	}
	return rowsToEntities(rows)
}

// ListActiveMatching filters events in-process after an indexed
// tenant+active select; pattern sets are small and the jsonb containment
// check for the wildcard-or-exact match is clearer in Go than in SQL.
func (r *Repository) ListActiveMatching(
	ctx context.Context,
	tenantID string,
	eventName string,
) ([]entities.Subscription, error) {
	var rows []subscriptionModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", strings.TrimSpace(tenantID), true).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("webhook_repo_list_matching_failed", err, "tenant_id", tenantID, "event_name", eventName)
	}
	subscriptions, err := rowsToEntities(rows)
	if err != nil {
		return nil, err
	}
	matching := make([]entities.Subscription, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		if subscription.Matches(eventName) {
			matching = append(matching, subscription)
		}
	}
	return matching, nil
}

func (r *Repository) UpdateSubscription(ctx context.Context, subscription entities.Subscription) error {
	row, err := subscriptionModelFromEntity(subscription)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&subscriptionModel{}).
		Where("id = ?", subscription.ID).
		Updates(map[string]any{
			"url":        row.URL,
			"secret":     row.Secret,
			"events":     row.Events,
			"is_active":  row.IsActive,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("webhook_repo_update_subscription_failed", result.Error, "subscription_id", subscription.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubscriptionNotFound
	}
	return nil
}

func (r *Repository) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(subscriptionID)).
		Delete(&subscriptionModel{})
	if result.Error != nil {
		return r.logError("webhook_repo_delete_subscription_failed", result.Error, "subscription_id", subscriptionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubscriptionNotFound
	}
	return nil
}

func (r *Repository) RecordDeliveryFailure(ctx context.Context, subscriptionID string) error {
	result := r.db.WithContext(ctx).
		Model(&subscriptionModel{}).
		Where("id = ?", subscriptionID).
		UpdateColumn("failure_count", gorm.Expr("failure_count + 1"))
	if result.Error != nil {
		return r.logError("webhook_repo_record_failure_failed", result.Error, "subscription_id", subscriptionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubscriptionNotFound
	}
	return nil
}

func (r *Repository) MarkTriggered(ctx context.Context, subscriptionID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&subscriptionModel{}).
		Where("id = ?", subscriptionID).
		UpdateColumn("last_triggered_at", at)
	if result.Error != nil {
		return r.logError("webhook_repo_mark_triggered_failed", result.Error, "subscription_id", subscriptionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubscriptionNotFound
	}
	return nil
}

func rowsToEntities(rows []subscriptionModel) ([]entities.Subscription, error) {
	subscriptions := make([]entities.Subscription, 0, len(rows))
	for _, row := range rows {
		subscription, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, subscription)
	}
	return subscriptions, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "delivery/webhook-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("webhook repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
