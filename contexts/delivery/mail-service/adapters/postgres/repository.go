package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"beacon/contexts/delivery/mail-service/domain/entities"
	domainerrors "beacon/contexts/delivery/mail-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	uniqueViolationCode = "23505"
	staleClaimWindow    = 5 * time.Minute
)

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

func (r *Repository) CreateMessage(ctx context.Context, message entities.Message) error {
	row := messageModelFromEntity(message)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrMessageExists
		}
		return r.logError("mail_repo_create_message_failed", err, "message_id", message.ID)
	}
	return nil
}

func (r *Repository) GetMessage(ctx context.Context, messageID string) (entities.Message, error) {
	var row messageModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(messageID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Message{}, domainerrors.ErrMessageNotFound
		}
		return entities.Message{}, r.logError("mail_repo_get_message_failed", err, "message_id", messageID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListMessagesByStatus(
	ctx context.Context,
	status entities.MessageStatus,
	limit int,
) ([]entities.Message, error) {
	var rows []messageModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("mail_repo_list_messages_failed", err, "status", string(status))
	}
	messages := make([]entities.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toEntity())
	}
	return messages, nil
}

// ClaimDue selects due rows and flips them to sending inside one
// transaction, so a second worker process claiming concurrently cannot
// receive the same rows. Rows left in sending by a dead worker are
// reclaimed after the stale window.
func (r *Repository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]entities.Message, error) {
	var claimed []messageModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.
			Model(&messageModel{}).
			Where("attempts < ?", entities.MaxAttempts).
			Where(
				tx.Where("status = ? AND scheduled_for <= ?", string(entities.MessageStatusPending), now).
					Or("status = ? AND updated_at < ?", string(entities.MessageStatusSending), now.Add(-staleClaimWindow)),
			).
			Order("scheduled_for ASC").
			Limit(limit).
			Clauses(forUpdateSkipLocked()).
			Pluck("id", &ids).
			Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.
			Model(&messageModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     string(entities.MessageStatusSending),
				"updated_at": now,
			}).
			Error; err != nil {
			return err
		}
		return tx.
			Where("id IN ?", ids).
			Order("scheduled_for ASC").
			Find(&claimed).
			Error
	})
	if err != nil {
		return nil, r.logError("mail_repo_claim_due_failed", err)
	}
	messages := make([]entities.Message, 0, len(claimed))
	for _, row := range claimed {
		messages = append(messages, row.toEntity())
	}
	return messages, nil
}

func (r *Repository) UpdateMessage(ctx context.Context, message entities.Message) error {
	result := r.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("id = ?", message.ID).
		Updates(map[string]any{
			"status":     string(message.Status),
			"attempts":   message.Attempts,
			"last_error": message.LastError,
			"sent_at":    message.SentAt,
			"updated_at": message.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("mail_repo_update_message_failed", result.Error, "message_id", message.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMessageNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "delivery/mail-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("mail repository operation failed", fields...)
	return err
}

func forUpdateSkipLocked() clause.Locking {
	return clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
