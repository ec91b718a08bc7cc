package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
)

type NotificationRepository struct {
	DB *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO notifications
            (id, user_id, type, title, message, payload, is_read, created_at)
        VALUES
            (:id, :user_id, :type, :title, :message, :payload, :is_read, :created_at)
    `, n)
	if err != nil {
		return fmt.Errorf("NotificationRepository.Create: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.DB.SelectContext(ctx, &list, `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("NotificationRepository.ListByUser: %w", err)
	}
	return list, nil
}

// MarkRead sets the read flag on the user's own notification. read_at is
// stamped only on the first read; re-reads keep the original timestamp.
// Returns whether the row exists.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
	`, id, userID, at)
	if err != nil {
		return false, fmt.Errorf("NotificationRepository.MarkRead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("NotificationRepository.MarkRead: %w", err)
	}
	return n > 0, nil
}
