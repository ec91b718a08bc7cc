package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Notification types created by the fan-out.
const (
	NotificationCropPostSubmitted = "crop_post_submitted"
	NotificationCropPostReviewed  = "crop_post_reviewed"
)

// Notification is a per-recipient record: every admin in a fan-out gets an
// independent row so read/unread state is tracked per recipient.
type Notification struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"userId"`
	Type      string         `db:"type" json:"type"`
	Title     string         `db:"title" json:"title"`
	Message   string         `db:"message" json:"message"`
	Payload   types.JSONText `db:"payload" json:"payload,omitempty"`
	IsRead    bool           `db:"is_read" json:"isRead"`
	ReadAt    *time.Time     `db:"read_at" json:"readAt,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}
