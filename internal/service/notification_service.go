package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/oklog/ulid/v2"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
)

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	ListAdmins(ctx context.Context) ([]model.User, error)
	CountAll(ctx context.Context) (int, error)
}

// NotificationService writes per-recipient notification rows on listing
// transitions. Writes are best-effort: the triggering transition has
// already committed, so a failed notification is logged and dropped, never
// bubbled up to the caller.
type NotificationService struct {
	notifications NotificationStore
	users         UserStore
	log           *slog.Logger
	now           func() time.Time
}

func NewNotificationService(ns NotificationStore, us UserStore, log *slog.Logger) *NotificationService {
	return &NotificationService{notifications: ns, users: us, log: log, now: time.Now}
}

var statusTitles = map[string]string{
	model.StatusApproved:  "Your crop post was approved",
	model.StatusRejected:  "Your crop post was rejected",
	model.StatusSold:      "Your crop post was marked sold",
	model.StatusExpired:   "Your crop post has expired",
	model.StatusWithdrawn: "Your crop post was withdrawn",
}

// NotifyOwner writes one notification to the listing's farmer describing
// its new status and any reviewer notes.
func (s *NotificationService) NotifyOwner(ctx context.Context, l *model.Listing, status string, notes *string) {
	title, ok := statusTitles[status]
	if !ok {
		title = "Your crop post was updated"
	}

	crop := l.CropName
	if l.Variety != "" {
		crop = fmt.Sprintf("%s (%s)", l.CropName, l.Variety)
	}
	msg := fmt.Sprintf("Your listing for %s is now %s.", crop, status)
	if notes != nil && *notes != "" {
		msg = fmt.Sprintf("%s Reviewer notes: %s", msg, *notes)
	}

	n := s.build(l.FarmerID, model.NotificationCropPostReviewed, title, msg, l.ID, status)
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Error("owner notification failed", "listing_id", l.ID, "farmer_id", l.FarmerID, "err", err)
	}
}

// NotifyAdmins fans a new-submission event out as one independent row per
// admin so each admin keeps their own read state.
func (s *NotificationService) NotifyAdmins(ctx context.Context, l *model.Listing) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		s.log.Error("admin lookup for fan-out failed", "listing_id", l.ID, "err", err)
		return
	}

	title := "New crop post awaiting review"
	msg := fmt.Sprintf("%s submitted a listing for %s.", l.FarmerID, l.CropName)
	if owner, err := s.users.GetByID(ctx, l.FarmerID); err == nil {
		msg = fmt.Sprintf("%s submitted a listing for %s.", owner.Name, l.CropName)
	}

	for _, admin := range admins {
		n := s.build(admin.ID, model.NotificationCropPostSubmitted, title, msg, l.ID, l.Status)
		if err := s.notifications.Create(ctx, n); err != nil {
			s.log.Error("admin notification failed", "listing_id", l.ID, "admin_id", admin.ID, "err", err)
		}
	}
}

func (s *NotificationService) build(userID, typ, title, msg, listingID, status string) *model.Notification {
	payload, _ := json.Marshal(map[string]string{"listing_id": listingID, "status": status})
	return &model.Notification{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   msg,
		Payload:   types.JSONText(payload),
		CreatedAt: s.now().UTC(),
	}
}

// ListForUser returns a user's notifications newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	list, err := s.notifications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("NotificationService.ListForUser: %w", err)
	}
	return list, nil
}

// MarkRead flips the read flag on one of the user's notifications.
// Repeated calls keep the first read_at timestamp.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	matched, err := s.notifications.MarkRead(ctx, id, userID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("NotificationService.MarkRead: %w", err)
	}
	if !matched {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}
