package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
)

// In-memory stand-ins for the Postgres repositories. They mirror the
// conditional-update semantics of the real queries so the race handling
// can be exercised without a database.

type fakeListingStore struct {
	listings map[string]*model.Listing
	order    []string
	failNext error
	afterGet func() // runs once after the next GetByID, for race tests
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: map[string]*model.Listing{}}
}

func (f *fakeListingStore) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeListingStore) Create(ctx context.Context, l *model.Listing) error {
	if err := f.takeErr(); err != nil {
		return err
	}
	cp := *l
	f.listings[l.ID] = &cp
	f.order = append(f.order, l.ID)
	return nil
}

func (f *fakeListingStore) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	cp := *l
	if f.afterGet != nil {
		hook := f.afterGet
		f.afterGet = nil
		hook()
	}
	return &cp, nil
}

func (f *fakeListingStore) SetReviewed(ctx context.Context, id, status, reviewerID string, notes *string, at time.Time) (bool, error) {
	if err := f.takeErr(); err != nil {
		return false, err
	}
	l, ok := f.listings[id]
	if !ok || l.Status != model.StatusPending {
		return false, nil
	}
	l.Status = status
	l.ReviewedBy = &reviewerID
	l.ReviewedAt = &at
	l.AdminNotes = notes
	l.UpdatedAt = at
	return true, nil
}

func (f *fakeListingStore) SetStatusFromApproved(ctx context.Context, id, status string, at time.Time) (bool, error) {
	if err := f.takeErr(); err != nil {
		return false, err
	}
	l, ok := f.listings[id]
	if !ok || l.Status != model.StatusApproved {
		return false, nil
	}
	l.Status = status
	l.UpdatedAt = at
	return true, nil
}

func (f *fakeListingStore) ReopenForReview(ctx context.Context, id string, phoneVerified bool, expiresAt, at time.Time) (bool, error) {
	l, ok := f.listings[id]
	if !ok || (l.Status != model.StatusRejected && l.Status != model.StatusWithdrawn) {
		return false, nil
	}
	l.Status = model.StatusPending
	l.ReviewedBy = nil
	l.ReviewedAt = nil
	l.AdminNotes = nil
	l.PhoneVerified = phoneVerified
	l.ExpiresAt = expiresAt
	l.UpdatedAt = at
	return true, nil
}

func (f *fakeListingStore) ListPending(ctx context.Context) ([]model.Listing, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	var out []model.Listing
	for _, id := range f.order {
		if f.listings[id].Status == model.StatusPending {
			out = append(out, *f.listings[id])
		}
	}
	return out, nil
}

func (f *fakeListingStore) ExpireOverdue(ctx context.Context, now time.Time) ([]model.Listing, error) {
	var expired []model.Listing
	for _, id := range f.order {
		l := f.listings[id]
		if l.Status == model.StatusApproved && l.ExpiresAt.Before(now) {
			l.Status = model.StatusExpired
			l.UpdatedAt = now
			expired = append(expired, *l)
		}
	}
	return expired, nil
}

func (f *fakeListingStore) ListByFarmer(ctx context.Context, farmerID string) ([]model.Listing, error) {
	var out []model.Listing
	for _, id := range f.order {
		if f.listings[id].FarmerID == farmerID {
			out = append(out, *f.listings[id])
		}
	}
	return out, nil
}

func (f *fakeListingStore) Recent(ctx context.Context, limit int) ([]model.Listing, error) {
	var out []model.Listing
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.listings[f.order[i]])
	}
	return out, nil
}

func (f *fakeListingStore) CountAll(ctx context.Context) (int, error) {
	return len(f.listings), nil
}

type fakeNotificationStore struct {
	created  []model.Notification
	failNext error
}

func (f *fakeNotificationStore) Create(ctx context.Context, n *model.Notification) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	var out []model.Notification
	for i := len(f.created) - 1; i >= 0; i-- {
		if f.created[i].UserID == userID {
			out = append(out, f.created[i])
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	for i := range f.created {
		if f.created[i].ID == id && f.created[i].UserID == userID {
			f.created[i].IsRead = true
			if f.created[i].ReadAt == nil {
				f.created[i].ReadAt = &at
			}
			return true, nil
		}
	}
	return false, nil
}

// forUser returns the notifications addressed to one user, oldest first.
func (f *fakeNotificationStore) forUser(userID string) []model.Notification {
	var out []model.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeUserStore struct {
	users map[string]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	f := &fakeUserStore{users: map[string]*model.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, nil
}

func (f *fakeUserStore) ListAdmins(ctx context.Context) ([]model.User, error) {
	var admins []model.User
	for _, u := range f.users {
		if u.Role == model.RoleAdmin {
			admins = append(admins, *u)
		}
	}
	return admins, nil
}

func (f *fakeUserStore) CountAll(ctx context.Context) (int, error) {
	return len(f.users), nil
}

type fakeDealStore struct {
	deals []model.Deal
}

func (f *fakeDealStore) ListByBuyer(ctx context.Context, buyerID string) ([]model.Deal, error) {
	var out []model.Deal
	for _, d := range f.deals {
		if d.BuyerID == buyerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDealStore) Recent(ctx context.Context, limit int) ([]model.Deal, error) {
	out := append([]model.Deal{}, f.deals...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeDealStore) CountAll(ctx context.Context) (int, error) {
	return len(f.deals), nil
}

var errStoreDown = errors.New("store unavailable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

// validDraft returns a submission that passes every check.
func validDraft() *model.Listing {
	return &model.Listing{
		CropName:     "Wheat",
		Variety:      "Sharbati",
		Description:  "Freshly harvested wheat from irrigated fields, sun dried and cleaned.",
		Quantity:     100,
		Unit:         "kg",
		PricePerUnit: 25,
		Images:       []string{"/api/images/img-1"},
		Village:      "Rampur",
		District:     "Sehore",
		State:        "Madhya Pradesh",
		ContactPhone: "9876500001",
	}
}
