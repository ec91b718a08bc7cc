package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
)

// ListingStore is the slice of the record store the moderation service
// needs. Status-changing methods are conditional on the current status and
// report whether a row matched, so two concurrent reviewers cannot silently
// overwrite each other: the store's single-row update decides the winner
// and the loser sees matched=false.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	ListPending(ctx context.Context) ([]model.Listing, error)
	SetReviewed(ctx context.Context, id, status, reviewerID string, notes *string, at time.Time) (bool, error)
	SetStatusFromApproved(ctx context.Context, id, status string, at time.Time) (bool, error)
	ReopenForReview(ctx context.Context, id string, phoneVerified bool, expiresAt, at time.Time) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) ([]model.Listing, error)
}

// ModerationService owns the listing lifecycle: submission, admin review,
// and the farmer/system transitions out of approved.
type ModerationService struct {
	listings ListingStore
	notifier *NotificationService
	users    UserStore
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewModerationService(ls ListingStore, n *NotificationService, us UserStore, ttlDays int, log *slog.Logger) *ModerationService {
	return &ModerationService{
		listings: ls,
		notifier: n,
		users:    us,
		ttl:      time.Duration(ttlDays) * 24 * time.Hour,
		log:      log,
		now:      time.Now,
	}
}

// Submit validates a farmer's draft and persists it as a pending listing
// expiring after the configured TTL. Every admin is notified of the new
// submission.
func (s *ModerationService) Submit(ctx context.Context, farmerID string, draft *model.Listing) (*model.Listing, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	l := *draft
	l.ID = ulid.Make().String()
	l.FarmerID = farmerID
	l.Status = model.StatusPending
	l.CreatedAt = now
	l.UpdatedAt = now
	l.ExpiresAt = now.Add(s.ttl)
	l.ReviewedBy = nil
	l.ReviewedAt = nil
	l.AdminNotes = nil
	l.PhoneVerified = s.ownerPhoneVerified(ctx, farmerID)

	if err := s.listings.Create(ctx, &l); err != nil {
		return nil, fmt.Errorf("ModerationService.Submit: %w", err)
	}

	s.notifier.NotifyAdmins(ctx, &l)
	return &l, nil
}

// ownerPhoneVerified reflects the user record's phone verification flag
// onto the listing, where the trust scorer reads it. A failed lookup
// leaves the listing unverified instead of blocking the submission.
func (s *ModerationService) ownerPhoneVerified(ctx context.Context, farmerID string) bool {
	u, err := s.users.GetByID(ctx, farmerID)
	if err != nil {
		s.log.Warn("owner lookup failed", "farmer_id", farmerID, "err", err)
		return false
	}
	return u.PhoneVerified
}

func validateDraft(l *model.Listing) error {
	if l.CropName == "" {
		return invalidField("cropName", "crop name is required")
	}
	if len(l.Images) == 0 {
		return invalidField("images", "at least one image is required")
	}
	if !hasNamedLocation(l) && (l.Latitude == nil || l.Longitude == nil) {
		return invalidField("location", "a village/district/state or coordinates are required")
	}
	if l.PricePerUnit <= 0 {
		return invalidField("pricePerUnit", "price must be positive")
	}
	if l.Quantity <= 0 {
		return invalidField("quantity", "quantity must be positive")
	}
	return nil
}

// QueuedListing pairs a pending listing with its trust assessment so the
// moderation queue can be worked highest-trust first.
type QueuedListing struct {
	Listing      model.Listing                `json:"listing"`
	Verification model.VerificationAssessment `json:"verification"`
}

// PendingQueue returns the pending set ranked by trust score descending,
// paged after ranking so the ordering holds across pages. Score ties keep
// submission order so older posts do not starve.
func (s *ModerationService) PendingQueue(ctx context.Context, limit, offset int) ([]QueuedListing, error) {
	pending, err := s.listings.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.PendingQueue: %w", err)
	}

	queue := make([]QueuedListing, 0, len(pending))
	for i := range pending {
		queue = append(queue, QueuedListing{
			Listing:      pending[i],
			Verification: ScoreListing(&pending[i]),
		})
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Verification.Score > queue[j].Verification.Score
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(queue) {
		return []QueuedListing{}, nil
	}
	queue = queue[offset:]
	if limit > 0 && limit < len(queue) {
		queue = queue[:limit]
	}
	return queue, nil
}

// Review applies an admin decision to a pending listing. The status update
// is conditional on the listing still being pending, so a concurrent
// second review gets ErrInvalidState instead of overwriting the first.
// The owner notification is written after the transition has committed and
// is best-effort.
func (s *ModerationService) Review(ctx context.Context, listingID, decision, reviewerID string, notes *string) (*model.Listing, error) {
	if decision != model.StatusApproved && decision != model.StatusRejected {
		return nil, invalidField("decision", "must be approved or rejected")
	}

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.Review: %w", err)
	}
	if l.Status != model.StatusPending {
		return nil, fmt.Errorf("listing is %s: %w", l.Status, ErrInvalidState)
	}

	now := s.now().UTC()
	matched, err := s.listings.SetReviewed(ctx, listingID, decision, reviewerID, notes, now)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.Review: %w", err)
	}
	if !matched {
		// Lost the race to another reviewer.
		return nil, fmt.Errorf("listing already reviewed: %w", ErrInvalidState)
	}

	l.Status = decision
	l.ReviewedBy = &reviewerID
	l.ReviewedAt = &now
	l.AdminNotes = notes
	l.UpdatedAt = now

	s.notifier.NotifyOwner(ctx, l, decision, notes)
	return l, nil
}

// MarkSold moves an approved listing to sold. Only the owning farmer or an
// admin may do this. Calling it on an already-terminal listing is a no-op
// returning the current state, so retries are safe and never double-notify.
func (s *ModerationService) MarkSold(ctx context.Context, listingID, actorID string, isAdmin bool) (*model.Listing, error) {
	return s.closeListing(ctx, listingID, model.StatusSold, actorID, isAdmin)
}

// Withdraw takes an approved listing off the market at the owner's request.
// Idempotent in the same way as MarkSold.
func (s *ModerationService) Withdraw(ctx context.Context, listingID, actorID string, isAdmin bool) (*model.Listing, error) {
	return s.closeListing(ctx, listingID, model.StatusWithdrawn, actorID, isAdmin)
}

func (s *ModerationService) closeListing(ctx context.Context, listingID, target, actorID string, isAdmin bool) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.closeListing: %w", err)
	}
	if !isAdmin && l.FarmerID != actorID {
		return nil, fmt.Errorf("only the owner may close a listing: %w", ErrNotAuthorized)
	}

	if l.Status == model.StatusPending {
		return nil, fmt.Errorf("listing is pending: %w", ErrInvalidState)
	}
	if l.Terminal() {
		// Already closed: tolerate the retry, no second notification.
		return l, nil
	}

	now := s.now().UTC()
	matched, err := s.listings.SetStatusFromApproved(ctx, listingID, target, now)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.closeListing: %w", err)
	}
	if !matched {
		// Raced with another transition; report whatever won.
		return s.listings.GetByID(ctx, listingID)
	}

	l.Status = target
	l.UpdatedAt = now
	s.notifier.NotifyOwner(ctx, l, target, nil)
	return l, nil
}

// Expire moves a single approved listing past its expiry date to expired.
// System-triggered; idempotent like the other terminal transitions.
func (s *ModerationService) Expire(ctx context.Context, listingID string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.Expire: %w", err)
	}
	if l.Status == model.StatusPending {
		return nil, fmt.Errorf("listing is pending: %w", ErrInvalidState)
	}
	if l.Terminal() {
		return l, nil
	}
	now := s.now().UTC()
	if now.Before(l.ExpiresAt) {
		return nil, fmt.Errorf("listing has not reached its expiry date: %w", ErrInvalidState)
	}

	matched, err := s.listings.SetStatusFromApproved(ctx, listingID, model.StatusExpired, now)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.Expire: %w", err)
	}
	if !matched {
		return s.listings.GetByID(ctx, listingID)
	}

	l.Status = model.StatusExpired
	l.UpdatedAt = now
	s.notifier.NotifyOwner(ctx, l, model.StatusExpired, nil)
	return l, nil
}

// ExpireOverdue sweeps every approved listing whose expires_at has passed,
// notifying each owner. Invoked on a timer from main.
func (s *ModerationService) ExpireOverdue(ctx context.Context) (int, error) {
	expired, err := s.listings.ExpireOverdue(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("ModerationService.ExpireOverdue: %w", err)
	}
	for i := range expired {
		s.notifier.NotifyOwner(ctx, &expired[i], model.StatusExpired, nil)
	}
	if len(expired) > 0 {
		s.log.Info("expired overdue listings", "count", len(expired))
	}
	return len(expired), nil
}

// Resubmit opens a fresh review cycle for a rejected or withdrawn listing.
// The audit fields from the previous cycle are cleared, the expiry clock
// restarts, and admins are notified as for a new submission. Only the
// owning farmer may resubmit.
func (s *ModerationService) Resubmit(ctx context.Context, listingID, actorID string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.Resubmit: %w", err)
	}
	if l.FarmerID != actorID {
		return nil, fmt.Errorf("only the owner may resubmit: %w", ErrNotAuthorized)
	}
	if l.Status != model.StatusRejected && l.Status != model.StatusWithdrawn {
		return nil, fmt.Errorf("listing is %s: %w", l.Status, ErrInvalidState)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	phoneVerified := s.ownerPhoneVerified(ctx, actorID)
	matched, err := s.listings.ReopenForReview(ctx, listingID, phoneVerified, expiresAt, now)
	if err != nil {
		return nil, fmt.Errorf("ModerationService.Resubmit: %w", err)
	}
	if !matched {
		return nil, fmt.Errorf("listing already resubmitted: %w", ErrInvalidState)
	}

	l.Status = model.StatusPending
	l.ReviewedBy = nil
	l.ReviewedAt = nil
	l.AdminNotes = nil
	l.PhoneVerified = phoneVerified
	l.ExpiresAt = expiresAt
	l.UpdatedAt = now

	s.notifier.NotifyAdmins(ctx, l)
	return l, nil
}
