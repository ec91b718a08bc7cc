package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
)

// Read-side slices of the record store used by the aggregator. Kept apart
// from ListingStore: the dashboard never writes.
type ListingReader interface {
	ListByFarmer(ctx context.Context, farmerID string) ([]model.Listing, error)
	Recent(ctx context.Context, limit int) ([]model.Listing, error)
	CountAll(ctx context.Context) (int, error)
}

type DealReader interface {
	ListByBuyer(ctx context.Context, buyerID string) ([]model.Deal, error)
	Recent(ctx context.Context, limit int) ([]model.Deal, error)
	CountAll(ctx context.Context) (int, error)
}

// FarmerStats summarizes a farmer's own listings.
type FarmerStats struct {
	StatusCounts map[string]int `json:"statusCounts"`
	TotalValue   float64        `json:"totalValue"`
}

// BuyerStats summarizes a buyer's deals.
type BuyerStats struct {
	ActiveDeals int     `json:"activeDeals"`
	TotalSpend  float64 `json:"totalSpend"`
}

// AdminStats holds global marketplace counts.
type AdminStats struct {
	Listings int `json:"listings"`
	Users    int `json:"users"`
	Deals    int `json:"deals"`
}

// ActivityItem is one entry in the merged recent-activity feed.
type ActivityItem struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // "listing" or "deal"
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DashboardService computes role-specific statistics and the merged
// activity feed. Pure read-and-reduce: nothing here is persisted, every
// request recomputes from the store.
type DashboardService struct {
	listings ListingReader
	deals    DealReader
	users    UserStore
}

func NewDashboardService(lr ListingReader, dr DealReader, us UserStore) *DashboardService {
	return &DashboardService{listings: lr, deals: dr, users: us}
}

// ComputeStats dispatches on role. Unknown roles get ErrNotAuthorized.
func (s *DashboardService) ComputeStats(ctx context.Context, role, userID string) (any, error) {
	switch role {
	case model.RoleFarmer:
		return s.farmerStats(ctx, userID)
	case model.RoleBuyer:
		return s.buyerStats(ctx, userID)
	case model.RoleAdmin:
		return s.adminStats(ctx)
	default:
		return nil, fmt.Errorf("role %q has no dashboard: %w", role, ErrNotAuthorized)
	}
}

func (s *DashboardService) farmerStats(ctx context.Context, farmerID string) (*FarmerStats, error) {
	owned, err := s.listings.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("DashboardService.farmerStats: %w", err)
	}
	stats := &FarmerStats{StatusCounts: map[string]int{}}
	for i := range owned {
		stats.StatusCounts[owned[i].Status]++
		if owned[i].Status == model.StatusApproved {
			stats.TotalValue += owned[i].Quantity * owned[i].PricePerUnit
		}
	}
	return stats, nil
}

func (s *DashboardService) buyerStats(ctx context.Context, buyerID string) (*BuyerStats, error) {
	deals, err := s.deals.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("DashboardService.buyerStats: %w", err)
	}
	stats := &BuyerStats{}
	for i := range deals {
		switch deals[i].Status {
		case model.DealPending, model.DealAccepted, model.DealInProgress:
			stats.ActiveDeals++
		case model.DealCompleted:
			stats.TotalSpend += deals[i].TotalAmount
		}
	}
	return stats, nil
}

func (s *DashboardService) adminStats(ctx context.Context) (*AdminStats, error) {
	listings, err := s.listings.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("DashboardService.adminStats: %w", err)
	}
	users, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("DashboardService.adminStats: %w", err)
	}
	deals, err := s.deals.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("DashboardService.adminStats: %w", err)
	}
	return &AdminStats{Listings: listings, Users: users, Deals: deals}, nil
}

// RecentActivity merges the most recent listings and deals into one feed
// sorted newest first. Timestamp ties are broken by ID descending; IDs are
// ULIDs, so the tie-break follows insertion order and the feed is
// deterministic.
func (s *DashboardService) RecentActivity(ctx context.Context, limit int) ([]ActivityItem, error) {
	if limit <= 0 {
		limit = 10
	}

	listings, err := s.listings.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("DashboardService.RecentActivity: %w", err)
	}
	deals, err := s.deals.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("DashboardService.RecentActivity: %w", err)
	}

	names := map[string]string{}
	displayName := func(userID string) string {
		if name, ok := names[userID]; ok {
			return name
		}
		name := userID
		if u, err := s.users.GetByID(ctx, userID); err == nil {
			name = u.Name
		}
		names[userID] = name
		return name
	}

	items := make([]ActivityItem, 0, len(listings)+len(deals))
	for i := range listings {
		l := &listings[i]
		items = append(items, ActivityItem{
			ID:          l.ID,
			Kind:        "listing",
			Description: fmt.Sprintf("%s posted %s", displayName(l.FarmerID), l.CropName),
			CreatedAt:   l.CreatedAt,
		})
	}
	for i := range deals {
		d := &deals[i]
		items = append(items, ActivityItem{
			ID:          d.ID,
			Kind:        "deal",
			Description: fmt.Sprintf("%s made an offer of %.2f", displayName(d.BuyerID), d.TotalAmount),
			CreatedAt:   d.CreatedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
