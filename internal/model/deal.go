package model

import "time"

// Deal statuses.
const (
	DealPending    = "pending"
	DealAccepted   = "accepted"
	DealInProgress = "in_progress"
	DealCompleted  = "completed"
	DealDisputed   = "disputed"
	DealCancelled  = "cancelled"
)

// Deal is a buyer's offer on an approved listing.
type Deal struct {
	ID           string    `db:"id" json:"id"`
	BuyerID      string    `db:"buyer_id" json:"buyerId"`
	FarmerID     string    `db:"farmer_id" json:"farmerId"`
	ListingID    string    `db:"listing_id" json:"listingId"`
	OfferedPrice float64   `db:"offered_price" json:"offeredPrice"`
	Quantity     float64   `db:"quantity" json:"quantity"`
	TotalAmount  float64   `db:"total_amount" json:"totalAmount"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
