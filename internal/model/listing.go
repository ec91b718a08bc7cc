package model

import (
	"time"

	"github.com/lib/pq"
)

// Listing statuses. A listing starts as pending; an admin moves it to
// approved or rejected; approved listings can later become sold, expired
// or withdrawn.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusSold      = "sold"
	StatusExpired   = "expired"
	StatusWithdrawn = "withdrawn"
)

type Listing struct {
	ID            string         `db:"id" json:"id"`
	FarmerID      string         `db:"farmer_id" json:"farmerId"`
	CropName      string         `db:"crop_name" json:"cropName"`
	Variety       string         `db:"variety" json:"variety"`
	Description   string         `db:"description" json:"description"`
	Packaging     string         `db:"packaging" json:"packaging"`
	Quantity      float64        `db:"quantity" json:"quantity"`
	Unit          string         `db:"unit" json:"unit"`
	PricePerUnit  float64        `db:"price_per_unit" json:"pricePerUnit"`
	Images        pq.StringArray `db:"images" json:"images"`
	Village       string         `db:"village" json:"village"`
	District      string         `db:"district" json:"district"`
	State         string         `db:"state" json:"state"`
	Pincode       string         `db:"pincode" json:"pincode"`
	Latitude      *float64       `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64       `db:"longitude" json:"longitude,omitempty"`
	ContactPhone  string         `db:"contact_phone" json:"contactPhone"`
	PhoneVerified bool           `db:"phone_verified" json:"phoneVerified"`
	SowingDate    *time.Time     `db:"sowing_date" json:"sowingDate,omitempty"`
	HarvestDate   *time.Time     `db:"harvest_date" json:"harvestDate,omitempty"`
	ExpectedYield string         `db:"expected_yield" json:"expectedYield"`
	Status        string         `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
	ExpiresAt     time.Time      `db:"expires_at" json:"expiresAt"`
	ReviewedBy    *string        `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time     `db:"reviewed_at" json:"reviewedAt,omitempty"`
	AdminNotes    *string        `db:"admin_notes" json:"adminNotes,omitempty"`
}

// PrimaryImage returns the first image URL, if any. The first image is
// treated as the primary one for display and verification scoring.
func (l *Listing) PrimaryImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// Terminal reports whether the listing has left the active
// pending/approved flow. A terminal listing changes again only through an
// explicit resubmission.
func (l *Listing) Terminal() bool {
	return l.Status != StatusPending && l.Status != StatusApproved
}

// VerificationAssessment is a derived view over a listing: a 0-100 trust
// score plus the labels of the rules that contributed to it. It is
// recomputed on demand and never stored as source of truth.
type VerificationAssessment struct {
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}
