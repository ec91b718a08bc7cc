package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/service"
)

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO listings
            (id, farmer_id, crop_name, variety, description, packaging,
             quantity, unit, price_per_unit, images,
             village, district, state, pincode, latitude, longitude,
             contact_phone, phone_verified, sowing_date, harvest_date, expected_yield,
             status, created_at, updated_at, expires_at)
        VALUES
            (:id, :farmer_id, :crop_name, :variety, :description, :packaging,
             :quantity, :unit, :price_per_unit, :images,
             :village, :district, :state, :pincode, :latitude, :longitude,
             :contact_phone, :phone_verified, :sowing_date, :harvest_date, :expected_yield,
             :status, :created_at, :updated_at, :expires_at)
    `, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	err := r.DB.GetContext(ctx, &l, `SELECT * FROM listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %s: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.GetByID: %w", err)
	}
	return &l, nil
}

// SetReviewed stamps an admin decision. Conditional on the row still being
// pending so concurrent reviews cannot overwrite each other; returns
// whether a row matched.
func (r *ListingRepository) SetReviewed(ctx context.Context, id, status, reviewerID string, notes *string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE listings
		SET status = $2, reviewed_by = $3, reviewed_at = $4, admin_notes = $5, updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, status, reviewerID, at, notes)
	if err != nil {
		return false, fmt.Errorf("ListingRepository.SetReviewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ListingRepository.SetReviewed: %w", err)
	}
	return n > 0, nil
}

// SetStatusFromApproved moves an approved listing to sold, expired or
// withdrawn; returns whether a row matched.
func (r *ListingRepository) SetStatusFromApproved(ctx context.Context, id, status string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE listings SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'approved'
	`, id, status, at)
	if err != nil {
		return false, fmt.Errorf("ListingRepository.SetStatusFromApproved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ListingRepository.SetStatusFromApproved: %w", err)
	}
	return n > 0, nil
}

// ReopenForReview starts a fresh review cycle: status back to pending with
// the previous cycle's audit fields cleared, the owner's phone verification
// re-stamped and a new expiry date.
func (r *ListingRepository) ReopenForReview(ctx context.Context, id string, phoneVerified bool, expiresAt, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE listings
		SET status = 'pending', reviewed_by = NULL, reviewed_at = NULL, admin_notes = NULL,
		    phone_verified = $2, expires_at = $3, updated_at = $4
		WHERE id = $1 AND status IN ('rejected', 'withdrawn')
	`, id, phoneVerified, expiresAt, at)
	if err != nil {
		return false, fmt.Errorf("ListingRepository.ReopenForReview: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ListingRepository.ReopenForReview: %w", err)
	}
	return n > 0, nil
}

// ExpireOverdue flips every approved listing past its expiry date to
// expired and returns the affected rows so owners can be notified.
func (r *ListingRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]model.Listing, error) {
	var expired []model.Listing
	err := r.DB.SelectContext(ctx, &expired, `
		UPDATE listings SET status = 'expired', updated_at = $1
		WHERE status = 'approved' AND expires_at < $1
		RETURNING *
	`, now)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.ExpireOverdue: %w", err)
	}
	return expired, nil
}

// Update rewrites a listing's editable fields. Only pending listings may
// be edited by their owner; returns whether a row matched.
func (r *ListingRepository) Update(ctx context.Context, l *model.Listing) (bool, error) {
	res, err := r.DB.NamedExecContext(ctx, `
        UPDATE listings SET
            crop_name      = :crop_name,
            variety        = :variety,
            description    = :description,
            packaging      = :packaging,
            quantity       = :quantity,
            unit           = :unit,
            price_per_unit = :price_per_unit,
            images         = :images,
            village        = :village,
            district       = :district,
            state          = :state,
            pincode        = :pincode,
            latitude       = :latitude,
            longitude      = :longitude,
            contact_phone  = :contact_phone,
            sowing_date    = :sowing_date,
            harvest_date   = :harvest_date,
            expected_yield = :expected_yield,
            updated_at     = :updated_at
        WHERE id = :id AND farmer_id = :farmer_id AND status = 'pending'
    `, l)
	if err != nil {
		return false, fmt.Errorf("ListingRepository.Update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ListingRepository.Update: %w", err)
	}
	return n > 0, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id, farmerID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = $1 AND farmer_id = $2`, id, farmerID)
	if err != nil {
		return false, fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	return n > 0, nil
}

// GetFiltered returns approved listings for the public browse surface.
func (r *ListingRepository) GetFiltered(ctx context.Context, filters map[string]interface{}, limit, offset int) ([]model.Listing, error) {
	query := "SELECT * FROM listings WHERE status = 'approved'"
	args := []interface{}{}
	idx := 1

	if v, ok := filters["crop_name"]; ok {
		query += fmt.Sprintf(" AND crop_name ILIKE $%d", idx)
		args = append(args, v)
		idx++
	}
	if v, ok := filters["district"]; ok {
		query += fmt.Sprintf(" AND district = $%d", idx)
		args = append(args, v)
		idx++
	}
	if v, ok := filters["state"]; ok {
		query += fmt.Sprintf(" AND state = $%d", idx)
		args = append(args, v)
		idx++
	}
	if v, ok := filters["min_price"]; ok {
		query += fmt.Sprintf(" AND price_per_unit >= $%d", idx)
		args = append(args, v)
		idx++
	}
	if v, ok := filters["max_price"]; ok {
		query += fmt.Sprintf(" AND price_per_unit <= $%d", idx)
		args = append(args, v)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	var listings []model.Listing
	if err := r.DB.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("ListingRepository.GetFiltered: %w", err)
	}
	return listings, nil
}

// ListPending returns the whole pending set, oldest submissions first.
// The moderation queue ranks it by trust score before paging, so paging
// does not happen in SQL here.
func (r *ListingRepository) ListPending(ctx context.Context) ([]model.Listing, error) {
	var list []model.Listing
	err := r.DB.SelectContext(ctx, &list, `
		SELECT * FROM listings
		WHERE status = 'pending'
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.ListPending: %w", err)
	}
	return list, nil
}

func (r *ListingRepository) ListByFarmer(ctx context.Context, farmerID string) ([]model.Listing, error) {
	var list []model.Listing
	err := r.DB.SelectContext(ctx, &list, `
		SELECT * FROM listings WHERE farmer_id = $1 ORDER BY created_at DESC, id DESC
	`, farmerID)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.ListByFarmer: %w", err)
	}
	return list, nil
}

func (r *ListingRepository) Recent(ctx context.Context, limit int) ([]model.Listing, error) {
	var list []model.Listing
	err := r.DB.SelectContext(ctx, &list, `
		SELECT * FROM listings ORDER BY created_at DESC, id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.Recent: %w", err)
	}
	return list, nil
}

func (r *ListingRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT COUNT(1) FROM listings`); err != nil {
		return 0, fmt.Errorf("ListingRepository.CountAll: %w", err)
	}
	return count, nil
}

// AppendImage adds one image URL to the listing's images array.
func (r *ListingRepository) AppendImage(ctx context.Context, id, url string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE listings SET images = array_append(images, $2), updated_at = now() WHERE id = $1
	`, id, url)
	if err != nil {
		return fmt.Errorf("ListingRepository.AppendImage: %w", err)
	}
	return nil
}
