package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
)

type DealRepository struct {
	DB *sqlx.DB
}

func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{DB: db}
}

func (r *DealRepository) Create(ctx context.Context, d *model.Deal) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO deals
            (id, buyer_id, farmer_id, listing_id, offered_price, quantity,
             total_amount, status, created_at, updated_at)
        VALUES
            (:id, :buyer_id, :farmer_id, :listing_id, :offered_price, :quantity,
             :total_amount, :status, :created_at, :updated_at)
    `, d)
	if err != nil {
		return fmt.Errorf("DealRepository.Create: %w", err)
	}
	return nil
}

func (r *DealRepository) ListByBuyer(ctx context.Context, buyerID string) ([]model.Deal, error) {
	var list []model.Deal
	err := r.DB.SelectContext(ctx, &list, `
		SELECT * FROM deals WHERE buyer_id = $1 ORDER BY created_at DESC, id DESC
	`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("DealRepository.ListByBuyer: %w", err)
	}
	return list, nil
}

func (r *DealRepository) Recent(ctx context.Context, limit int) ([]model.Deal, error) {
	var list []model.Deal
	err := r.DB.SelectContext(ctx, &list, `
		SELECT * FROM deals ORDER BY created_at DESC, id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("DealRepository.Recent: %w", err)
	}
	return list, nil
}

func (r *DealRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT COUNT(1) FROM deals`); err != nil {
		return 0, fmt.Errorf("DealRepository.CountAll: %w", err)
	}
	return count, nil
}
