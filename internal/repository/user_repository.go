package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/service"
)

// UserRepository only reads: accounts are owned by the user service.
type UserRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("UserRepository.GetByID: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) ListAdmins(ctx context.Context) ([]model.User, error) {
	var admins []model.User
	err := r.DB.SelectContext(ctx, &admins, `SELECT * FROM users WHERE role = 'ADMIN'`)
	if err != nil {
		return nil, fmt.Errorf("UserRepository.ListAdmins: %w", err)
	}
	return admins, nil
}

func (r *UserRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT COUNT(1) FROM users`); err != nil {
		return 0, fmt.Errorf("UserRepository.CountAll: %w", err)
	}
	return count, nil
}
