package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT id, owner_id, name, description, daily_rate_cents, deposit_cents, status, created_on
	          FROM items WHERE id = $1`
	item := &domain.Item{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.OwnerID, &item.Name, &item.Description,
		&item.DailyRateCents, &item.DepositCents, &item.Status, &item.CreatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}
