package postgres

import (
	"database/sql"

	"rentloop-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.RentalRepository
	repository.InspectionRepository
	repository.ClaimRepository
	repository.LedgerRepository
	repository.NotificationRepository
	repository.UserRepository
	repository.ItemRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		RentalRepository:       NewRentalRepository(db),
		InspectionRepository:   NewInspectionRepository(db),
		ClaimRepository:        NewClaimRepository(db),
		LedgerRepository:       NewLedgerRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		UserRepository:         NewUserRepository(db),
		ItemRepository:         NewItemRepository(db),
	}
}
