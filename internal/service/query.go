package service

import (
	"context"
	"errors"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/repository"
)

type queryService struct {
	rentalRepo repository.RentalRepository
	itemRepo   repository.ItemRepository
	inspRepo   repository.InspectionRepository
	claimRepo  repository.ClaimRepository
	ledgerRepo repository.LedgerRepository
}

func NewQueryService(
	rentalRepo repository.RentalRepository,
	itemRepo repository.ItemRepository,
	inspRepo repository.InspectionRepository,
	claimRepo repository.ClaimRepository,
	ledgerRepo repository.LedgerRepository,
) QueryService {
	return &queryService{
		rentalRepo: rentalRepo,
		itemRepo:   itemRepo,
		inspRepo:   inspRepo,
		claimRepo:  claimRepo,
		ledgerRepo: ledgerRepo,
	}
}

func (s *queryService) GetRental(ctx context.Context, userID, rentalID int64) (*RentalView, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rt.RenterID != userID && rt.OwnerID != userID {
		return nil, ErrUnauthorized
	}

	item, err := s.itemRepo.GetByID(ctx, rt.ItemID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	inspections, err := s.inspRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	claims, err := s.claimRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledgerRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	return &RentalView{
		Rental:      *rt,
		Item:        item,
		Inspections: inspections,
		Claims:      claims,
		Ledger:      ledger,
	}, nil
}

func (s *queryService) ListRentals(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return s.rentalRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *queryService) ListLendings(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return s.rentalRepo.ListByOwner(ctx, ownerID, status, page, pageSize)
}
