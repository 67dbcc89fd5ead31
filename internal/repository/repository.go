package repository

import (
	"context"
	"time"

	"rentloop-backend/internal/domain"
)

// TransitionArgs describes one atomic status transition. The repository
// applies the compare-and-swap on (ID, From) and, in the same transaction,
// stamps milestones and writes the dependent rows. From and To must be a
// pair the transition table allows; the store re-checks that independently
// of the caller.
type TransitionArgs struct {
	RentalID int64
	From     domain.RentalStatus
	To       domain.RentalStatus
	At       time.Time

	SetActivatedAt bool
	SetCompletedAt bool
	SetDisputedAt  bool

	// Dependent rows written inside the CAS transaction.
	LedgerEntries []domain.LedgerEntry
	OpenClaim     *domain.DamageClaim
	ResolveClaim  *ClaimResolutionArgs
}

// ClaimResolutionArgs closes the rental's open claim as part of a transition.
type ClaimResolutionArgs struct {
	Resolution          domain.ClaimResolution
	ResolvedAmountCents int32
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int64) (*domain.Rental, error)
	// Transition is the only write path to the status column.
	Transition(ctx context.Context, args TransitionArgs) error
	ListDueForActivation(ctx context.Context, now time.Time) ([]domain.Rental, error)
	ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

type InspectionRepository interface {
	Create(ctx context.Context, insp *domain.Inspection) error
	GetByRentalAndDirection(ctx context.Context, rentalID int64, direction domain.InspectionDirection) (*domain.Inspection, error)
	ListByRental(ctx context.Context, rentalID int64) ([]domain.Inspection, error)
	// Sign is scoped to the rental: an inspection ID belonging to a
	// different rental is ErrNotFound, not a signature.
	Sign(ctx context.Context, rentalID, inspectionID, signedBy int64, signedAt time.Time) error
}

type ClaimRepository interface {
	GetOpenByRental(ctx context.Context, rentalID int64) (*domain.DamageClaim, error)
	ListByRental(ctx context.Context, rentalID int64) ([]domain.DamageClaim, error)
}

type LedgerRepository interface {
	ListByRental(ctx context.Context, rentalID int64) ([]domain.LedgerEntry, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.LedgerEntry, int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
}
