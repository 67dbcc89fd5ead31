package service

import (
	"context"
	"time"

	"rentloop-backend/internal/domain"
)

// Payload carries command-specific data for an Attempt call. Fields not
// relevant to the command are ignored.
type Payload struct {
	PaymentReference    string                 `json:"payment_reference,omitempty"`
	Reason              string                 `json:"reason,omitempty"`
	Description         string                 `json:"description,omitempty"`
	AmountCents         int32                  `json:"amount_cents,omitempty"`
	PhotoURLs           []string               `json:"photo_urls,omitempty"`
	Resolution          domain.ClaimResolution `json:"resolution,omitempty"`
	ResolvedAmountCents int32                  `json:"resolved_amount_cents,omitempty"`
}

// AttemptResult reports a successful transition. NoticeDeferred is
// informational: the transition committed but a notice could not be handed
// to the dispatcher and was dropped to its dead letter.
type AttemptResult struct {
	RentalID       int64               `json:"rental_id"`
	OldStatus      domain.RentalStatus `json:"old_status"`
	NewStatus      domain.RentalStatus `json:"new_status"`
	At             time.Time           `json:"at"`
	NoticeDeferred bool                `json:"notice_deferred,omitempty"`
}

// LifecycleService is the single authorized entry point for mutating a
// rental's status. No other mutation path exists.
type LifecycleService interface {
	Attempt(ctx context.Context, rentalID int64, cmd domain.Command, actor domain.Actor, payload Payload) (*AttemptResult, error)
}

// RentalView is the read surface's aggregate of a rental and its owned rows.
type RentalView struct {
	Rental      domain.Rental        `json:"rental"`
	Item        *domain.Item         `json:"item,omitempty"`
	Inspections []domain.Inspection  `json:"inspections"`
	Claims      []domain.DamageClaim `json:"claims"`
	Ledger      []domain.LedgerEntry `json:"ledger"`
}

// QueryService serves collaborators that read lifecycle state. They must
// never write status.
type QueryService interface {
	GetRental(ctx context.Context, userID, rentalID int64) (*RentalView, error)
	ListRentals(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	ListLendings(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

// EmailService sends one outbound notice. Delivery failure is the
// dispatcher's concern, never the command caller's.
type EmailService interface {
	SendNotice(ctx context.Context, toEmail, toName, subject, body string) error
}
