package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending                  RentalStatus = "PENDING"
	RentalStatusPaid                     RentalStatus = "PAID"
	RentalStatusAwaitingPickupInspection RentalStatus = "AWAITING_PICKUP_INSPECTION"
	RentalStatusAwaitingStartDate        RentalStatus = "AWAITING_START_DATE"
	RentalStatusActive                   RentalStatus = "ACTIVE"
	RentalStatusAwaitingReturnInspection RentalStatus = "AWAITING_RETURN_INSPECTION"
	RentalStatusPendingReview            RentalStatus = "PENDING_REVIEW"
	RentalStatusCompleted                RentalStatus = "COMPLETED"
	RentalStatusCancelled                RentalStatus = "CANCELLED"
	RentalStatusDeclined                 RentalStatus = "DECLINED"
	RentalStatusDisputed                 RentalStatus = "DISPUTED"
)

// Rental is the aggregate root of a rental transaction. Status is owned
// exclusively by the lifecycle service; every other component only reads it.
type Rental struct {
	ID              int64        `json:"id"`
	ItemID          int64        `json:"item_id"`
	RenterID        int64        `json:"renter_id"`
	OwnerID         int64        `json:"owner_id"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	Status          RentalStatus `json:"status"`
	StatusUpdatedAt time.Time    `json:"status_updated_at"`
	// Milestone timestamps, stamped on first entry to the matching state
	// and never cleared.
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DisputedAt  *time.Time `json:"disputed_at,omitempty"`

	TotalCostCents int32     `json:"total_cost_cents"`
	DepositCents   int32     `json:"deposit_cents"`
	CreatedOn      time.Time `json:"created_on"`
	UpdatedOn      time.Time `json:"updated_on"`
}

// IsTerminal reports whether no further transition can leave the status.
func (s RentalStatus) IsTerminal() bool {
	switch s {
	case RentalStatusCompleted, RentalStatusCancelled, RentalStatusDeclined:
		return true
	}
	return false
}
