package domain

import "time"

type LedgerEntryType string

const (
	LedgerEntryHold           LedgerEntryType = "HOLD"
	LedgerEntryRelease        LedgerEntryType = "RELEASE"
	LedgerEntryCapture        LedgerEntryType = "CAPTURE"
	LedgerEntryPenalty        LedgerEntryType = "PENALTY"
	LedgerEntryClaimDeduction LedgerEntryType = "CLAIM_DEDUCTION"
)

// LedgerEntry is an append-only record of a fund movement tied to a rental.
// Entries are created as transition side effects and never mutated.
type LedgerEntry struct {
	ID          int64           `json:"id"`
	RentalID    int64           `json:"rental_id"`
	UserID      int64           `json:"user_id"`
	Type        LedgerEntryType `json:"type"`
	AmountCents int32           `json:"amount_cents"` // positive for credit, negative for debit
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	CreatedOn   time.Time       `json:"created_on"`
}
