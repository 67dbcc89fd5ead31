package domain

import "time"

type ClaimResolution string

const (
	ClaimResolutionOpen     ClaimResolution = "OPEN"
	ClaimResolutionAccepted ClaimResolution = "ACCEPTED"
	ClaimResolutionRejected ClaimResolution = "REJECTED"
)

// DamageClaim is filed by the owner while a rental is under post-return
// review. At most one open claim per rental; it is resolved when the rental
// leaves the disputed state.
type DamageClaim struct {
	ID                  int64           `json:"id"`
	RentalID            int64           `json:"rental_id"`
	FiledBy             int64           `json:"filed_by"`
	Description         string          `json:"description"`
	AmountCents         int32           `json:"amount_cents"`
	PhotoURLs           []string        `json:"photo_urls"`
	Resolution          ClaimResolution `json:"resolution"`
	ResolvedAmountCents int32           `json:"resolved_amount_cents"`
	CreatedOn           time.Time       `json:"created_on"`
	ResolvedOn          *time.Time      `json:"resolved_on,omitempty"`
}
