package domain

import "time"

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "AVAILABLE"
	ItemStatusUnavailable ItemStatus = "UNAVAILABLE"
	ItemStatusRented      ItemStatus = "RENTED"
)

// Item is the rentable good a rental record points at. The lifecycle engine
// only reads it; listing management lives elsewhere.
type Item struct {
	ID             int64      `json:"id"`
	OwnerID        int64      `json:"owner_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	DailyRateCents int32      `json:"daily_rate_cents"`
	DepositCents   int32      `json:"deposit_cents"`
	Status         ItemStatus `json:"status"`
	CreatedOn      time.Time  `json:"created_on"`
}
