package domain

import "time"

type InspectionDirection string

const (
	InspectionDirectionOutbound InspectionDirection = "OUTBOUND"
	InspectionDirectionInbound  InspectionDirection = "INBOUND"
)

// Inspection is the signed record of an item's condition at handoff. One per
// direction per rental; immutable once signed. The inspection flow writes
// these rows, the lifecycle service only reads signed/signed_by as guard
// inputs.
type Inspection struct {
	ID        int64               `json:"id"`
	RentalID  int64               `json:"rental_id"`
	Direction InspectionDirection `json:"direction"`
	SignedBy  int64               `json:"signed_by"`
	Signed    bool                `json:"signed"`
	PhotoURLs []string            `json:"photo_urls"`
	Notes     string              `json:"notes"`
	SignedAt  *time.Time          `json:"signed_at,omitempty"`
	CreatedOn time.Time           `json:"created_on"`
}
