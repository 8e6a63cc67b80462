package models

import "time"

type DonationCenter struct {
	ChainID          uint64  `json:"chain_id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Location         string  `json:"location"`
	IsActive         bool    `json:"is_active"`
	AcceptsTokens    bool    `json:"accepts_tokens"`
	AcceptsRecycling bool    `json:"accepts_recycling"`
	IsDonation       bool    `json:"is_donation"` // accepts item donations (vs recycling-only)
	Owner            string  `json:"owner"`
	TotalItems       uint64  `json:"total_items"`
	TotalRecyclingKG string  `json:"total_recycling_kg"` // fixed-point weight counter
	TotalTokens      string  `json:"total_tokens"`       // fixed-point token counter
	Website          *string `json:"website,omitempty"`

	// Enrichment from the center-meta fetcher, not from chain.
	MetaTitle       *string    `json:"meta_title,omitempty"`
	MetaDescription *string    `json:"meta_description,omitempty"`
	MetaImage       *string    `json:"meta_image,omitempty"`
	MetaFetchedAt   *time.Time `json:"meta_fetched_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pending donation statuses. A donation is decided exactly once by the
// center owner; undecided donations expire after a fixed period.
const (
	DonationStatusPending  = "pending"
	DonationStatusApproved = "approved"
	DonationStatusRejected = "rejected"
	DonationStatusExpired  = "expired"
)

var ValidDonationTransitions = map[string][]string{
	DonationStatusPending:  {DonationStatusApproved, DonationStatusRejected, DonationStatusExpired},
	DonationStatusApproved: {},
	DonationStatusRejected: {},
	DonationStatusExpired:  {},
}

func IsValidDonationTransition(from, to string) bool {
	allowed, ok := ValidDonationTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type PendingDonation struct {
	ChainID         uint64    `json:"chain_id"`
	Donor           string    `json:"donor"`
	ItemCount       uint64    `json:"item_count"`
	ItemType        string    `json:"item_type"`
	Description     string    `json:"description"`
	SubmittedAt     time.Time `json:"submitted_at"`
	IsRecycling     bool      `json:"is_recycling"`
	IsTokenDonation bool      `json:"is_token_donation"`
	WeightKG        string    `json:"weight_kg"`     // fixed-point, recycling only
	TokenAmount     string    `json:"token_amount"`  // fixed-point, token donations only
	CenterID        uint64    `json:"center_id"`
	IsApproved      bool      `json:"is_approved"`
	IsProcessed     bool      `json:"is_processed"` // decided (approved or rejected)
	ExpiresAt       time.Time `json:"expires_at"`
}

func (d *PendingDonation) Status() string {
	switch {
	case d.IsProcessed && d.IsApproved:
		return DonationStatusApproved
	case d.IsProcessed:
		return DonationStatusRejected
	case time.Now().After(d.ExpiresAt):
		return DonationStatusExpired
	default:
		return DonationStatusPending
	}
}

// Decidable reports whether approve/reject may still be relayed.
func (d *PendingDonation) Decidable(now time.Time) bool {
	return !d.IsProcessed && !now.After(d.ExpiresAt)
}
