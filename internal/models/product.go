package models

import "time"

// Product condition values accepted by the marketplace contract.
const (
	ConditionNew       = "new"
	ConditionLikeNew   = "like_new"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionWorn      = "worn"
)

var AllConditions = []string{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionWorn}

func IsValidCondition(c string) bool {
	for _, v := range AllConditions {
		if v == c {
			return true
		}
	}
	return false
}

// Product mirrors the on-chain product struct. Amounts are 18-decimal
// fixed-point integers carried as decimal strings.
type Product struct {
	ChainID           uint64    `json:"chain_id"` // product id on the marketplace contract
	Seller            string    `json:"seller"`
	TokenPrice        string    `json:"token_price"`
	EthPrice          string    `json:"eth_price"`
	Quantity          uint64    `json:"quantity"`
	AvailableQuantity uint64    `json:"available_quantity"` // quantity minus units held in open escrows
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Size              string    `json:"size"`
	Condition         string    `json:"condition"`
	Brand             string    `json:"brand"`
	Categories        []string  `json:"categories"`
	Gender            string    `json:"gender"`
	Image             string    `json:"image"`
	IsAvailableForExchange bool `json:"is_available_for_exchange"`
	ExchangePreference string   `json:"exchange_preference"`
	IsSold            bool      `json:"is_sold"`
	IsDeleted         bool      `json:"is_deleted"`
	ListedAt          time.Time `json:"listed_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CanPurchase reports whether qty units can be requested. The contract
// enforces availableQuantity <= quantity; a request above availability
// must never be submitted.
func (p *Product) CanPurchase(qty uint64) bool {
	if p.IsDeleted || p.IsSold {
		return false
	}
	return qty > 0 && qty <= p.AvailableQuantity
}

type ExchangeOffer struct {
	ChainID          uint64    `json:"chain_id"`
	OfferedProductID uint64    `json:"offered_product_id"`
	WantedProductID  uint64    `json:"wanted_product_id"`
	Offerer          string    `json:"offerer"`
	IsActive         bool      `json:"is_active"`
	TokenTopUp       string    `json:"token_top_up"` // optional fixed-point amount
	EscrowID         *uint64   `json:"escrow_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
