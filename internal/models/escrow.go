package models

import "time"

// Escrow statuses as observed from chain state. The contract is the sole
// authority over transitions; this map only mirrors the moves it allows so
// the cache reconciler can tell a stale read from an impossible one.
const (
	EscrowStatusCreated         = "created"
	EscrowStatusBuyerConfirmed  = "buyer_confirmed"
	EscrowStatusSellerConfirmed = "seller_confirmed"
	EscrowStatusCompleted       = "completed"
	EscrowStatusRefunded        = "refunded"
	EscrowStatusRejected        = "rejected"
)

// Valid state transitions: from -> []to. Buyer and seller confirm
// independently; completion requires both, so either single-confirmed
// state may advance to completed when the other side confirms.
var ValidEscrowTransitions = map[string][]string{
	EscrowStatusCreated:         {EscrowStatusBuyerConfirmed, EscrowStatusSellerConfirmed, EscrowStatusRefunded, EscrowStatusRejected},
	EscrowStatusBuyerConfirmed:  {EscrowStatusCompleted, EscrowStatusRefunded, EscrowStatusRejected},
	EscrowStatusSellerConfirmed: {EscrowStatusCompleted, EscrowStatusRefunded, EscrowStatusRejected},
	EscrowStatusCompleted:       {},
	EscrowStatusRefunded:        {},
	EscrowStatusRejected:        {},
}

func IsValidEscrowTransition(from, to string) bool {
	allowed, ok := ValidEscrowTransitions[from]
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

// Escrow mirrors the on-chain escrow struct. Amount and TokenTopUp are
// 18-decimal fixed-point integers carried as decimal strings.
type Escrow struct {
	ChainID           uint64    `json:"chain_id"`
	ProductID         uint64    `json:"product_id"`
	Buyer             string    `json:"buyer"`
	Seller            string    `json:"seller"`
	Amount            string    `json:"amount"`
	Deadline          time.Time `json:"deadline"`
	Quantity          uint64    `json:"quantity"`
	BuyerConfirmed    bool      `json:"buyer_confirmed"`
	SellerConfirmed   bool      `json:"seller_confirmed"`
	Completed         bool      `json:"completed"`
	Refunded          bool      `json:"refunded"`
	IsToken           bool      `json:"is_token"` // paid in tokens rather than ETH
	IsExchange        bool      `json:"is_exchange"`
	ExchangeProductID *uint64   `json:"exchange_product_id,omitempty"`
	TokenTopUp        string    `json:"token_top_up"`
	Rejected          bool      `json:"rejected"`
	RejectionReason   *string   `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Status derives the state-machine position from the flag set the
// contract exposes.
func (e *Escrow) Status() string {
	switch {
	case e.Rejected:
		return EscrowStatusRejected
	case e.Refunded:
		return EscrowStatusRefunded
	case e.Completed:
		return EscrowStatusCompleted
	case e.BuyerConfirmed:
		return EscrowStatusBuyerConfirmed
	case e.SellerConfirmed:
		return EscrowStatusSellerConfirmed
	default:
		return EscrowStatusCreated
	}
}

// IsTerminal reports whether no further transitions are possible.
func (e *Escrow) IsTerminal() bool {
	return len(ValidEscrowTransitions[e.Status()]) == 0
}

// PastDeadline reports whether the escrow deadline has elapsed without
// reaching a terminal state.
func (e *Escrow) PastDeadline(now time.Time) bool {
	return !e.IsTerminal() && now.After(e.Deadline)
}
