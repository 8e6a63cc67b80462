package dto

import "time"

type LoginRequest struct {
	NonceID   string    `json:"nonce_id"`
	Address   string    `json:"address"`
	Domain    string    `json:"domain"`
	IssuedAt  time.Time `json:"issued_at"`
	Signature string    `json:"signature"`
}

type CreateProductRequest struct {
	TokenPrice         string   `json:"token_price"`
	EthPrice           string   `json:"eth_price"`
	Quantity           uint64   `json:"quantity"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Size               string   `json:"size"`
	Condition          string   `json:"condition"`
	Brand              string   `json:"brand"`
	Categories         []string `json:"categories"`
	Gender             string   `json:"gender"`
	Image              string   `json:"image"`
	AvailableForTrade  bool     `json:"available_for_trade"`
	ExchangePreference string   `json:"exchange_preference"`
}

type PurchaseRequest struct {
	Quantity  uint64 `json:"quantity"`
	WithToken bool   `json:"with_token"`
}

type RejectEscrowRequest struct {
	Reason string `json:"reason"`
}

type CreateExchangeOfferRequest struct {
	OfferedProductID uint64 `json:"offered_product_id"`
	WantedProductID  uint64 `json:"wanted_product_id"`
	TokenTopUp       string `json:"token_top_up"`
}

type BuyTokensRequest struct {
	EthAmount string `json:"eth_amount"`
}

type TransferTokensRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type BurnTokensRequest struct {
	Amount string `json:"amount"`
}

type MintTokensRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type SetCapRequest struct {
	Cap string `json:"cap"`
}

type SetRateRequest struct {
	TokensPerEth string `json:"tokens_per_eth"`
}

type UpdateProductRequest struct {
	TokenPrice  string `json:"token_price"`
	EthPrice    string `json:"eth_price"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type UpdateQuantityRequest struct {
	Quantity uint64 `json:"quantity"`
}

type CreatorRequest struct {
	Address string `json:"address"`
}

type RegisterCenterRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	AcceptsTokens    bool   `json:"accepts_tokens"`
	AcceptsRecycling bool   `json:"accepts_recycling"`
	IsDonation       bool   `json:"is_donation"`
	Website          string `json:"website"`
}

type UpdateCenterRequest struct {
	IsActive         bool   `json:"is_active"`
	AcceptsTokens    bool   `json:"accepts_tokens"`
	AcceptsRecycling bool   `json:"accepts_recycling"`
	Website          string `json:"website"`
}

type SubmitDonationRequest struct {
	CenterID    uint64 `json:"center_id"`
	ItemCount   uint64 `json:"item_count"`
	ItemType    string `json:"item_type"`
	Description string `json:"description"`
}

type SubmitRecyclingRequest struct {
	CenterID    uint64 `json:"center_id"`
	WeightKG    string `json:"weight_kg"`
	Description string `json:"description"`
}

type DonateTokensRequest struct {
	CenterID uint64 `json:"center_id"`
	Amount   string `json:"amount"`
}
