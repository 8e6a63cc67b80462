// Package chain holds the EVM bindings: typed contract reads, relayed
// writes with a confirmation lifecycle, and the polling read sources the
// API serves from.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/models"
)

// Backend is the subset of the RPC client the bindings use.
// *ethclient.Client satisfies it; tests substitute a fake.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Dial connects to the RPC endpoint and verifies the chain id matches.
func Dial(ctx context.Context, rpcURL string, wantChainID uint64, log *zap.Logger) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	if id.Uint64() != wantChainID {
		client.Close()
		return nil, fmt.Errorf("rpc chain id %d, expected %d", id.Uint64(), wantChainID)
	}
	log.Info("connected to rpc", zap.String("url", rpcURL), zap.Uint64("chain_id", wantChainID))
	return client, nil
}

// Reader performs typed view calls against the GreenLoop contracts.
type Reader struct {
	backend   Backend
	contracts *Contracts
}

func NewReader(backend Backend, contracts *Contracts) *Reader {
	return &Reader{backend: backend, contracts: contracts}
}

func (r *Reader) call(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...interface{}) ([]byte, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	return out, nil
}

// TokenBalance returns the raw fixed-point token balance of an address.
func (r *Reader) TokenBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	out, err := r.call(ctx, r.contracts.Token, &r.contracts.TokenABI, "balanceOf", addr)
	if err != nil {
		return nil, err
	}
	vals, err := r.contracts.TokenABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	return vals[0].(*big.Int), nil
}

// TokenRate returns the current tokens-per-ETH purchase rate.
func (r *Reader) TokenRate(ctx context.Context) (*big.Int, error) {
	out, err := r.call(ctx, r.contracts.Token, &r.contracts.TokenABI, "tokensPerEth")
	if err != nil {
		return nil, err
	}
	vals, err := r.contracts.TokenABI.Unpack("tokensPerEth", out)
	if err != nil {
		return nil, fmt.Errorf("unpack tokensPerEth: %w", err)
	}
	return vals[0].(*big.Int), nil
}

// IsApprovedCreator reports whether an address may register donation
// centers.
func (r *Reader) IsApprovedCreator(ctx context.Context, addr common.Address) (bool, error) {
	out, err := r.call(ctx, r.contracts.Donation, &r.contracts.DonationABI, "isApprovedCreator", addr)
	if err != nil {
		return false, err
	}
	vals, err := r.contracts.DonationABI.Unpack("isApprovedCreator", out)
	if err != nil {
		return false, fmt.Errorf("unpack isApprovedCreator: %w", err)
	}
	return vals[0].(bool), nil
}

func (r *Reader) count(ctx context.Context, to common.Address, contractABI *abi.ABI, method string) (uint64, error) {
	out, err := r.call(ctx, to, contractABI, method)
	if err != nil {
		return 0, err
	}
	vals, err := contractABI.Unpack(method, out)
	if err != nil {
		return 0, fmt.Errorf("unpack %s: %w", method, err)
	}
	return vals[0].(*big.Int).Uint64(), nil
}

func (r *Reader) ProductCount(ctx context.Context) (uint64, error) {
	return r.count(ctx, r.contracts.Market, &r.contracts.MarketABI, "productCount")
}

func (r *Reader) EscrowCount(ctx context.Context) (uint64, error) {
	return r.count(ctx, r.contracts.Market, &r.contracts.MarketABI, "escrowCount")
}

func (r *Reader) ExchangeOfferCount(ctx context.Context) (uint64, error) {
	return r.count(ctx, r.contracts.Market, &r.contracts.MarketABI, "exchangeOfferCount")
}

func (r *Reader) CenterCount(ctx context.Context) (uint64, error) {
	return r.count(ctx, r.contracts.Donation, &r.contracts.DonationABI, "centerCount")
}

func (r *Reader) PendingDonationCount(ctx context.Context) (uint64, error) {
	return r.count(ctx, r.contracts.Donation, &r.contracts.DonationABI, "pendingDonationCount")
}

type productTuple struct {
	Id                     *big.Int
	Seller                 common.Address
	TokenPrice             *big.Int
	EthPrice               *big.Int
	Quantity               *big.Int
	AvailableQuantity      *big.Int
	Name                   string
	Description            string
	Size                   string
	Condition              string
	Brand                  string
	Categories             string
	Gender                 string
	Image                  string
	IsAvailableForExchange bool
	ExchangePreference     string
	IsSold                 bool
	IsDeleted              bool
	ListedAt               *big.Int
}

// GetProduct reads one product by its on-chain id.
func (r *Reader) GetProduct(ctx context.Context, id uint64) (*models.Product, error) {
	out, err := r.call(ctx, r.contracts.Market, &r.contracts.MarketABI, "getProduct", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	var raw productTuple
	if err := r.contracts.MarketABI.UnpackIntoInterface(&raw, "getProduct", out); err != nil {
		return nil, fmt.Errorf("unpack getProduct: %w", err)
	}
	return &models.Product{
		ChainID:                raw.Id.Uint64(),
		Seller:                 raw.Seller.Hex(),
		TokenPrice:             raw.TokenPrice.String(),
		EthPrice:               raw.EthPrice.String(),
		Quantity:               raw.Quantity.Uint64(),
		AvailableQuantity:      raw.AvailableQuantity.Uint64(),
		Name:                   raw.Name,
		Description:            raw.Description,
		Size:                   raw.Size,
		Condition:              raw.Condition,
		Brand:                  raw.Brand,
		Categories:             splitCategories(raw.Categories),
		Gender:                 raw.Gender,
		Image:                  raw.Image,
		IsAvailableForExchange: raw.IsAvailableForExchange,
		ExchangePreference:     raw.ExchangePreference,
		IsSold:                 raw.IsSold,
		IsDeleted:              raw.IsDeleted,
		ListedAt:               time.Unix(raw.ListedAt.Int64(), 0).UTC(),
	}, nil
}

// splitCategories decodes the comma-packed category string the contract
// stores.
func splitCategories(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type escrowTuple struct {
	Id                *big.Int
	ProductId         *big.Int
	Buyer             common.Address
	Seller            common.Address
	Amount            *big.Int
	Deadline          *big.Int
	Quantity          *big.Int
	BuyerConfirmed    bool
	SellerConfirmed   bool
	Completed         bool
	Refunded          bool
	IsToken           bool
	IsExchange        bool
	ExchangeProductId *big.Int
	TokenTopUp        *big.Int
	Rejected          bool
	RejectionReason   string
}

// GetEscrow reads one escrow by its on-chain id.
func (r *Reader) GetEscrow(ctx context.Context, id uint64) (*models.Escrow, error) {
	out, err := r.call(ctx, r.contracts.Market, &r.contracts.MarketABI, "getEscrow", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	var raw escrowTuple
	if err := r.contracts.MarketABI.UnpackIntoInterface(&raw, "getEscrow", out); err != nil {
		return nil, fmt.Errorf("unpack getEscrow: %w", err)
	}
	e := &models.Escrow{
		ChainID:         raw.Id.Uint64(),
		ProductID:       raw.ProductId.Uint64(),
		Buyer:           raw.Buyer.Hex(),
		Seller:          raw.Seller.Hex(),
		Amount:          raw.Amount.String(),
		Deadline:        time.Unix(raw.Deadline.Int64(), 0).UTC(),
		Quantity:        raw.Quantity.Uint64(),
		BuyerConfirmed:  raw.BuyerConfirmed,
		SellerConfirmed: raw.SellerConfirmed,
		Completed:       raw.Completed,
		Refunded:        raw.Refunded,
		IsToken:         raw.IsToken,
		IsExchange:      raw.IsExchange,
		TokenTopUp:      raw.TokenTopUp.String(),
		Rejected:        raw.Rejected,
	}
	if raw.IsExchange {
		pid := raw.ExchangeProductId.Uint64()
		e.ExchangeProductID = &pid
	}
	if raw.RejectionReason != "" {
		reason := raw.RejectionReason
		e.RejectionReason = &reason
	}
	return e, nil
}

type offerTuple struct {
	Id               *big.Int
	OfferedProductId *big.Int
	WantedProductId  *big.Int
	Offerer          common.Address
	IsActive         bool
	TokenTopUp       *big.Int
	EscrowId         *big.Int
	CreatedAt        *big.Int
}

// GetExchangeOffer reads one exchange offer by its on-chain id.
func (r *Reader) GetExchangeOffer(ctx context.Context, id uint64) (*models.ExchangeOffer, error) {
	out, err := r.call(ctx, r.contracts.Market, &r.contracts.MarketABI, "getExchangeOffer", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	var raw offerTuple
	if err := r.contracts.MarketABI.UnpackIntoInterface(&raw, "getExchangeOffer", out); err != nil {
		return nil, fmt.Errorf("unpack getExchangeOffer: %w", err)
	}
	o := &models.ExchangeOffer{
		ChainID:          raw.Id.Uint64(),
		OfferedProductID: raw.OfferedProductId.Uint64(),
		WantedProductID:  raw.WantedProductId.Uint64(),
		Offerer:          raw.Offerer.Hex(),
		IsActive:         raw.IsActive,
		TokenTopUp:       raw.TokenTopUp.String(),
		CreatedAt:        time.Unix(raw.CreatedAt.Int64(), 0).UTC(),
	}
	if raw.EscrowId.Sign() > 0 {
		eid := raw.EscrowId.Uint64()
		o.EscrowID = &eid
	}
	return o, nil
}

type centerTuple struct {
	Id                   *big.Int
	Name                 string
	Description          string
	Location             string
	IsActive             bool
	AcceptsTokens        bool
	AcceptsRecycling     bool
	IsDonation           bool
	Owner                common.Address
	TotalItems           *big.Int
	TotalRecyclingWeight *big.Int
	TotalTokensReceived  *big.Int
	Website              string
}

// GetCenter reads one donation center by its on-chain id.
func (r *Reader) GetCenter(ctx context.Context, id uint64) (*models.DonationCenter, error) {
	out, err := r.call(ctx, r.contracts.Donation, &r.contracts.DonationABI, "getCenter", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	var raw centerTuple
	if err := r.contracts.DonationABI.UnpackIntoInterface(&raw, "getCenter", out); err != nil {
		return nil, fmt.Errorf("unpack getCenter: %w", err)
	}
	c := &models.DonationCenter{
		ChainID:          raw.Id.Uint64(),
		Name:             raw.Name,
		Description:      raw.Description,
		Location:         raw.Location,
		IsActive:         raw.IsActive,
		AcceptsTokens:    raw.AcceptsTokens,
		AcceptsRecycling: raw.AcceptsRecycling,
		IsDonation:       raw.IsDonation,
		Owner:            raw.Owner.Hex(),
		TotalItems:       raw.TotalItems.Uint64(),
		TotalRecyclingKG: raw.TotalRecyclingWeight.String(),
		TotalTokens:      raw.TotalTokensReceived.String(),
	}
	if raw.Website != "" {
		w := raw.Website
		c.Website = &w
	}
	return c, nil
}

type donationTuple struct {
	Id              *big.Int
	Donor           common.Address
	ItemCount       *big.Int
	ItemType        string
	Description     string
	Timestamp       *big.Int
	IsRecycling     bool
	IsTokenDonation bool
	WeightInKg      *big.Int
	TokenAmount     *big.Int
	CenterId        *big.Int
	IsApproved      bool
	IsProcessed     bool
}

// GetPendingDonation reads one pending donation by its on-chain id. The
// expiry deadline is derived off-chain from the submission timestamp.
func (r *Reader) GetPendingDonation(ctx context.Context, id uint64, expiry time.Duration) (*models.PendingDonation, error) {
	out, err := r.call(ctx, r.contracts.Donation, &r.contracts.DonationABI, "getPendingDonation", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	var raw donationTuple
	if err := r.contracts.DonationABI.UnpackIntoInterface(&raw, "getPendingDonation", out); err != nil {
		return nil, fmt.Errorf("unpack getPendingDonation: %w", err)
	}
	submitted := time.Unix(raw.Timestamp.Int64(), 0).UTC()
	return &models.PendingDonation{
		ChainID:         raw.Id.Uint64(),
		Donor:           raw.Donor.Hex(),
		ItemCount:       raw.ItemCount.Uint64(),
		ItemType:        raw.ItemType,
		Description:     raw.Description,
		SubmittedAt:     submitted,
		IsRecycling:     raw.IsRecycling,
		IsTokenDonation: raw.IsTokenDonation,
		WeightKG:        raw.WeightInKg.String(),
		TokenAmount:     raw.TokenAmount.String(),
		CenterID:        raw.CenterId.Uint64(),
		IsApproved:      raw.IsApproved,
		IsProcessed:     raw.IsProcessed,
		ExpiresAt:       submitted.Add(expiry),
	}, nil
}

type profileTuple struct {
	DisplayName string
	AvatarURI   string
	Exists      bool
}

// GetProfile reads the on-chain profile record for an address. Returns
// nil without error when no profile is set.
func (r *Reader) GetProfile(ctx context.Context, addr common.Address) (*models.UserProfile, error) {
	out, err := r.call(ctx, r.contracts.Profile, &r.contracts.ProfileABI, "getUserProfile", addr)
	if err != nil {
		return nil, err
	}
	var raw profileTuple
	if err := r.contracts.ProfileABI.UnpackIntoInterface(&raw, "getUserProfile", out); err != nil {
		return nil, fmt.Errorf("unpack getUserProfile: %w", err)
	}
	if !raw.Exists {
		return nil, nil
	}
	p := &models.UserProfile{Address: addr.Hex()}
	if raw.DisplayName != "" {
		p.DisplayName = &raw.DisplayName
	}
	if raw.AvatarURI != "" {
		p.AvatarURI = &raw.AvatarURI
	}
	return p, nil
}

// GetAesthetics reads the on-chain theme preferences for an address.
func (r *Reader) GetAesthetics(ctx context.Context, addr common.Address) (theme string, reducedMotion bool, err error) {
	out, err := r.call(ctx, r.contracts.Profile, &r.contracts.ProfileABI, "getUserAesthetics", addr)
	if err != nil {
		return "", false, err
	}
	var raw struct {
		Theme         string
		ReducedMotion bool
	}
	if err := r.contracts.ProfileABI.UnpackIntoInterface(&raw, "getUserAesthetics", out); err != nil {
		return "", false, fmt.Errorf("unpack getUserAesthetics: %w", err)
	}
	return raw.Theme, raw.ReducedMotion, nil
}
