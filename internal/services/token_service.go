package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/auth"
	"github.com/greenloop/backend/internal/chain"
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/events"
	"github.com/greenloop/backend/internal/models"
	"github.com/greenloop/backend/internal/repositories"
	"github.com/greenloop/backend/internal/token"
)

// ErrActionInFlight is returned when the same entity already has an
// unresolved relayed transaction. Callers surface it as a conflict, not
// a retryable failure.
var ErrActionInFlight = errors.New("an action for this entity is already in flight")

type TokenService struct {
	reader    *chain.Reader
	writer    *chain.Writer
	tracker   *chain.ActionTracker
	rate      *chain.Source[*big.Int]
	auditRepo *repositories.AuditRepo
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewTokenService(
	reader *chain.Reader,
	writer *chain.Writer,
	tracker *chain.ActionTracker,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *TokenService {
	s := &TokenService{
		reader:    reader,
		writer:    writer,
		tracker:   tracker,
		auditRepo: auditRepo,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
	s.rate = chain.NewSource("token_rate", cfg.ReadPollInterval, reader.TokenRate, log)
	return s
}

// RateSource exposes the polled purchase rate for lifecycle wiring.
func (s *TokenService) RateSource() *chain.Source[*big.Int] { return s.rate }

type BalanceView struct {
	Address   string `json:"address"`
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
}

// Balance reads the live token balance of an address.
func (s *TokenService) Balance(ctx context.Context, address string) (*BalanceView, error) {
	if !auth.IsValidAddress(address) {
		return nil, auth.ErrBadAddress
	}
	raw, err := s.reader.TokenBalance(ctx, common.HexToAddress(address))
	if err != nil {
		return nil, fmt.Errorf("read token balance: %w", err)
	}
	return &BalanceView{
		Address:   common.HexToAddress(address).Hex(),
		Raw:       raw.String(),
		Formatted: token.FormatAmount(raw),
	}, nil
}

type EstimateView struct {
	EthAmount    string `json:"eth_amount"`
	TokensPerEth string `json:"tokens_per_eth"`
	TokenAmount  string `json:"token_amount"`
	Formatted    string `json:"formatted"`
}

// Estimate computes the tokens a given ETH spend buys at the cached rate.
func (s *TokenService) Estimate(ethAmount string) (*EstimateView, error) {
	wei, err := token.ParseAmount(ethAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid eth amount: %w", err)
	}
	if wei.Sign() <= 0 {
		return nil, fmt.Errorf("eth amount must be positive")
	}
	rate, rateErr := s.rate.Get()
	if rate == nil {
		if rateErr != nil {
			return nil, fmt.Errorf("token rate unavailable: %w", rateErr)
		}
		return nil, fmt.Errorf("token rate not loaded yet")
	}
	tokens := token.EstimateTokens(wei, rate)
	return &EstimateView{
		EthAmount:    ethAmount,
		TokensPerEth: token.FormatAmount(rate),
		TokenAmount:  tokens.String(),
		Formatted:    token.FormatAmount(tokens),
	}, nil
}

// Buy relays a token purchase. Rate polling pauses while the write is in
// flight and refetches once it settles.
func (s *TokenService) Buy(ctx context.Context, buyer string, ethAmount string) (string, error) {
	if !auth.IsValidAddress(buyer) {
		return "", auth.ErrBadAddress
	}
	wei, err := token.ParseAmount(ethAmount)
	if err != nil {
		return "", fmt.Errorf("invalid eth amount: %w", err)
	}
	if wei.Sign() <= 0 {
		return "", fmt.Errorf("eth amount must be positive")
	}

	actionID := fmt.Sprintf("token:buy:%s", common.HexToAddress(buyer).Hex())
	if s.tracker.InFlight(actionID) {
		return "", ErrActionInFlight
	}

	resume := s.rate.Suspend()
	h := s.writer.BuyTokens(ctx, wei)
	if !s.tracker.Track(actionID, h) {
		resume(ctx)
		return "", ErrActionInFlight
	}

	go func() {
		<-h.Done()
		resume(context.Background())
		_, settleErr := h.Status()
		if settleErr == nil {
			_ = s.publisher.Publish(context.Background(), events.StreamMarketplace, events.Event{
				Type: events.EventTokensPurchased,
				Payload: map[string]any{
					"buyer":      buyer,
					"eth_amount": ethAmount,
					"tx_hash":    h.Hash().Hex(),
				},
			})
		}
		_ = s.auditRepo.Log(context.Background(), models.AuditLog{
			ActorAddr:  &buyer,
			ActorType:  "user",
			Action:     "token_buy_settled",
			EntityType: "token",
			Meta: map[string]any{
				"eth_amount": ethAmount,
				"tx_hash":    h.Hash().Hex(),
				"success":    settleErr == nil,
			},
		})
	}()

	return actionID, nil
}

// Transfer relays a token transfer from the operator wallet.
func (s *TokenService) Transfer(ctx context.Context, actor, to, amount string) (string, error) {
	if !auth.IsValidAddress(actor) || !auth.IsValidAddress(to) {
		return "", auth.ErrBadAddress
	}
	raw, err := token.ParseAmount(amount)
	if err != nil || raw.Sign() <= 0 {
		return "", fmt.Errorf("invalid token amount")
	}

	actionID := fmt.Sprintf("token:transfer:%s", common.HexToAddress(actor).Hex())
	h := s.writer.TransferTokens(ctx, common.HexToAddress(to), raw)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}
	s.settleAudit(h, actor, "token_transfer_settled", map[string]any{"to": to, "amount": amount})
	return actionID, nil
}

// Burn relays a token burn.
func (s *TokenService) Burn(ctx context.Context, actor, amount string) (string, error) {
	if !auth.IsValidAddress(actor) {
		return "", auth.ErrBadAddress
	}
	raw, err := token.ParseAmount(amount)
	if err != nil || raw.Sign() <= 0 {
		return "", fmt.Errorf("invalid token amount")
	}

	actionID := fmt.Sprintf("token:burn:%s", common.HexToAddress(actor).Hex())
	h := s.writer.BurnTokens(ctx, raw)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}
	s.settleAudit(h, actor, "token_burn_settled", map[string]any{"amount": amount})
	return actionID, nil
}

// Mint relays a token mint. Admin only; the contract enforces the same.
func (s *TokenService) Mint(ctx context.Context, actor, to, amount string) (string, error) {
	if !s.cfg.IsAdmin(actor) {
		return "", fmt.Errorf("only an admin may mint tokens")
	}
	if !auth.IsValidAddress(to) {
		return "", auth.ErrBadAddress
	}
	raw, err := token.ParseAmount(amount)
	if err != nil || raw.Sign() <= 0 {
		return "", fmt.Errorf("invalid token amount")
	}

	actionID := "token:mint"
	h := s.writer.MintTokens(ctx, common.HexToAddress(to), raw)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}
	s.settleAudit(h, actor, "token_mint_settled", map[string]any{"to": to, "amount": amount})
	return actionID, nil
}

// SetCap relays a supply cap change. Admin only.
func (s *TokenService) SetCap(ctx context.Context, actor, cap string) (string, error) {
	if !s.cfg.IsAdmin(actor) {
		return "", fmt.Errorf("only an admin may change the supply cap")
	}
	raw, err := token.ParseAmount(cap)
	if err != nil || raw.Sign() <= 0 {
		return "", fmt.Errorf("invalid cap")
	}

	actionID := "token:set_cap"
	h := s.writer.SetTokenCap(ctx, raw)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}
	s.settleAudit(h, actor, "token_cap_settled", map[string]any{"cap": cap})
	return actionID, nil
}

// SetRate relays a purchase rate change and refetches the cached rate
// once the write settles. Admin only.
func (s *TokenService) SetRate(ctx context.Context, actor, tokensPerEth string) (string, error) {
	if !s.cfg.IsAdmin(actor) {
		return "", fmt.Errorf("only an admin may change the purchase rate")
	}
	raw, err := token.ParseAmount(tokensPerEth)
	if err != nil || raw.Sign() <= 0 {
		return "", fmt.Errorf("invalid rate")
	}

	actionID := "token:set_rate"
	if s.tracker.InFlight(actionID) {
		return "", ErrActionInFlight
	}
	resume := s.rate.Suspend()
	h := s.writer.SetTokenRate(ctx, raw)
	if !s.tracker.Track(actionID, h) {
		resume(ctx)
		return "", ErrActionInFlight
	}
	go func() {
		<-h.Done()
		resume(context.Background())
	}()
	s.settleAudit(h, actor, "token_rate_settled", map[string]any{"tokens_per_eth": tokensPerEth})
	return actionID, nil
}

// settleAudit records the outcome of a token write once it settles.
func (s *TokenService) settleAudit(h *chain.TxHandle, actor, action string, meta map[string]any) {
	go func() {
		<-h.Done()
		_, settleErr := h.Status()
		meta["tx_hash"] = h.Hash().Hex()
		meta["success"] = settleErr == nil
		_ = s.auditRepo.Log(context.Background(), models.AuditLog{
			ActorAddr:  &actor,
			ActorType:  "user",
			Action:     action,
			EntityType: "token",
			Meta:       meta,
		})
	}()
}
