package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/auth"
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/models"
	"github.com/greenloop/backend/internal/repositories"
)

type WalletService struct {
	walletRepo *repositories.WalletRepo
	userRepo   *repositories.UserRepo
	auditRepo  *repositories.AuditRepo
	cfg        *config.Config
	log        *zap.Logger
}

func NewWalletService(
	walletRepo *repositories.WalletRepo,
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	cfg *config.Config,
	log *zap.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		cfg:        cfg,
		log:        log,
	}
}

// IssueChallenge creates a login nonce the wallet must personal-sign.
func (s *WalletService) IssueChallenge(ctx context.Context) (*models.LoginNonce, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	nonce, err := s.walletRepo.CreateNonce(ctx, hex.EncodeToString(buf), 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("create login nonce: %w", err)
	}
	return nonce, nil
}

type LoginRequest struct {
	NonceID   uuid.UUID `json:"nonce_id"`
	Address   string    `json:"address"`
	Domain    string    `json:"domain"`
	IssuedAt  time.Time `json:"issued_at"`
	Signature string    `json:"signature"` // hex, EIP-191 personal sign
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies the signed challenge and issues a session token. The
// nonce is consumed before signature verification so a racing duplicate
// fails on the nonce, never on a double-spent signature.
func (s *WalletService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if !auth.IsValidAddress(req.Address) {
		return nil, auth.ErrBadAddress
	}
	if !s.cfg.IsAllowedDomain(req.Domain) {
		return nil, fmt.Errorf("domain %q is not allowed", req.Domain)
	}

	nonce, err := s.walletRepo.ConsumeNonce(ctx, req.NonceID, req.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired login nonce: %w", err)
	}

	if err := auth.VerifyProof(req.Address, req.Domain, nonce.Nonce, req.IssuedAt, s.cfg.ProofMaxAge, req.Signature); err != nil {
		return nil, fmt.Errorf("wallet proof verification failed: %w", err)
	}

	checksummed := common.HexToAddress(req.Address).Hex()
	user, err := s.userRepo.UpsertByAddress(ctx, checksummed, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, user.ID, user.Address, s.cfg.JWTExpiration)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorAddr:  &user.Address,
		ActorType:  "user",
		Action:     "wallet_login",
		EntityType: "user",
		EntityID:   ptr(user.ID.String()),
		Meta:       map[string]any{"domain": req.Domain},
	})

	s.log.Info("wallet login",
		zap.String("address", user.Address),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{Token: token, User: user}, nil
}

// PruneNonces drops stale challenges. Called by the worker on a schedule.
func (s *WalletService) PruneNonces(ctx context.Context) error {
	n, err := s.walletRepo.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Debug("pruned login nonces", zap.Int64("count", n))
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
