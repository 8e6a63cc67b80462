package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/services"
)

type AuthHandler struct {
	walletService *services.WalletService
	log           *zap.Logger
}

func NewAuthHandler(walletService *services.WalletService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{walletService: walletService, log: log}
}

// Challenge issues a nonce for the wallet to personal-sign.
func (h *AuthHandler) Challenge(c *fiber.Ctx) error {
	nonce, err := h.walletService.IssueChallenge(c.Context())
	if err != nil {
		h.log.Error("issue challenge failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.ChallengeResponse{NonceID: nonce.ID.String(), Nonce: nonce.Nonce})
}

// Login verifies the signed challenge and returns a session token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	nonceID, err := uuid.Parse(req.NonceID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid nonce_id"})
	}

	result, err := h.walletService.Login(c.Context(), services.LoginRequest{
		NonceID:   nonceID,
		Address:   req.Address,
		Domain:    req.Domain,
		IssuedAt:  req.IssuedAt,
		Signature: req.Signature,
	})
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.AuthResponse{Token: result.Token, User: result.User})
}
