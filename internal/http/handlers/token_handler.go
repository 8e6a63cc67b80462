package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/middleware"
	"github.com/greenloop/backend/internal/services"
	"github.com/greenloop/backend/internal/token"
)

type TokenHandler struct {
	tokenService *services.TokenService
	log          *zap.Logger
}

func NewTokenHandler(tokenService *services.TokenService, log *zap.Logger) *TokenHandler {
	return &TokenHandler{tokenService: tokenService, log: log}
}

// Balance returns the caller's live token balance.
func (h *TokenHandler) Balance(c *fiber.Ctx) error {
	address := c.Params("address")
	if address == "" {
		address = middleware.GetAddress(c)
	}
	view, err := h.tokenService.Balance(c.Context(), address)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: view})
}

// Rate returns the cached tokens-per-ETH purchase rate.
func (h *TokenHandler) Rate(c *fiber.Ctx) error {
	rate, err := h.tokenService.RateSource().Get()
	if rate == nil {
		msg := "token rate not loaded yet"
		if err != nil {
			msg = err.Error()
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: msg})
	}
	data := fiber.Map{
		"tokens_per_eth": rate.String(),
		"formatted":      token.FormatAmount(rate),
	}
	if err != nil {
		data["stale"] = true
		data["read_error"] = err.Error()
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: data})
}

func (h *TokenHandler) Estimate(c *fiber.Ctx) error {
	eth := c.Query("eth_amount")
	if eth == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "eth_amount is required"})
	}
	view, err := h.tokenService.Estimate(eth)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *TokenHandler) Buy(c *fiber.Ctx) error {
	var req dto.BuyTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.tokenService.Buy(c.Context(), middleware.GetAddress(c), req.EthAmount)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *TokenHandler) Transfer(c *fiber.Ctx) error {
	var req dto.TransferTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.tokenService.Transfer(c.Context(), middleware.GetAddress(c), req.To, req.Amount)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *TokenHandler) Burn(c *fiber.Ctx) error {
	var req dto.BurnTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.tokenService.Burn(c.Context(), middleware.GetAddress(c), req.Amount)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

// Mint, SetCap and SetRate sit behind the admin route group; the service
// checks the actor again on top of that.

func (h *TokenHandler) Mint(c *fiber.Ctx) error {
	var req dto.MintTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.tokenService.Mint(c.Context(), middleware.GetAddress(c), req.To, req.Amount)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *TokenHandler) SetCap(c *fiber.Ctx) error {
	var req dto.SetCapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.tokenService.SetCap(c.Context(), middleware.GetAddress(c), req.Cap)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *TokenHandler) SetRate(c *fiber.Ctx) error {
	var req dto.SetRateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.tokenService.SetRate(c.Context(), middleware.GetAddress(c), req.TokensPerEth)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}
