package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/middleware"
	"github.com/greenloop/backend/internal/services"
)

type ExchangeHandler struct {
	marketplace *services.MarketplaceService
	log         *zap.Logger
}

func NewExchangeHandler(marketplace *services.MarketplaceService, log *zap.Logger) *ExchangeHandler {
	return &ExchangeHandler{marketplace: marketplace, log: log}
}

func (h *ExchangeHandler) CreateOffer(c *fiber.Ctx) error {
	var req dto.CreateExchangeOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.marketplace.CreateExchangeOffer(c.Context(), middleware.GetAddress(c),
		req.OfferedProductID, req.WantedProductID, req.TokenTopUp)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *ExchangeHandler) AcceptOffer(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid offer id"})
	}
	actionID, err := h.marketplace.AcceptExchangeOffer(c.Context(), middleware.GetAddress(c), id)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *ExchangeHandler) CancelOffer(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid offer id"})
	}
	actionID, err := h.marketplace.CancelExchangeOffer(c.Context(), middleware.GetAddress(c), id)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}
