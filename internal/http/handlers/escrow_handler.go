package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/middleware"
	"github.com/greenloop/backend/internal/services"
)

type EscrowHandler struct {
	marketplace *services.MarketplaceService
	log         *zap.Logger
}

func NewEscrowHandler(marketplace *services.MarketplaceService, log *zap.Logger) *EscrowHandler {
	return &EscrowHandler{marketplace: marketplace, log: log}
}

func (h *EscrowHandler) ListMine(c *fiber.Ctx) error {
	page, err := h.marketplace.MyEscrows(c.Context(), middleware.GetAddress(c),
		c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		h.log.Error("list escrows failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: page})
}

func (h *EscrowHandler) GetEscrow(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}
	e, err := h.marketplace.GetEscrow(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: e})
}

func (h *EscrowHandler) resolve(c *fiber.Ctx, action services.EscrowAction, reason string) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}
	actionID, err := h.marketplace.ResolveEscrow(c.Context(), middleware.GetAddress(c), id, action, reason)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *EscrowHandler) Confirm(c *fiber.Ctx) error {
	return h.resolve(c, services.EscrowActionConfirm, "")
}

func (h *EscrowHandler) Cancel(c *fiber.Ctx) error {
	return h.resolve(c, services.EscrowActionCancel, "")
}

func (h *EscrowHandler) Reject(c *fiber.Ctx) error {
	var req dto.RejectEscrowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	return h.resolve(c, services.EscrowActionReject, req.Reason)
}
