package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/middleware"
	"github.com/greenloop/backend/internal/services"
)

// CreatorHandler exposes the verified-creator allowlist. Mounted under
// the admin route group.
type CreatorHandler struct {
	donations *services.DonationService
	log       *zap.Logger
}

func NewCreatorHandler(donations *services.DonationService, log *zap.Logger) *CreatorHandler {
	return &CreatorHandler{donations: donations, log: log}
}

func (h *CreatorHandler) Grant(c *fiber.Ctx) error {
	return h.set(c, true)
}

func (h *CreatorHandler) Revoke(c *fiber.Ctx) error {
	return h.set(c, false)
}

func (h *CreatorHandler) set(c *fiber.Ctx, grant bool) error {
	var req dto.CreatorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.donations.SetCreatorStatus(c.Context(), middleware.GetAddress(c), req.Address, grant)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}
