package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/chain"
	"github.com/greenloop/backend/internal/http/dto"
)

// ActionHandler exposes the state of queued contract writes so clients can
// poll an action id returned by a 202 response.
type ActionHandler struct {
	tracker *chain.ActionTracker
	log     *zap.Logger
}

func NewActionHandler(tracker *chain.ActionTracker, log *zap.Logger) *ActionHandler {
	return &ActionHandler{tracker: tracker, log: log}
}

func (h *ActionHandler) Get(c *fiber.Ctx) error {
	id := c.Params("*")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "action id is required"})
	}
	view, ok := h.tracker.Get(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "action not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *ActionHandler) List(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.tracker.Snapshot()})
}
