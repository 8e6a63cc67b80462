package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/middleware"
	"github.com/greenloop/backend/internal/services"
)

type DonationHandler struct {
	donations *services.DonationService
	log       *zap.Logger
}

func NewDonationHandler(donations *services.DonationService, log *zap.Logger) *DonationHandler {
	return &DonationHandler{donations: donations, log: log}
}

func (h *DonationHandler) ListCenters(c *fiber.Ctx) error {
	q := services.CenterQuery{
		Search:     c.Query("search"),
		ActiveOnly: c.Query("include_inactive") != "true",
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 20),
	}
	if v := c.Query("accepts_tokens"); v != "" {
		b := v == "true" || v == "1"
		q.AcceptsTokens = &b
	}
	if v := c.Query("accepts_recycling"); v != "" {
		b := v == "true" || v == "1"
		q.AcceptsRecycling = &b
	}

	page, err := h.donations.ListCenters(c.Context(), q)
	if err != nil {
		h.log.Error("list centers failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: page})
}

func (h *DonationHandler) GetCenter(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid center id"})
	}
	center, err := h.donations.GetCenter(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "center not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: center})
}

func (h *DonationHandler) RegisterCenter(c *fiber.Ctx) error {
	var req dto.RegisterCenterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.donations.RegisterCenter(c.Context(), middleware.GetAddress(c), services.RegisterCenterRequest{
		Name:             req.Name,
		Description:      req.Description,
		Location:         req.Location,
		AcceptsTokens:    req.AcceptsTokens,
		AcceptsRecycling: req.AcceptsRecycling,
		IsDonation:       req.IsDonation,
		Website:          req.Website,
	})
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *DonationHandler) UpdateCenter(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid center id"})
	}
	var req dto.UpdateCenterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.donations.UpdateCenter(c.Context(), middleware.GetAddress(c), id,
		req.IsActive, req.AcceptsTokens, req.AcceptsRecycling, req.Website)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *DonationHandler) SubmitDonation(c *fiber.Ctx) error {
	var req dto.SubmitDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.donations.SubmitDonation(c.Context(), middleware.GetAddress(c),
		req.CenterID, req.ItemCount, req.ItemType, req.Description)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *DonationHandler) SubmitRecycling(c *fiber.Ctx) error {
	var req dto.SubmitRecyclingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.donations.SubmitRecycling(c.Context(), middleware.GetAddress(c),
		req.CenterID, req.WeightKG, req.Description)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *DonationHandler) DonateTokens(c *fiber.Ctx) error {
	var req dto.DonateTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.donations.DonateTokens(c.Context(), middleware.GetAddress(c), req.CenterID, req.Amount)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *DonationHandler) decide(c *fiber.Ctx, approve bool) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid donation id"})
	}
	actionID, err := h.donations.DecideDonation(c.Context(), middleware.GetAddress(c), id, approve)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *DonationHandler) Approve(c *fiber.Ctx) error { return h.decide(c, true) }
func (h *DonationHandler) Reject(c *fiber.Ctx) error  { return h.decide(c, false) }

// PendingQueue lists undecided donations for a center the caller owns.
func (h *DonationHandler) PendingQueue(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid center id"})
	}
	queue, err := h.donations.PendingQueue(c.Context(), middleware.GetAddress(c), id)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: queue})
}

func (h *DonationHandler) MyDonations(c *fiber.Ctx) error {
	donations, err := h.donations.MyDonations(c.Context(), middleware.GetAddress(c))
	if err != nil {
		h.log.Error("list donations failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: donations})
}
