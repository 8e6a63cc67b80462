package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/middleware"
	"github.com/greenloop/backend/internal/repositories"
	"github.com/greenloop/backend/internal/services"
)

type UserHandler struct {
	userRepo       *repositories.UserRepo
	profileService *services.ProfileService
	log            *zap.Logger
}

func NewUserHandler(userRepo *repositories.UserRepo, profileService *services.ProfileService, log *zap.Logger) *UserHandler {
	return &UserHandler{userRepo: userRepo, profileService: profileService, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.userRepo.GetByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *UserHandler) Ping(c *fiber.Ctx) error {
	_ = h.userRepo.UpdateLastActive(c.Context(), middleware.GetUserID(c))
	return c.JSON(dto.SuccessResponse{OK: true})
}

// GetProfile returns the merged on-chain and local profile for any
// address, the caller's when none is given.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	address := c.Params("address")
	if address == "" {
		address = middleware.GetAddress(c)
	}
	profile, err := h.profileService.Get(c.Context(), address)
	if err != nil && profile == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	resp := fiber.Map{"profile": profile}
	if err != nil {
		// Partial result: local settings loaded, chain read failed.
		resp["chain_error"] = err.Error()
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: resp})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req services.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.profileService.Update(c.Context(), middleware.GetAddress(c), req)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}
