package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/services"
)

// statusForServiceError maps service failures to HTTP statuses. An
// in-flight duplicate is a conflict; everything else from validation is
// a bad request.
func statusForServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrActionInFlight) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
}
