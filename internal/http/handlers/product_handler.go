package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/middleware"
	"github.com/greenloop/backend/internal/services"
)

type ProductHandler struct {
	marketplace *services.MarketplaceService
	log         *zap.Logger
}

func NewProductHandler(marketplace *services.MarketplaceService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{marketplace: marketplace, log: log}
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	q := services.ProductQuery{
		Search:    c.Query("search"),
		Condition: c.Query("condition"),
		Gender:    c.Query("gender"),
		Brand:     c.Query("brand"),
		Seller:    c.Query("seller"),
		MaxToken:  c.Query("max_token_price"),
		SortBy:    c.Query("sort"),
		Page:      c.QueryInt("page", 1),
		PageSize:  c.QueryInt("page_size", 20),
	}
	if v := c.Query("categories"); v != "" {
		q.Categories = strings.Split(v, ",")
	}
	if v := c.Query("exchange"); v != "" {
		b := v == "true" || v == "1"
		q.Exchange = &b
	}

	page, err := h.marketplace.ListProducts(c.Context(), q)
	if err != nil {
		h.log.Error("list products failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: page})
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}
	p, err := h.marketplace.GetProduct(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "product not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.marketplace.CreateProduct(c.Context(), middleware.GetAddress(c), services.CreateProductRequest{
		TokenPrice:         req.TokenPrice,
		EthPrice:           req.EthPrice,
		Quantity:           req.Quantity,
		Name:               req.Name,
		Description:        req.Description,
		Size:               req.Size,
		Condition:          req.Condition,
		Brand:              req.Brand,
		Categories:         req.Categories,
		Gender:             req.Gender,
		Image:              req.Image,
		AvailableForTrade:  req.AvailableForTrade,
		ExchangePreference: req.ExchangePreference,
	})
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}
	var req dto.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.marketplace.UpdateProduct(c.Context(), middleware.GetAddress(c), id, services.UpdateProductRequest{
		TokenPrice:  req.TokenPrice,
		EthPrice:    req.EthPrice,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *ProductHandler) UpdateQuantity(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}
	var req dto.UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	actionID, err := h.marketplace.UpdateQuantity(c.Context(), middleware.GetAddress(c), id, req.Quantity)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}
	actionID, err := h.marketplace.DeleteProduct(c.Context(), middleware.GetAddress(c), id)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

func (h *ProductHandler) Purchase(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}
	var req dto.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	actionID, err := h.marketplace.Purchase(c.Context(), middleware.GetAddress(c), id, req.Quantity, req.WithToken)
	if err != nil {
		return statusForServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.ActionResponse{OK: true, ActionID: actionID})
}

// OffersForProduct lists active exchange offers targeting a product.
func (h *ProductHandler) OffersForProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid product id"})
	}
	offers, err := h.marketplace.OffersForProduct(c.Context(), id)
	if err != nil {
		h.log.Error("list offers failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: offers})
}
