package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/greenloop/backend/internal/http/dto"
	"github.com/greenloop/backend/internal/models"
)

// Static vocabularies the listing form and filter sidebar are built from.
var (
	productCategories = []string{
		"tops", "bottoms", "dresses", "outerwear", "shoes",
		"accessories", "bags", "kids", "sportswear", "other",
	}
	productGenders = []string{"women", "men", "unisex", "kids"}
	sortOptions    = []string{"newest", "oldest", "price_asc", "price_desc", "name"}
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

func (h *MetaHandler) Catalog(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{
		"conditions": models.AllConditions,
		"categories": productCategories,
		"genders":    productGenders,
		"sorts":      sortOptions,
		"themes":     models.AllThemes,
	}})
}
