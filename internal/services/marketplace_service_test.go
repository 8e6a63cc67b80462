package services

import (
	"context"
	"strings"
	"testing"

	"github.com/greenloop/backend/internal/models"
)

// Listing prices are unsigned on chain; a signed price must fail local
// validation before anything is packed into a transaction.
func TestCreateProductRejectsNegativePrice(t *testing.T) {
	s := &MarketplaceService{}

	_, err := s.CreateProduct(context.Background(), "0x1111111111111111111111111111111111111111", CreateProductRequest{
		TokenPrice: "-5",
		EthPrice:   "1",
		Quantity:   1,
		Name:       "wool coat",
		Condition:  models.ConditionGood,
	})
	if err == nil {
		t.Fatal("negative token price must be rejected before the relay is reached")
	}
	if !strings.Contains(err.Error(), "token price") {
		t.Fatalf("expected a token price error, got %v", err)
	}
}

func TestCreateProductRequiresOnePositivePrice(t *testing.T) {
	s := &MarketplaceService{}

	_, err := s.CreateProduct(context.Background(), "0x1111111111111111111111111111111111111111", CreateProductRequest{
		TokenPrice: "0",
		EthPrice:   "0",
		Quantity:   1,
		Name:       "wool coat",
		Condition:  models.ConditionGood,
	})
	if err == nil || !strings.Contains(err.Error(), "at least one price") {
		t.Fatalf("zero prices must be rejected, got %v", err)
	}
}
