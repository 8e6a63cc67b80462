package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/http/handlers"
	"github.com/greenloop/backend/internal/middleware"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tokenHandler *handlers.TokenHandler,
	productHandler *handlers.ProductHandler,
	escrowHandler *handlers.EscrowHandler,
	exchangeHandler *handlers.ExchangeHandler,
	donationHandler *handlers.DonationHandler,
	creatorHandler *handlers.CreatorHandler,
	actionHandler *handlers.ActionHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/challenge", authHandler.Challenge)
	api.Post("/auth/login", authHandler.Login)

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Meta (public, no auth required)
	metaHandler := handlers.NewMetaHandler()
	api.Get("/meta/catalog", metaHandler.Catalog)

	// Public reads
	api.Get("/products", productHandler.ListProducts)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Get("/products/:id/offers", productHandler.OffersForProduct)
	api.Get("/centers", donationHandler.ListCenters)
	api.Get("/centers/:id", donationHandler.GetCenter)
	api.Get("/token/rate", tokenHandler.Rate)
	api.Get("/token/estimate", tokenHandler.Estimate)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Post("/me/ping", userHandler.Ping)
	protected.Get("/profile", userHandler.GetProfile)
	protected.Get("/profile/:address", userHandler.GetProfile)
	protected.Put("/profile", userHandler.UpdateProfile)

	// Token
	protected.Get("/token/balance", tokenHandler.Balance)
	protected.Get("/token/balance/:address", tokenHandler.Balance)
	protected.Post("/token/buy", tokenHandler.Buy)
	protected.Post("/token/transfer", tokenHandler.Transfer)
	protected.Post("/token/burn", tokenHandler.Burn)

	// Products
	protected.Post("/products", productHandler.CreateProduct)
	protected.Put("/products/:id", productHandler.UpdateProduct)
	protected.Post("/products/:id/quantity", productHandler.UpdateQuantity)
	protected.Delete("/products/:id", productHandler.DeleteProduct)
	protected.Post("/products/:id/purchase", productHandler.Purchase)

	// Escrows
	protected.Get("/escrows", escrowHandler.ListMine)
	protected.Get("/escrows/:id", escrowHandler.GetEscrow)
	protected.Post("/escrows/:id/confirm", escrowHandler.Confirm)
	protected.Post("/escrows/:id/cancel", escrowHandler.Cancel)
	protected.Post("/escrows/:id/reject", escrowHandler.Reject)

	// Exchange offers
	protected.Post("/exchange-offers", exchangeHandler.CreateOffer)
	protected.Post("/exchange-offers/:id/accept", exchangeHandler.AcceptOffer)
	protected.Post("/exchange-offers/:id/cancel", exchangeHandler.CancelOffer)

	// Donation centers
	protected.Post("/centers", donationHandler.RegisterCenter)
	protected.Put("/centers/:id", donationHandler.UpdateCenter)
	protected.Get("/centers/:id/pending", donationHandler.PendingQueue)

	// Donations
	protected.Post("/donations", donationHandler.SubmitDonation)
	protected.Post("/donations/recycling", donationHandler.SubmitRecycling)
	protected.Post("/donations/tokens", donationHandler.DonateTokens)
	protected.Get("/donations/my", donationHandler.MyDonations)
	protected.Post("/donations/:id/approve", donationHandler.Approve)
	protected.Post("/donations/:id/reject", donationHandler.Reject)

	// Queued write status
	protected.Get("/actions", actionHandler.List)
	protected.Get("/actions/*", actionHandler.Get)

	// Admin
	admin := protected.Group("/admin", middleware.AdminMiddleware(cfg))
	admin.Post("/creators/grant", creatorHandler.Grant)
	admin.Post("/creators/revoke", creatorHandler.Revoke)
	admin.Post("/token/mint", tokenHandler.Mint)
	admin.Post("/token/cap", tokenHandler.SetCap)
	admin.Post("/token/rate", tokenHandler.SetRate)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
