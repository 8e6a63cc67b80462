package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/chain"
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/db"
	"github.com/greenloop/backend/internal/events"
	apphttp "github.com/greenloop/backend/internal/http"
	"github.com/greenloop/backend/internal/http/handlers"
	"github.com/greenloop/backend/internal/repositories"
	"github.com/greenloop/backend/internal/services"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Chain
	eth, err := chain.Dial(ctx, cfg.RPCURL, uint64(cfg.ChainID), log)
	if err != nil {
		log.Fatal("failed to connect to rpc node", zap.Error(err))
	}
	defer eth.Close()

	contracts, err := chain.NewContracts(cfg.TokenAddress, cfg.MarketAddress, cfg.DonationAddress, cfg.ProfileAddress)
	if err != nil {
		log.Fatal("invalid contract configuration", zap.Error(err))
	}

	reader := chain.NewReader(eth, contracts)
	writer, err := chain.NewWriter(eth, contracts, cfg.OperatorKeyHex, uint64(cfg.ChainID), cfg.ConfirmTimeout, cfg.ConfirmPollRate, log)
	if err != nil {
		log.Fatal("failed to init relayer", zap.Error(err))
	}
	tracker := chain.NewActionTracker(cfg.ActionRetention)

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	walletRepo := repositories.NewWalletRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	exchangeRepo := repositories.NewExchangeRepo(pool)
	donationRepo := repositories.NewDonationRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	walletService := services.NewWalletService(walletRepo, userRepo, auditRepo, cfg, log)
	tokenService := services.NewTokenService(reader, writer, tracker, auditRepo, publisher, cfg, log)
	marketplaceService := services.NewMarketplaceService(productRepo, escrowRepo, exchangeRepo, auditRepo, reader, writer, tracker, publisher, cfg, log)
	donationService := services.NewDonationService(donationRepo, userRepo, auditRepo, reader, writer, tracker, publisher, cfg, log)
	profileService := services.NewProfileService(userRepo, reader, writer, tracker, cfg, log)

	// Background rate polling
	go tokenService.RateSource().Run(ctx)

	// Handlers
	authHandler := handlers.NewAuthHandler(walletService, log)
	userHandler := handlers.NewUserHandler(userRepo, profileService, log)
	tokenHandler := handlers.NewTokenHandler(tokenService, log)
	productHandler := handlers.NewProductHandler(marketplaceService, log)
	escrowHandler := handlers.NewEscrowHandler(marketplaceService, log)
	exchangeHandler := handlers.NewExchangeHandler(marketplaceService, log)
	donationHandler := handlers.NewDonationHandler(donationService, log)
	creatorHandler := handlers.NewCreatorHandler(donationService, log)
	actionHandler := handlers.NewActionHandler(tracker, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb,
		authHandler, userHandler, tokenHandler, productHandler,
		escrowHandler, exchangeHandler, donationHandler, creatorHandler, actionHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
