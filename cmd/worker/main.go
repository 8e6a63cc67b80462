package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/chain"
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/db"
	"github.com/greenloop/backend/internal/events"
	"github.com/greenloop/backend/internal/repositories"
	"github.com/greenloop/backend/internal/services"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

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

	// Repos
	userRepo := repositories.NewUserRepo(pool)
	walletRepo := repositories.NewWalletRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	walletService := services.NewWalletService(walletRepo, userRepo, auditRepo, cfg, log)

	log.Info("worker started")

	sweepTicker := time.NewTicker(cfg.EscrowSweepInterval)
	nonceTicker := time.NewTicker(10 * time.Minute)
	defer sweepTicker.Stop()
	defer nonceTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			runEscrowSweep(ctx, escrowRepo, reader, writer, publisher, log)
		case <-nonceTicker.C:
			if err := walletService.PruneNonces(ctx); err != nil {
				log.Error("failed to prune login nonces", zap.Error(err))
			}
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// runEscrowSweep refunds escrows whose deadline passed without both
// confirmations. The contract re-checks the deadline, so a stale cache
// row at worst costs one reverted transaction.
func runEscrowSweep(
	ctx context.Context,
	escrowRepo *repositories.EscrowRepo,
	reader *chain.Reader,
	writer *chain.Writer,
	publisher events.Publisher,
	log *zap.Logger,
) {
	expired, err := escrowRepo.ListExpired(ctx, time.Now())
	if err != nil {
		log.Error("failed to list expired escrows", zap.Error(err))
		return
	}

	for _, cached := range expired {
		// Confirm against live chain state before spending gas.
		e, err := reader.GetEscrow(ctx, cached.ChainID)
		if err != nil {
			log.Error("failed to read escrow", zap.Uint64("escrow_id", cached.ChainID), zap.Error(err))
			continue
		}
		if !e.PastDeadline(time.Now()) {
			// Cache was stale; refresh and move on.
			_ = escrowRepo.Upsert(ctx, e)
			continue
		}

		log.Info("refunding expired escrow",
			zap.Uint64("escrow_id", e.ChainID),
			zap.Time("deadline", e.Deadline),
		)

		h := writer.RefundExpiredEscrow(ctx, e.ChainID)
		if err := h.Wait(ctx); err != nil {
			log.Error("refund failed", zap.Uint64("escrow_id", e.ChainID), zap.Error(err))
			continue
		}

		refreshed, err := reader.GetEscrow(ctx, e.ChainID)
		if err != nil {
			log.Error("failed to re-read refunded escrow", zap.Uint64("escrow_id", e.ChainID), zap.Error(err))
			continue
		}
		if err := escrowRepo.Upsert(ctx, refreshed); err != nil {
			log.Error("failed to cache refunded escrow", zap.Uint64("escrow_id", e.ChainID), zap.Error(err))
		}

		_ = publisher.Publish(ctx, events.StreamMarketplace, events.Event{
			Type: events.EventEscrowStatusChanged,
			Payload: map[string]any{
				"escrow_id": e.ChainID,
				"status":    refreshed.Status(),
				"buyer":     refreshed.Buyer,
				"seller":    refreshed.Seller,
				"reason":    fmt.Sprintf("deadline %s elapsed", e.Deadline.Format(time.RFC3339)),
			},
		})
	}
}
