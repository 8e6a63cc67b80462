package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/centermeta"
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/db"
	"github.com/greenloop/backend/internal/repositories"
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

	donationRepo := repositories.NewDonationRepo(pool)
	parser := centermeta.NewParser(cfg.MetaFetchTimeoutMS, cfg.MetaFetchMaxRetries, log)

	log.Info("center-meta fetcher started", zap.Duration("interval", cfg.MetaRefreshInterval))

	// Initial run
	runMetaRefresh(ctx, donationRepo, parser, cfg, log)

	ticker := time.NewTicker(cfg.MetaRefreshInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runMetaRefresh(ctx, donationRepo, parser, cfg, log)
		case <-sigCh:
			log.Info("shutting down center-meta fetcher")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runMetaRefresh(
	ctx context.Context,
	donationRepo *repositories.DonationRepo,
	parser *centermeta.Parser,
	cfg *config.Config,
	log *zap.Logger,
) {
	centers, err := donationRepo.ListCentersNeedingMeta(ctx, cfg.MetaRefreshInterval)
	if err != nil {
		log.Error("failed to list centers needing metadata", zap.Error(err))
		return
	}

	log.Info("refreshing center metadata", zap.Int("centers", len(centers)))

	for _, center := range centers {
		if center.Website == nil || *center.Website == "" {
			continue
		}

		meta, err := parser.FetchAndParse(ctx, *center.Website)
		if err != nil {
			log.Warn("failed to fetch site metadata",
				zap.Uint64("center_id", center.ChainID),
				zap.String("website", *center.Website),
				zap.Error(err),
			)
			continue
		}

		if err := donationRepo.UpdateCenterMeta(ctx, center.ChainID, meta.Title, meta.Description, meta.Image); err != nil {
			log.Error("failed to store center metadata",
				zap.Uint64("center_id", center.ChainID),
				zap.Error(err),
			)
			continue
		}

		log.Info("center metadata updated",
			zap.Uint64("center_id", center.ChainID),
			zap.String("website", *center.Website),
		)

		// Be polite to third-party sites.
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return
		}
	}
}
