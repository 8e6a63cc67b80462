package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/chain"
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/db"
	"github.com/greenloop/backend/internal/events"
	"github.com/greenloop/backend/internal/repositories"
)

const (
	redisCursorBlock = "chain-indexer:cursor:block"
	redisProcessed   = "chain-indexer:log:"
	processedTTL     = 7 * 24 * time.Hour
	pollInterval     = 5 * time.Second
	maxBlockSpan     = 2000
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

	idx := &indexer{
		backend:      eth,
		contracts:    contracts,
		reader:       reader,
		userRepo:     repositories.NewUserRepo(pool),
		productRepo:  repositories.NewProductRepo(pool),
		escrowRepo:   repositories.NewEscrowRepo(pool),
		exchangeRepo: repositories.NewExchangeRepo(pool),
		donationRepo: repositories.NewDonationRepo(pool),
		publisher:    events.NewRedisPublisher(rdb, log),
		rdb:          rdb,
		expiry:       time.Duration(cfg.DonationExpirySeconds) * time.Second,
		log:          log,
	}

	log.Info("chain indexer started",
		zap.String("market", contracts.Market.Hex()),
		zap.String("donation", contracts.Donation.Hex()),
	)

	idx.initCursor(ctx)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if err := idx.poll(ctx); err != nil {
				log.Error("poll cycle failed", zap.Error(err))
			}
		case <-sigCh:
			log.Info("shutting down chain indexer")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

type indexer struct {
	backend      chain.Backend
	contracts    *chain.Contracts
	reader       *chain.Reader
	userRepo     *repositories.UserRepo
	productRepo  *repositories.ProductRepo
	escrowRepo   *repositories.EscrowRepo
	exchangeRepo *repositories.ExchangeRepo
	donationRepo *repositories.DonationRepo
	publisher    events.Publisher
	rdb          *redis.Client
	expiry       time.Duration
	log          *zap.Logger
}

// initCursor starts from the current head on first run so only new
// activity is processed. Historical state is picked up lazily by the API
// when a client first asks for an entity.
func (i *indexer) initCursor(ctx context.Context) {
	existing, _ := i.rdb.Get(ctx, redisCursorBlock).Result()
	if existing != "" {
		i.log.Info("resuming from saved cursor", zap.String("block", existing))
		return
	}

	head, err := i.backend.BlockNumber(ctx)
	if err != nil {
		i.log.Warn("failed to get head block for cursor init", zap.Error(err))
		head = 0
	}
	i.rdb.Set(ctx, redisCursorBlock, strconv.FormatUint(head, 10), 0)
	i.log.Info("cursor initialized at chain head", zap.Uint64("block", head))
}

func (i *indexer) cursor(ctx context.Context) uint64 {
	val, err := i.rdb.Get(ctx, redisCursorBlock).Result()
	if err != nil || val == "" {
		return 0
	}
	b, _ := strconv.ParseUint(val, 10, 64)
	return b
}

// poll fetches logs for one block range and advances the cursor only
// after the whole range has been handled.
func (i *indexer) poll(ctx context.Context) error {
	from := i.cursor(ctx) + 1
	head, err := i.backend.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get head block: %w", err)
	}
	if head < from {
		return nil
	}

	to := head
	if to-from > maxBlockSpan {
		to = from + maxBlockSpan
	}

	logs, err := i.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{i.contracts.Token, i.contracts.Market, i.contracts.Donation},
	})
	if err != nil {
		return fmt.Errorf("filter logs [%d, %d]: %w", from, to, err)
	}

	for _, lg := range logs {
		i.process(ctx, lg)
	}

	i.rdb.Set(ctx, redisCursorBlock, strconv.FormatUint(to, 10), 0)
	return nil
}

func (i *indexer) process(ctx context.Context, lg types.Log) {
	if len(lg.Topics) == 0 || lg.Removed {
		return
	}

	// Idempotency: a re-delivered log is skipped.
	key := fmt.Sprintf("%s%s:%d", redisProcessed, lg.TxHash.Hex(), lg.Index)
	if i.rdb.Exists(ctx, key).Val() > 0 {
		return
	}

	topic := lg.Topics[0]
	market := &i.contracts.MarketABI
	donation := &i.contracts.DonationABI
	token := &i.contracts.TokenABI

	var err error
	switch topic {
	case market.Events["ProductCreated"].ID:
		err = i.onProduct(ctx, topicID(lg, 1), events.EventProductCreated)
	case market.Events["EscrowCreated"].ID:
		// A new escrow also changes product availability.
		err = i.onEscrow(ctx, topicID(lg, 1))
		if err == nil {
			err = i.refreshProduct(ctx, topicID(lg, 2))
		}
	case market.Events["EscrowConfirmed"].ID,
		market.Events["EscrowCompleted"].ID,
		market.Events["EscrowRefunded"].ID,
		market.Events["EscrowRejected"].ID:
		err = i.onEscrow(ctx, topicID(lg, 1))
	case market.Events["ExchangeOfferCreated"].ID:
		err = i.onOffer(ctx, topicID(lg, 1), events.EventExchangeOfferCreated)
	case market.Events["ExchangeOfferAccepted"].ID:
		err = i.onOffer(ctx, topicID(lg, 1), events.EventExchangeOfferAccepted)
	case donation.Events["CenterRegistered"].ID:
		err = i.onCenter(ctx, topicID(lg, 1))
	case donation.Events["DonationSubmitted"].ID:
		err = i.onDonation(ctx, topicID(lg, 1), events.EventDonationSubmitted)
	case donation.Events["DonationApproved"].ID,
		donation.Events["DonationRejected"].ID:
		err = i.onDonation(ctx, topicID(lg, 1), events.EventDonationDecided)
	case donation.Events["TokensDonated"].ID:
		err = i.onCenter(ctx, topicID(lg, 1))
	case donation.Events["CreatorApproved"].ID:
		err = i.onCreator(ctx, lg, true)
	case donation.Events["CreatorRevoked"].ID:
		err = i.onCreator(ctx, lg, false)
	case token.Events["TokensPurchased"].ID:
		_ = i.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
			Type: events.EventTokensPurchased,
			Payload: map[string]any{
				"buyer":   common.HexToAddress(lg.Topics[1].Hex()).Hex(),
				"tx_hash": lg.TxHash.Hex(),
			},
		})
	default:
		return
	}

	if err != nil {
		i.log.Error("failed to process log",
			zap.String("tx_hash", lg.TxHash.Hex()),
			zap.Uint("index", lg.Index),
			zap.Error(err),
		)
		return
	}

	i.rdb.Set(ctx, key, "done", processedTTL)
}

// topicID reads an indexed uint256 id from a log topic.
func topicID(lg types.Log, n int) uint64 {
	if n >= len(lg.Topics) {
		return 0
	}
	return new(big.Int).SetBytes(lg.Topics[n].Bytes()).Uint64()
}

func (i *indexer) refreshProduct(ctx context.Context, id uint64) error {
	p, err := i.reader.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("read product %d: %w", id, err)
	}
	return i.productRepo.Upsert(ctx, p)
}

func (i *indexer) onProduct(ctx context.Context, id uint64, eventType string) error {
	if err := i.refreshProduct(ctx, id); err != nil {
		return err
	}
	return i.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
		Type:    eventType,
		Payload: map[string]any{"product_id": id},
	})
}

func (i *indexer) onEscrow(ctx context.Context, id uint64) error {
	e, err := i.reader.GetEscrow(ctx, id)
	if err != nil {
		return fmt.Errorf("read escrow %d: %w", id, err)
	}
	if err := i.escrowRepo.Upsert(ctx, e); err != nil {
		return err
	}
	return i.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
		Type: events.EventEscrowStatusChanged,
		Payload: map[string]any{
			"escrow_id": id,
			"status":    e.Status(),
			"buyer":     e.Buyer,
			"seller":    e.Seller,
		},
	})
}

func (i *indexer) onOffer(ctx context.Context, id uint64, eventType string) error {
	o, err := i.reader.GetExchangeOffer(ctx, id)
	if err != nil {
		return fmt.Errorf("read exchange offer %d: %w", id, err)
	}
	if err := i.exchangeRepo.Upsert(ctx, o); err != nil {
		return err
	}
	return i.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
		Type: eventType,
		Payload: map[string]any{
			"offer_id": id,
			"offerer":  o.Offerer,
		},
	})
}

func (i *indexer) onCenter(ctx context.Context, id uint64) error {
	c, err := i.reader.GetCenter(ctx, id)
	if err != nil {
		return fmt.Errorf("read center %d: %w", id, err)
	}
	return i.donationRepo.UpsertCenter(ctx, c)
}

// onCreator mirrors the on-chain creator allowlist into the users table.
// Addresses without an account yet are skipped; login picks up the flag
// on the next grant, and the chain stays the source of truth either way.
func (i *indexer) onCreator(ctx context.Context, lg types.Log, approved bool) error {
	addr := common.HexToAddress(lg.Topics[1].Hex()).Hex()
	if u, err := i.userRepo.GetByAddress(ctx, addr); err == nil {
		if err := i.userRepo.SetCreator(ctx, u.ID, approved); err != nil {
			return fmt.Errorf("set creator flag for %s: %w", addr, err)
		}
	}
	return i.publisher.Publish(ctx, events.StreamDonations, events.Event{
		Type:    events.EventCreatorStatusChanged,
		Payload: map[string]any{"creator": addr, "approved": approved},
	})
}

func (i *indexer) onDonation(ctx context.Context, id uint64, eventType string) error {
	d, err := i.reader.GetPendingDonation(ctx, id, i.expiry)
	if err != nil {
		return fmt.Errorf("read donation %d: %w", id, err)
	}
	if err := i.donationRepo.UpsertDonation(ctx, d); err != nil {
		return err
	}
	return i.publisher.Publish(ctx, events.StreamDonations, events.Event{
		Type: eventType,
		Payload: map[string]any{
			"donation_id": id,
			"center_id":   d.CenterID,
			"donor":       d.Donor,
			"status":      d.Status(),
		},
	})
}
