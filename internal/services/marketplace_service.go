package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/auth"
	"github.com/greenloop/backend/internal/chain"
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/events"
	"github.com/greenloop/backend/internal/models"
	"github.com/greenloop/backend/internal/query"
	"github.com/greenloop/backend/internal/rbac"
	"github.com/greenloop/backend/internal/repositories"
	"github.com/greenloop/backend/internal/token"
)

type MarketplaceService struct {
	productRepo  *repositories.ProductRepo
	escrowRepo   *repositories.EscrowRepo
	exchangeRepo *repositories.ExchangeRepo
	auditRepo    *repositories.AuditRepo
	reader       *chain.Reader
	writer       *chain.Writer
	tracker      *chain.ActionTracker
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
}

func NewMarketplaceService(
	productRepo *repositories.ProductRepo,
	escrowRepo *repositories.EscrowRepo,
	exchangeRepo *repositories.ExchangeRepo,
	auditRepo *repositories.AuditRepo,
	reader *chain.Reader,
	writer *chain.Writer,
	tracker *chain.ActionTracker,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *MarketplaceService {
	return &MarketplaceService{
		productRepo:  productRepo,
		escrowRepo:   escrowRepo,
		exchangeRepo: exchangeRepo,
		auditRepo:    auditRepo,
		reader:       reader,
		writer:       writer,
		tracker:      tracker,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
	}
}

// ProductQuery is the filter set a listing request carries. Search
// narrows the structurally filtered set; it never replaces it.
type ProductQuery struct {
	Search     string
	Categories []string
	Condition  string
	Gender     string
	Brand      string
	Seller     string
	MaxToken   string // inclusive fixed-point bound on token price
	Exchange   *bool  // filter on exchange availability
	SortBy     string // newest, oldest, price_asc, price_desc, name
	Page       int
	PageSize   int
}

// ListProducts loads the cached product set and applies the pure
// filter/sort/paginate pipeline.
func (s *MarketplaceService) ListProducts(ctx context.Context, q ProductQuery) (query.Page[*models.Product], error) {
	all, err := s.productRepo.ListVisible(ctx)
	if err != nil {
		return query.Page[*models.Product]{}, fmt.Errorf("load products: %w", err)
	}

	var preds []query.Predicate[*models.Product]
	preds = append(preds, func(p *models.Product) bool { return !p.IsSold })

	if len(q.Categories) > 0 {
		cats := make([]query.Predicate[*models.Product], 0, len(q.Categories))
		for _, c := range q.Categories {
			want := c
			cats = append(cats, func(p *models.Product) bool {
				for _, pc := range p.Categories {
					if strings.EqualFold(pc, want) {
						return true
					}
				}
				return false
			})
		}
		preds = append(preds, query.Any(cats...))
	}
	if q.Condition != "" {
		preds = append(preds, func(p *models.Product) bool { return p.Condition == q.Condition })
	}
	if q.Gender != "" {
		preds = append(preds, func(p *models.Product) bool { return strings.EqualFold(p.Gender, q.Gender) })
	}
	if q.Brand != "" {
		preds = append(preds, func(p *models.Product) bool { return strings.EqualFold(p.Brand, q.Brand) })
	}
	if q.Seller != "" {
		preds = append(preds, func(p *models.Product) bool { return strings.EqualFold(p.Seller, q.Seller) })
	}
	if q.MaxToken != "" {
		if limit, err := token.ParseAmount(q.MaxToken); err == nil {
			preds = append(preds, func(p *models.Product) bool {
				price, ok := parseRaw(p.TokenPrice)
				return ok && price.Cmp(limit) <= 0
			})
		}
	}
	if q.Exchange != nil {
		want := *q.Exchange
		preds = append(preds, func(p *models.Product) bool { return p.IsAvailableForExchange == want })
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		preds = append(preds, func(p *models.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term) ||
				strings.Contains(strings.ToLower(p.Brand), term)
		})
	}

	filtered := query.Filter(all, preds...)
	sorted := sortProducts(filtered, q.SortBy)

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return query.Paginate(sorted, q.Page, pageSize), nil
}

func sortProducts(items []*models.Product, by string) []*models.Product {
	switch by {
	case "oldest":
		return query.SortBy(items, func(a, b *models.Product) bool { return a.ListedAt.Before(b.ListedAt) })
	case "price_asc":
		return query.SortBy(items, func(a, b *models.Product) bool { return cmpRaw(a.TokenPrice, b.TokenPrice) < 0 })
	case "price_desc":
		return query.SortBy(items, func(a, b *models.Product) bool { return cmpRaw(a.TokenPrice, b.TokenPrice) > 0 })
	case "name":
		return query.SortBy(items, func(a, b *models.Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		})
	default: // newest
		return query.SortBy(items, func(a, b *models.Product) bool { return a.ListedAt.After(b.ListedAt) })
	}
}

// GetProduct serves from cache and falls back to a direct chain read for
// ids the indexer has not caught up with yet.
func (s *MarketplaceService) GetProduct(ctx context.Context, id uint64) (*models.Product, error) {
	if p, err := s.productRepo.GetByChainID(ctx, id); err == nil {
		return p, nil
	}
	p, err := s.reader.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", id, err)
	}
	_ = s.productRepo.Upsert(ctx, p)
	return p, nil
}

type CreateProductRequest struct {
	TokenPrice         string
	EthPrice           string
	Quantity           uint64
	Name               string
	Description        string
	Size               string
	Condition          string
	Brand              string
	Categories         []string
	Gender             string
	Image              string
	AvailableForTrade  bool
	ExchangePreference string
}

// CreateProduct validates the listing and relays it on chain.
func (s *MarketplaceService) CreateProduct(ctx context.Context, seller string, req CreateProductRequest) (string, error) {
	if req.Name == "" {
		return "", fmt.Errorf("product name is required")
	}
	if req.Quantity == 0 {
		return "", fmt.Errorf("quantity must be at least 1")
	}
	if !models.IsValidCondition(req.Condition) {
		return "", fmt.Errorf("invalid condition %q, must be one of: %s", req.Condition, strings.Join(models.AllConditions, ", "))
	}
	tokenPrice, err := token.ParseAmount(req.TokenPrice)
	if err != nil {
		return "", fmt.Errorf("invalid token price: %w", err)
	}
	ethPrice, err := token.ParseAmount(req.EthPrice)
	if err != nil {
		return "", fmt.Errorf("invalid eth price: %w", err)
	}
	if tokenPrice.Sign() <= 0 && ethPrice.Sign() <= 0 {
		return "", fmt.Errorf("at least one price must be positive")
	}

	actionID := fmt.Sprintf("product:create:%s", common.HexToAddress(seller).Hex())
	h := s.writer.CreateProduct(ctx, tokenPrice, ethPrice, req.Quantity,
		req.Name, req.Description, req.Size, req.Condition, req.Brand,
		strings.Join(req.Categories, ","), req.Gender, req.Image,
		req.AvailableForTrade, req.ExchangePreference)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	s.settleAndSync(h, seller, "product_created", "product", nil, func(ctx context.Context) {
		s.syncNewProducts(ctx)
		_ = s.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
			Type:    events.EventProductCreated,
			Payload: map[string]any{"seller": seller, "name": req.Name},
		})
	})
	return actionID, nil
}

type UpdateProductRequest struct {
	TokenPrice  string
	EthPrice    string
	Name        string
	Description string
	Image       string
}

// UpdateProduct relays changes to a listing. Only the seller may edit.
func (s *MarketplaceService) UpdateProduct(ctx context.Context, actor string, productID uint64, req UpdateProductRequest) (string, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(p.Seller, actor) {
		return "", fmt.Errorf("only the seller may edit product %d", productID)
	}
	if req.Name == "" {
		return "", fmt.Errorf("product name is required")
	}
	tokenPrice, err := token.ParseAmount(req.TokenPrice)
	if err != nil {
		return "", fmt.Errorf("invalid token price: %w", err)
	}
	ethPrice, err := token.ParseAmount(req.EthPrice)
	if err != nil {
		return "", fmt.Errorf("invalid eth price: %w", err)
	}
	if tokenPrice.Sign() <= 0 && ethPrice.Sign() <= 0 {
		return "", fmt.Errorf("at least one price must be positive")
	}

	actionID := fmt.Sprintf("product:%d:update", productID)
	h := s.writer.UpdateProduct(ctx, productID, tokenPrice, ethPrice, req.Name, req.Description, req.Image)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", productID)
	s.settleAndSync(h, actor, "product_updated", "product", &id, func(ctx context.Context) {
		s.refreshProduct(ctx, productID)
	})
	return actionID, nil
}

// UpdateQuantity relays a stock change for a listing.
func (s *MarketplaceService) UpdateQuantity(ctx context.Context, actor string, productID, quantity uint64) (string, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(p.Seller, actor) {
		return "", fmt.Errorf("only the seller may restock product %d", productID)
	}

	actionID := fmt.Sprintf("product:%d:quantity", productID)
	h := s.writer.UpdateProductQuantity(ctx, productID, quantity)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", productID)
	s.settleAndSync(h, actor, "product_quantity_updated", "product", &id, func(ctx context.Context) {
		s.refreshProduct(ctx, productID)
	})
	return actionID, nil
}

// Purchase relays a purchase, creating an escrow on chain. Availability
// is checked against a fresh chain read so a stale cache cannot oversell.
func (s *MarketplaceService) Purchase(ctx context.Context, buyer string, productID, quantity uint64, withToken bool) (string, error) {
	if !auth.IsValidAddress(buyer) {
		return "", auth.ErrBadAddress
	}
	p, err := s.reader.GetProduct(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("read product %d: %w", productID, err)
	}
	if !p.CanPurchase(quantity) {
		return "", fmt.Errorf("product %d cannot be purchased in quantity %d (available %d)", productID, quantity, p.AvailableQuantity)
	}
	if strings.EqualFold(p.Seller, buyer) {
		return "", fmt.Errorf("cannot purchase your own product")
	}

	actionID := fmt.Sprintf("product:%d:purchase", productID)
	if s.tracker.InFlight(actionID) {
		return "", ErrActionInFlight
	}

	var h *chain.TxHandle
	if withToken {
		h = s.writer.PurchaseWithToken(ctx, productID, quantity)
	} else {
		ethPrice, ok := parseRaw(p.EthPrice)
		if !ok || ethPrice.Sign() <= 0 {
			return "", fmt.Errorf("product %d has no eth price", productID)
		}
		total := ethPrice.Mul(ethPrice, newBig(quantity))
		h = s.writer.PurchaseWithEth(ctx, productID, quantity, total)
	}
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", productID)
	s.settleAndSync(h, buyer, "product_purchased", "product", &id, func(ctx context.Context) {
		s.refreshProduct(ctx, productID)
		s.syncNewEscrows(ctx)
		_ = s.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
			Type:    events.EventProductSold,
			Payload: map[string]any{"product_id": productID, "buyer": buyer, "quantity": quantity},
		})
	})
	return actionID, nil
}

// DeleteProduct relays removal of a listing. Sellers may delete their
// own products; admins may delete any.
func (s *MarketplaceService) DeleteProduct(ctx context.Context, actor string, productID uint64) (string, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(p.Seller, actor) && !rbac.HasPermission(roleOf(s.cfg, actor, false), rbac.PermDeleteAnyProduct) {
		return "", fmt.Errorf("only the seller or an admin may delete a product")
	}

	actionID := fmt.Sprintf("product:%d:delete", productID)
	h := s.writer.DeleteProduct(ctx, productID)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", productID)
	s.settleAndSync(h, actor, "product_deleted", "product", &id, func(ctx context.Context) {
		s.refreshProduct(ctx, productID)
	})
	return actionID, nil
}

// Escrow operations.

type EscrowAction string

const (
	EscrowActionConfirm EscrowAction = "confirm"
	EscrowActionCancel  EscrowAction = "cancel"
	EscrowActionReject  EscrowAction = "reject"
)

// ResolveEscrow validates the requested move against the state machine
// and relays it. One unresolved action per escrow at a time.
func (s *MarketplaceService) ResolveEscrow(ctx context.Context, actor string, escrowID uint64, action EscrowAction, reason string) (string, error) {
	e, err := s.reader.GetEscrow(ctx, escrowID)
	if err != nil {
		return "", fmt.Errorf("read escrow %d: %w", escrowID, err)
	}

	isBuyer := strings.EqualFold(e.Buyer, actor)
	isSeller := strings.EqualFold(e.Seller, actor)
	isAdmin := rbac.HasPermission(roleOf(s.cfg, actor, false), rbac.PermRejectAnyEscrow)
	if !isBuyer && !isSeller && !isAdmin {
		return "", fmt.Errorf("address %s is not a party to escrow %d", actor, escrowID)
	}

	from := e.Status()
	var to string
	var h func(context.Context) *chain.TxHandle
	switch action {
	case EscrowActionConfirm:
		if isBuyer {
			if e.BuyerConfirmed {
				return "", fmt.Errorf("buyer already confirmed escrow %d", escrowID)
			}
			to = models.EscrowStatusBuyerConfirmed
			if e.SellerConfirmed {
				to = models.EscrowStatusCompleted
			}
			h = func(ctx context.Context) *chain.TxHandle { return s.writer.ConfirmEscrowBuyer(ctx, escrowID) }
		} else if isSeller {
			if e.SellerConfirmed {
				return "", fmt.Errorf("seller already confirmed escrow %d", escrowID)
			}
			to = models.EscrowStatusSellerConfirmed
			if e.BuyerConfirmed {
				to = models.EscrowStatusCompleted
			}
			h = func(ctx context.Context) *chain.TxHandle { return s.writer.ConfirmEscrowSeller(ctx, escrowID) }
		} else {
			return "", fmt.Errorf("admins cannot confirm on behalf of a party")
		}
	case EscrowActionCancel:
		if !isBuyer && !isAdmin {
			return "", fmt.Errorf("only the buyer or an admin may cancel")
		}
		to = models.EscrowStatusRefunded
		h = func(ctx context.Context) *chain.TxHandle { return s.writer.CancelEscrow(ctx, escrowID) }
	case EscrowActionReject:
		if !isSeller && !isAdmin {
			return "", fmt.Errorf("only the seller or an admin may reject")
		}
		if strings.TrimSpace(reason) == "" {
			return "", fmt.Errorf("a rejection reason is required")
		}
		to = models.EscrowStatusRejected
		h = func(ctx context.Context) *chain.TxHandle { return s.writer.RejectEscrow(ctx, escrowID, reason) }
	default:
		return "", fmt.Errorf("unknown escrow action %q", action)
	}

	if !models.IsValidEscrowTransition(from, to) {
		return "", fmt.Errorf("invalid transition from %s to %s", from, to)
	}

	actionID := fmt.Sprintf("escrow:%d", escrowID)
	if s.tracker.InFlight(actionID) {
		return "", ErrActionInFlight
	}
	handle := h(ctx)
	if !s.tracker.Track(actionID, handle) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", escrowID)
	s.settleAndSync(handle, actor, fmt.Sprintf("escrow_%s_to_%s", from, to), "escrow", &id, func(ctx context.Context) {
		s.refreshEscrow(ctx, escrowID)
		s.refreshProduct(ctx, e.ProductID)
		_ = s.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
			Type: events.EventEscrowStatusChanged,
			Payload: map[string]any{
				"escrow_id":  escrowID,
				"old_status": from,
				"new_status": to,
			},
		})
	})
	return actionID, nil
}

// MyEscrows lists the caller's escrows, newest first.
func (s *MarketplaceService) MyEscrows(ctx context.Context, address string, page, pageSize int) (query.Page[*models.Escrow], error) {
	all, err := s.escrowRepo.ListByParticipant(ctx, address)
	if err != nil {
		return query.Page[*models.Escrow]{}, fmt.Errorf("load escrows: %w", err)
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return query.Paginate(all, page, pageSize), nil
}

func (s *MarketplaceService) GetEscrow(ctx context.Context, id uint64) (*models.Escrow, error) {
	if e, err := s.escrowRepo.GetByChainID(ctx, id); err == nil {
		return e, nil
	}
	e, err := s.reader.GetEscrow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("escrow %d: %w", id, err)
	}
	_ = s.escrowRepo.Upsert(ctx, e)
	return e, nil
}

// Exchange offers.

func (s *MarketplaceService) CreateExchangeOffer(ctx context.Context, offerer string, offeredID, wantedID uint64, topUp string) (string, error) {
	offered, err := s.GetProduct(ctx, offeredID)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(offered.Seller, offerer) {
		return "", fmt.Errorf("can only offer your own product")
	}
	wanted, err := s.GetProduct(ctx, wantedID)
	if err != nil {
		return "", err
	}
	if !wanted.IsAvailableForExchange {
		return "", fmt.Errorf("product %d is not open to exchange", wantedID)
	}
	if strings.EqualFold(wanted.Seller, offerer) {
		return "", fmt.Errorf("cannot exchange with yourself")
	}
	var topUpRaw = newBig(0)
	if topUp != "" {
		v, err := token.ParseAmount(topUp)
		if err != nil || v.Sign() < 0 {
			return "", fmt.Errorf("invalid token top-up")
		}
		topUpRaw = v
	}

	actionID := fmt.Sprintf("exchange:create:%d:%d", offeredID, wantedID)
	h := s.writer.CreateExchangeOffer(ctx, offeredID, wantedID, topUpRaw)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	s.settleAndSync(h, offerer, "exchange_offer_created", "exchange_offer", nil, func(ctx context.Context) {
		s.syncNewOffers(ctx)
		_ = s.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
			Type:    events.EventExchangeOfferCreated,
			Payload: map[string]any{"offerer": offerer, "wanted_product_id": wantedID},
		})
	})
	return actionID, nil
}

func (s *MarketplaceService) AcceptExchangeOffer(ctx context.Context, actor string, offerID uint64) (string, error) {
	o, err := s.exchangeRepo.GetByChainID(ctx, offerID)
	if err != nil {
		o, err = s.reader.GetExchangeOffer(ctx, offerID)
		if err != nil {
			return "", fmt.Errorf("exchange offer %d: %w", offerID, err)
		}
	}
	if !o.IsActive {
		return "", fmt.Errorf("exchange offer %d is no longer active", offerID)
	}
	wanted, err := s.GetProduct(ctx, o.WantedProductID)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(wanted.Seller, actor) {
		return "", fmt.Errorf("only the owner of the wanted product may accept")
	}

	actionID := fmt.Sprintf("exchange:%d:accept", offerID)
	h := s.writer.AcceptExchangeOffer(ctx, offerID)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", offerID)
	s.settleAndSync(h, actor, "exchange_offer_accepted", "exchange_offer", &id, func(ctx context.Context) {
		s.refreshOffer(ctx, offerID)
		s.syncNewEscrows(ctx)
		_ = s.publisher.Publish(ctx, events.StreamMarketplace, events.Event{
			Type:    events.EventExchangeOfferAccepted,
			Payload: map[string]any{"offer_id": offerID},
		})
	})
	return actionID, nil
}

func (s *MarketplaceService) CancelExchangeOffer(ctx context.Context, actor string, offerID uint64) (string, error) {
	o, err := s.exchangeRepo.GetByChainID(ctx, offerID)
	if err == nil && !strings.EqualFold(o.Offerer, actor) && !s.cfg.IsAdmin(actor) {
		return "", fmt.Errorf("only the offerer or an admin may cancel")
	}

	actionID := fmt.Sprintf("exchange:%d:cancel", offerID)
	h := s.writer.CancelExchangeOffer(ctx, offerID)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", offerID)
	s.settleAndSync(h, actor, "exchange_offer_cancelled", "exchange_offer", &id, func(ctx context.Context) {
		s.refreshOffer(ctx, offerID)
	})
	return actionID, nil
}

func (s *MarketplaceService) OffersForProduct(ctx context.Context, productID uint64) ([]*models.ExchangeOffer, error) {
	return s.exchangeRepo.ListForProduct(ctx, productID)
}

// settleAndSync waits for the handle in the background, writes the audit
// entry, and runs the post-settlement refresh on success.
func (s *MarketplaceService) settleAndSync(h *chain.TxHandle, actor, action, entityType string, entityID *string, onSuccess func(context.Context)) {
	go func() {
		<-h.Done()
		_, err := h.Status()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConfirmTimeout)
		defer cancel()

		meta := map[string]any{"tx_hash": h.Hash().Hex(), "success": err == nil}
		if err != nil {
			meta["error"] = err.Error()
		}
		_ = s.auditRepo.Log(ctx, models.AuditLog{
			ActorAddr:  &actor,
			ActorType:  "user",
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			Meta:       meta,
		})
		if err == nil && onSuccess != nil {
			onSuccess(ctx)
		}
	}()
}

func (s *MarketplaceService) refreshProduct(ctx context.Context, id uint64) {
	p, err := s.reader.GetProduct(ctx, id)
	if err != nil {
		s.log.Warn("refresh product failed", zap.Uint64("product_id", id), zap.Error(err))
		return
	}
	if err := s.productRepo.Upsert(ctx, p); err != nil {
		s.log.Warn("cache product failed", zap.Uint64("product_id", id), zap.Error(err))
	}
}

func (s *MarketplaceService) refreshEscrow(ctx context.Context, id uint64) {
	e, err := s.reader.GetEscrow(ctx, id)
	if err != nil {
		s.log.Warn("refresh escrow failed", zap.Uint64("escrow_id", id), zap.Error(err))
		return
	}
	if err := s.escrowRepo.Upsert(ctx, e); err != nil {
		s.log.Warn("cache escrow failed", zap.Uint64("escrow_id", id), zap.Error(err))
	}
}

func (s *MarketplaceService) refreshOffer(ctx context.Context, id uint64) {
	o, err := s.reader.GetExchangeOffer(ctx, id)
	if err != nil {
		s.log.Warn("refresh offer failed", zap.Uint64("offer_id", id), zap.Error(err))
		return
	}
	if err := s.exchangeRepo.Upsert(ctx, o); err != nil {
		s.log.Warn("cache offer failed", zap.Uint64("offer_id", id), zap.Error(err))
	}
}

// syncNewProducts pulls any products past the highest cached id. The
// indexer does the same from events; this covers the immediate refetch
// after our own write settles.
func (s *MarketplaceService) syncNewProducts(ctx context.Context) {
	count, err := s.reader.ProductCount(ctx)
	if err != nil {
		s.log.Warn("product count read failed", zap.Error(err))
		return
	}
	for id := uint64(1); id <= count; id++ {
		if _, err := s.productRepo.GetByChainID(ctx, id); err == nil {
			continue
		}
		s.refreshProduct(ctx, id)
	}
}

func (s *MarketplaceService) syncNewEscrows(ctx context.Context) {
	count, err := s.reader.EscrowCount(ctx)
	if err != nil {
		s.log.Warn("escrow count read failed", zap.Error(err))
		return
	}
	for id := uint64(1); id <= count; id++ {
		if _, err := s.escrowRepo.GetByChainID(ctx, id); err == nil {
			continue
		}
		s.refreshEscrow(ctx, id)
	}
}

func (s *MarketplaceService) syncNewOffers(ctx context.Context) {
	count, err := s.reader.ExchangeOfferCount(ctx)
	if err != nil {
		s.log.Warn("offer count read failed", zap.Error(err))
		return
	}
	for id := uint64(1); id <= count; id++ {
		if _, err := s.exchangeRepo.GetByChainID(ctx, id); err == nil {
			continue
		}
		s.refreshOffer(ctx, id)
	}
}
