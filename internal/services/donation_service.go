package services

import (
	"context"
	"fmt"
	"strings"
	"time"

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

type DonationService struct {
	donationRepo *repositories.DonationRepo
	userRepo     *repositories.UserRepo
	auditRepo    *repositories.AuditRepo
	reader       *chain.Reader
	writer       *chain.Writer
	tracker      *chain.ActionTracker
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
}

func NewDonationService(
	donationRepo *repositories.DonationRepo,
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	reader *chain.Reader,
	writer *chain.Writer,
	tracker *chain.ActionTracker,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		reader:       reader,
		writer:       writer,
		tracker:      tracker,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
	}
}

// CenterQuery filters the donation center directory. Search is combined
// with the structural filters, never substituted for them.
type CenterQuery struct {
	Search           string
	ActiveOnly       bool
	AcceptsTokens    *bool
	AcceptsRecycling *bool
	Page             int
	PageSize         int
}

func (s *DonationService) ListCenters(ctx context.Context, q CenterQuery) (query.Page[*models.DonationCenter], error) {
	all, err := s.donationRepo.ListCenters(ctx)
	if err != nil {
		return query.Page[*models.DonationCenter]{}, fmt.Errorf("load centers: %w", err)
	}

	var preds []query.Predicate[*models.DonationCenter]
	if q.ActiveOnly {
		preds = append(preds, func(c *models.DonationCenter) bool { return c.IsActive })
	}
	if q.AcceptsTokens != nil {
		want := *q.AcceptsTokens
		preds = append(preds, func(c *models.DonationCenter) bool { return c.AcceptsTokens == want })
	}
	if q.AcceptsRecycling != nil {
		want := *q.AcceptsRecycling
		preds = append(preds, func(c *models.DonationCenter) bool { return c.AcceptsRecycling == want })
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		preds = append(preds, func(c *models.DonationCenter) bool {
			return strings.Contains(strings.ToLower(c.Name), term) ||
				strings.Contains(strings.ToLower(c.Description), term) ||
				strings.Contains(strings.ToLower(c.Location), term)
		})
	}

	filtered := query.Filter(all, preds...)
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return query.Paginate(filtered, q.Page, pageSize), nil
}

func (s *DonationService) GetCenter(ctx context.Context, id uint64) (*models.DonationCenter, error) {
	if c, err := s.donationRepo.GetCenter(ctx, id); err == nil {
		return c, nil
	}
	c, err := s.reader.GetCenter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("center %d: %w", id, err)
	}
	_ = s.donationRepo.UpsertCenter(ctx, c)
	return c, nil
}

type RegisterCenterRequest struct {
	Name             string
	Description      string
	Location         string
	AcceptsTokens    bool
	AcceptsRecycling bool
	IsDonation       bool
	Website          string
}

func (s *DonationService) RegisterCenter(ctx context.Context, owner string, req RegisterCenterRequest) (string, error) {
	if req.Name == "" || req.Location == "" {
		return "", fmt.Errorf("center name and location are required")
	}
	if !req.IsDonation && !req.AcceptsRecycling {
		return "", fmt.Errorf("center must accept donations or recycling")
	}
	// The contract restricts registration to approved creators.
	if !s.cfg.IsAdmin(owner) {
		approved, err := s.reader.IsApprovedCreator(ctx, common.HexToAddress(owner))
		if err != nil {
			return "", fmt.Errorf("read creator status: %w", err)
		}
		if !approved {
			return "", fmt.Errorf("only approved creators may register a center")
		}
	}

	actionID := fmt.Sprintf("center:register:%s", strings.ToLower(owner))
	h := s.writer.RegisterCenter(ctx, req.Name, req.Description, req.Location,
		req.AcceptsTokens, req.AcceptsRecycling, req.IsDonation, req.Website)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	s.settle(h, owner, "center_registered", "donation_center", nil, func(ctx context.Context) {
		s.syncCenters(ctx)
	})
	return actionID, nil
}

func (s *DonationService) UpdateCenter(ctx context.Context, actor string, centerID uint64, isActive, acceptsTokens, acceptsRecycling bool, website string) (string, error) {
	c, err := s.GetCenter(ctx, centerID)
	if err != nil {
		return "", err
	}
	role := roleOf(s.cfg, actor, strings.EqualFold(c.Owner, actor))
	if !rbac.HasPermission(role, rbac.PermManageCenter) {
		return "", fmt.Errorf("only the center owner or an admin may update a center")
	}

	actionID := fmt.Sprintf("center:%d:update", centerID)
	h := s.writer.UpdateCenter(ctx, centerID, isActive, acceptsTokens, acceptsRecycling, website)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", centerID)
	s.settle(h, actor, "center_updated", "donation_center", &id, func(ctx context.Context) {
		s.refreshCenter(ctx, centerID)
	})
	return actionID, nil
}

// SubmitDonation relays an item donation to a center.
func (s *DonationService) SubmitDonation(ctx context.Context, donor string, centerID, itemCount uint64, itemType, description string) (string, error) {
	if !auth.IsValidAddress(donor) {
		return "", auth.ErrBadAddress
	}
	if itemCount == 0 {
		return "", fmt.Errorf("item count must be at least 1")
	}
	c, err := s.GetCenter(ctx, centerID)
	if err != nil {
		return "", err
	}
	if !c.IsActive {
		return "", fmt.Errorf("center %d is not active", centerID)
	}
	if !c.IsDonation {
		return "", fmt.Errorf("center %d does not accept item donations", centerID)
	}

	actionID := fmt.Sprintf("donation:submit:%s:%d", strings.ToLower(donor), centerID)
	h := s.writer.SubmitDonation(ctx, centerID, itemCount, itemType, description)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	s.settle(h, donor, "donation_submitted", "donation", nil, func(ctx context.Context) {
		s.syncDonations(ctx)
		_ = s.publisher.Publish(ctx, events.StreamDonations, events.Event{
			Type:    events.EventDonationSubmitted,
			Payload: map[string]any{"center_id": centerID, "donor": donor, "item_count": itemCount},
		})
	})
	return actionID, nil
}

// SubmitRecycling relays a recycling drop-off with its weight.
func (s *DonationService) SubmitRecycling(ctx context.Context, donor string, centerID uint64, weightKG, description string) (string, error) {
	if !auth.IsValidAddress(donor) {
		return "", auth.ErrBadAddress
	}
	weight, err := token.ParseAmount(weightKG)
	if err != nil || weight.Sign() <= 0 {
		return "", fmt.Errorf("invalid recycling weight")
	}
	c, err := s.GetCenter(ctx, centerID)
	if err != nil {
		return "", err
	}
	if !c.IsActive || !c.AcceptsRecycling {
		return "", fmt.Errorf("center %d does not accept recycling", centerID)
	}

	actionID := fmt.Sprintf("recycle:submit:%s:%d", strings.ToLower(donor), centerID)
	h := s.writer.SubmitRecycling(ctx, centerID, weight, description)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	s.settle(h, donor, "recycling_submitted", "donation", nil, func(ctx context.Context) {
		s.syncDonations(ctx)
		_ = s.publisher.Publish(ctx, events.StreamDonations, events.Event{
			Type:    events.EventDonationSubmitted,
			Payload: map[string]any{"center_id": centerID, "donor": donor, "recycling": true},
		})
	})
	return actionID, nil
}

// DonateTokens relays a token donation to a center that accepts them.
func (s *DonationService) DonateTokens(ctx context.Context, donor string, centerID uint64, amount string) (string, error) {
	if !auth.IsValidAddress(donor) {
		return "", auth.ErrBadAddress
	}
	raw, err := token.ParseAmount(amount)
	if err != nil || raw.Sign() <= 0 {
		return "", fmt.Errorf("invalid token amount")
	}
	c, err := s.GetCenter(ctx, centerID)
	if err != nil {
		return "", err
	}
	if !c.IsActive || !c.AcceptsTokens {
		return "", fmt.Errorf("center %d does not accept token donations", centerID)
	}

	actionID := fmt.Sprintf("donation:tokens:%s:%d", strings.ToLower(donor), centerID)
	h := s.writer.DonateTokens(ctx, centerID, raw)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	s.settle(h, donor, "tokens_donated", "donation_center", ptr(fmt.Sprintf("%d", centerID)), func(ctx context.Context) {
		s.refreshCenter(ctx, centerID)
	})
	return actionID, nil
}

// DecideDonation approves or rejects a pending donation. The action id is
// keyed by donation id alone: while a decision is unresolved no second
// decision for the same donation can start, regardless of direction.
func (s *DonationService) DecideDonation(ctx context.Context, actor string, donationID uint64, approve bool) (string, error) {
	d, err := s.getDonation(ctx, donationID)
	if err != nil {
		return "", err
	}
	c, err := s.GetCenter(ctx, d.CenterID)
	if err != nil {
		return "", err
	}
	role := roleOf(s.cfg, actor, strings.EqualFold(c.Owner, actor))
	if !rbac.HasPermission(role, rbac.PermDecideDonation) {
		return "", fmt.Errorf("only the center owner or an admin may decide donations")
	}
	if !d.Decidable(time.Now()) {
		return "", fmt.Errorf("donation %d is already %s", donationID, d.Status())
	}

	to := models.DonationStatusRejected
	if approve {
		to = models.DonationStatusApproved
	}
	if !models.IsValidDonationTransition(d.Status(), to) {
		return "", fmt.Errorf("invalid transition from %s to %s", d.Status(), to)
	}

	actionID := fmt.Sprintf("donation:%d:decide", donationID)
	if s.tracker.InFlight(actionID) {
		return "", ErrActionInFlight
	}

	var h *chain.TxHandle
	if approve {
		h = s.writer.ApproveDonation(ctx, donationID)
	} else {
		h = s.writer.RejectDonation(ctx, donationID)
	}
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	id := fmt.Sprintf("%d", donationID)
	s.settle(h, actor, "donation_"+to, "donation", &id, func(ctx context.Context) {
		s.refreshDonation(ctx, donationID)
		s.refreshCenter(ctx, d.CenterID)
		_ = s.publisher.Publish(ctx, events.StreamDonations, events.Event{
			Type:    events.EventDonationDecided,
			Payload: map[string]any{"donation_id": donationID, "status": to, "donor": d.Donor},
		})
	})
	return actionID, nil
}

// SetCreatorStatus grants or revokes the verified-creator flag on chain.
// Admin only. The live flag is read first: asking for the state the
// address is already in is refused locally, no transaction is sent.
func (s *DonationService) SetCreatorStatus(ctx context.Context, actor, creator string, grant bool) (string, error) {
	if !rbac.HasPermission(roleOf(s.cfg, actor, false), rbac.PermManageCreators) {
		return "", fmt.Errorf("only an admin may manage creators")
	}
	if !auth.IsValidAddress(creator) {
		return "", auth.ErrBadAddress
	}

	addr := common.HexToAddress(creator)
	approved, err := s.reader.IsApprovedCreator(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("read creator status: %w", err)
	}
	if approved == grant {
		if grant {
			return "", fmt.Errorf("%s is already an approved creator", addr.Hex())
		}
		return "", fmt.Errorf("%s is not an approved creator", addr.Hex())
	}

	actionID := fmt.Sprintf("creator:%s", strings.ToLower(creator))
	if s.tracker.InFlight(actionID) {
		return "", ErrActionInFlight
	}
	var h *chain.TxHandle
	if grant {
		h = s.writer.ApproveCreator(ctx, addr)
	} else {
		h = s.writer.RevokeCreator(ctx, addr)
	}
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}

	action := "creator_revoked"
	if grant {
		action = "creator_approved"
	}
	id := addr.Hex()
	s.settle(h, actor, action, "user", &id, func(ctx context.Context) {
		if u, err := s.userRepo.GetByAddress(ctx, creator); err == nil {
			if err := s.userRepo.SetCreator(ctx, u.ID, grant); err != nil {
				s.log.Warn("set creator flag failed", zap.String("address", creator), zap.Error(err))
			}
		}
		_ = s.publisher.Publish(ctx, events.StreamDonations, events.Event{
			Type:    events.EventCreatorStatusChanged,
			Payload: map[string]any{"creator": strings.ToLower(creator), "approved": grant},
		})
	})
	return actionID, nil
}

// PendingQueue lists undecided donations for a center, oldest first.
func (s *DonationService) PendingQueue(ctx context.Context, actor string, centerID uint64) ([]*models.PendingDonation, error) {
	c, err := s.GetCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}
	role := roleOf(s.cfg, actor, strings.EqualFold(c.Owner, actor))
	if !rbac.HasPermission(role, rbac.PermDecideDonation) {
		return nil, fmt.Errorf("only the center owner or an admin may view the queue")
	}
	return s.donationRepo.ListPendingByCenter(ctx, centerID)
}

func (s *DonationService) MyDonations(ctx context.Context, donor string) ([]*models.PendingDonation, error) {
	return s.donationRepo.ListByDonor(ctx, donor)
}

func (s *DonationService) getDonation(ctx context.Context, id uint64) (*models.PendingDonation, error) {
	if d, err := s.donationRepo.GetDonation(ctx, id); err == nil {
		return d, nil
	}
	d, err := s.reader.GetPendingDonation(ctx, id, time.Duration(s.cfg.DonationExpirySeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("donation %d: %w", id, err)
	}
	_ = s.donationRepo.UpsertDonation(ctx, d)
	return d, nil
}

func (s *DonationService) settle(h *chain.TxHandle, actor, action, entityType string, entityID *string, onSuccess func(context.Context)) {
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

func (s *DonationService) refreshCenter(ctx context.Context, id uint64) {
	c, err := s.reader.GetCenter(ctx, id)
	if err != nil {
		s.log.Warn("refresh center failed", zap.Uint64("center_id", id), zap.Error(err))
		return
	}
	if err := s.donationRepo.UpsertCenter(ctx, c); err != nil {
		s.log.Warn("cache center failed", zap.Uint64("center_id", id), zap.Error(err))
	}
}

func (s *DonationService) refreshDonation(ctx context.Context, id uint64) {
	d, err := s.reader.GetPendingDonation(ctx, id, time.Duration(s.cfg.DonationExpirySeconds)*time.Second)
	if err != nil {
		s.log.Warn("refresh donation failed", zap.Uint64("donation_id", id), zap.Error(err))
		return
	}
	if err := s.donationRepo.UpsertDonation(ctx, d); err != nil {
		s.log.Warn("cache donation failed", zap.Uint64("donation_id", id), zap.Error(err))
	}
}

func (s *DonationService) syncCenters(ctx context.Context) {
	count, err := s.reader.CenterCount(ctx)
	if err != nil {
		s.log.Warn("center count read failed", zap.Error(err))
		return
	}
	for id := uint64(1); id <= count; id++ {
		if _, err := s.donationRepo.GetCenter(ctx, id); err == nil {
			continue
		}
		s.refreshCenter(ctx, id)
	}
}

func (s *DonationService) syncDonations(ctx context.Context) {
	count, err := s.reader.PendingDonationCount(ctx)
	if err != nil {
		s.log.Warn("donation count read failed", zap.Error(err))
		return
	}
	for id := uint64(1); id <= count; id++ {
		if _, err := s.donationRepo.GetDonation(ctx, id); err == nil {
			continue
		}
		s.refreshDonation(ctx, id)
	}
}
