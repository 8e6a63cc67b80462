package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/auth"
	"github.com/greenloop/backend/internal/chain"
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/models"
	"github.com/greenloop/backend/internal/repositories"
)

type ProfileService struct {
	userRepo *repositories.UserRepo
	reader   *chain.Reader
	writer   *chain.Writer
	tracker  *chain.ActionTracker
	cfg      *config.Config
	log      *zap.Logger
}

func NewProfileService(
	userRepo *repositories.UserRepo,
	reader *chain.Reader,
	writer *chain.Writer,
	tracker *chain.ActionTracker,
	cfg *config.Config,
	log *zap.Logger,
) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		reader:   reader,
		writer:   writer,
		tracker:  tracker,
		cfg:      cfg,
		log:      log,
	}
}

// Get merges the on-chain profile with locally stored display settings.
// Chain wins for display name and avatar; theme and motion are local.
func (s *ProfileService) Get(ctx context.Context, address string) (*models.UserProfile, error) {
	if !auth.IsValidAddress(address) {
		return nil, auth.ErrBadAddress
	}
	checksummed := common.HexToAddress(address).Hex()

	local, err := s.userRepo.GetProfile(ctx, checksummed)
	if err == pgx.ErrNoRows {
		local = &models.UserProfile{Address: checksummed, Theme: models.ThemeSystem}
		// No local row yet: the user may have persisted aesthetics on
		// chain from another client.
		if theme, reduced, err := s.reader.GetAesthetics(ctx, common.HexToAddress(address)); err == nil && models.IsValidTheme(theme) {
			local.Theme = theme
			local.ReducedMotion = reduced
		}
	} else if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	onchain, err := s.reader.GetProfile(ctx, common.HexToAddress(address))
	if err != nil {
		// Surface the read failure but keep serving local settings.
		s.log.Warn("on-chain profile read failed", zap.String("address", checksummed), zap.Error(err))
		return local, err
	}
	if onchain != nil {
		local.DisplayName = onchain.DisplayName
		local.AvatarURI = onchain.AvatarURI
	}
	return local, nil
}

type UpdateProfileRequest struct {
	DisplayName   *string `json:"display_name"`
	AvatarURI     *string `json:"avatar_uri"`
	Theme         string  `json:"theme"`
	ReducedMotion bool    `json:"reduced_motion"`
	// PersistAesthetics additionally writes theme settings on chain so
	// they follow the wallet across devices. Off by default: it costs gas.
	PersistAesthetics bool `json:"persist_aesthetics"`
}

// Update stores local settings immediately and relays display name and
// avatar changes on chain when present.
func (s *ProfileService) Update(ctx context.Context, address string, req UpdateProfileRequest) (string, error) {
	if !auth.IsValidAddress(address) {
		return "", auth.ErrBadAddress
	}
	if req.Theme != "" && !models.IsValidTheme(req.Theme) {
		return "", fmt.Errorf("invalid theme %q", req.Theme)
	}
	checksummed := common.HexToAddress(address).Hex()

	theme := req.Theme
	if theme == "" {
		theme = models.ThemeSystem
	}
	if err := s.userRepo.UpsertProfile(ctx, &models.UserProfile{
		Address:       checksummed,
		DisplayName:   req.DisplayName,
		AvatarURI:     req.AvatarURI,
		Theme:         theme,
		ReducedMotion: req.ReducedMotion,
	}); err != nil {
		return "", fmt.Errorf("store profile settings: %w", err)
	}

	if req.PersistAesthetics {
		actionID := fmt.Sprintf("profile:%s:aesthetics", checksummed)
		h := s.writer.SetAesthetics(ctx, theme, req.ReducedMotion)
		if !s.tracker.Track(actionID, h) {
			return "", ErrActionInFlight
		}
		if req.DisplayName == nil && req.AvatarURI == nil {
			return actionID, nil
		}
	}

	// Local-only update: nothing to relay.
	if req.DisplayName == nil && req.AvatarURI == nil {
		return "", nil
	}

	var name, avatar string
	if req.DisplayName != nil {
		name = *req.DisplayName
	}
	if req.AvatarURI != nil {
		avatar = *req.AvatarURI
	}

	actionID := fmt.Sprintf("profile:%s:update", checksummed)
	h := s.writer.SetProfile(ctx, name, avatar)
	if !s.tracker.Track(actionID, h) {
		return "", ErrActionInFlight
	}
	return actionID, nil
}
