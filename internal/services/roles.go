package services

import (
	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/rbac"
)

// roleOf resolves the role an address acts under. Ownership is
// contextual (center owner, listing seller), so the caller passes what
// it has already established about the entity at hand.
func roleOf(cfg *config.Config, actor string, ownsEntity bool) string {
	switch {
	case cfg.IsAdmin(actor):
		return rbac.RoleAdmin
	case ownsEntity:
		return rbac.RoleCenterOwner
	default:
		return rbac.RoleUser
	}
}
