package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Address      string    `json:"address"` // 0x-prefixed, checksummed
	Username     *string   `json:"username,omitempty"`
	IsCreator    bool      `json:"is_creator"` // approved to register donation centers
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// UserProfile mirrors the on-chain profile record (setUserProfile /
// setUserAesthetics on the profile contract).
type UserProfile struct {
	Address       string    `json:"address"`
	DisplayName   *string   `json:"display_name,omitempty"`
	AvatarURI     *string   `json:"avatar_uri,omitempty"`
	Theme         string    `json:"theme"` // light/dark/system
	ReducedMotion bool      `json:"reduced_motion"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

var AllThemes = []string{ThemeLight, ThemeDark, ThemeSystem}

func IsValidTheme(t string) bool {
	for _, v := range AllThemes {
		if v == t {
			return true
		}
	}
	return false
}
