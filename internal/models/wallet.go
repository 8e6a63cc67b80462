package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginNonce is a one-shot challenge the wallet signs to prove ownership
// of its address. Consumed exactly once; expired or reused nonces are rejected.
type LoginNonce struct {
	ID        uuid.UUID `json:"id"`
	Nonce     string    `json:"nonce"`
	Address   *string   `json:"-"` // set once the nonce is claimed by a login attempt
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
	Used      bool      `json:"-"`
}
