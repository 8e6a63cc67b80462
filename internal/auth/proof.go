package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressPattern matches a 0x-prefixed 20-byte hex address. Inputs that
// fail this check are rejected before any chain call is attempted.
var AddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

var (
	ErrBadAddress   = errors.New("malformed wallet address")
	ErrBadSignature = errors.New("signature does not match address")
	ErrProofExpired = errors.New("proof payload expired")
)

// IsValidAddress reports whether s is a well-formed EVM address.
func IsValidAddress(s string) bool {
	return AddressPattern.MatchString(s)
}

// ProofMessage is the exact text the wallet personal-signs during login.
// Domain and nonce are embedded so a signature cannot be replayed against
// another deployment or another login attempt.
func ProofMessage(domain, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf("%s wants you to sign in with your wallet.\nNonce: %s\nIssued At: %s",
		domain, nonce, issuedAt.UTC().Format(time.RFC3339))
}

// VerifyProof checks an EIP-191 personal-sign signature over the proof
// message and confirms it recovers to the claimed address.
func VerifyProof(address, domain, nonce string, issuedAt time.Time, maxAge time.Duration, signatureHex string) error {
	if !IsValidAddress(address) {
		return ErrBadAddress
	}
	if maxAge > 0 && time.Since(issuedAt) > maxAge {
		return ErrProofExpired
	}

	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("signature length %d, expected %d", len(sig), crypto.SignatureLength)
	}
	// Wallets emit V as 27/28; recovery wants 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	msg := ProofMessage(domain, nonce, issuedAt)
	digest := personalSignHash([]byte(msg))

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return fmt.Errorf("recover public key: %w", err)
	}
	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), common.HexToAddress(address).Hex()) {
		return ErrBadSignature
	}
	return nil
}

// personalSignHash applies the EIP-191 "Ethereum Signed Message" prefix.
func personalSignHash(data []byte) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(data), data)
	return crypto.Keccak256([]byte(prefixed))
}
