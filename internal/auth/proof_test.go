package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func signProof(t *testing.T, domain, nonce string, issuedAt time.Time) (address, sigHex string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	msg := ProofMessage(domain, nonce, issuedAt)
	sig, err := crypto.Sign(personalSignHash([]byte(msg)), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	// Present V the way wallets do.
	sig[crypto.RecoveryIDOffset] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestVerifyProof(t *testing.T) {
	issued := time.Now()
	addr, sig := signProof(t, "greenloop.example", "nonce-123", issued)

	if err := VerifyProof(addr, "greenloop.example", "nonce-123", issued, time.Minute, sig); err != nil {
		t.Fatalf("valid proof rejected: %v", err)
	}
}

func TestVerifyProofRejectsWrongNonce(t *testing.T) {
	issued := time.Now()
	addr, sig := signProof(t, "greenloop.example", "nonce-123", issued)

	err := VerifyProof(addr, "greenloop.example", "nonce-456", issued, time.Minute, sig)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyProofRejectsWrongDomain(t *testing.T) {
	issued := time.Now()
	addr, sig := signProof(t, "greenloop.example", "nonce-123", issued)

	err := VerifyProof(addr, "evil.example", "nonce-123", issued, time.Minute, sig)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyProofRejectsOtherAddress(t *testing.T) {
	issued := time.Now()
	_, sig := signProof(t, "greenloop.example", "nonce-123", issued)
	other, _ := signProof(t, "greenloop.example", "nonce-123", issued)

	err := VerifyProof(other, "greenloop.example", "nonce-123", issued, time.Minute, sig)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyProofRejectsExpired(t *testing.T) {
	issued := time.Now().Add(-10 * time.Minute)
	addr, sig := signProof(t, "greenloop.example", "nonce-123", issued)

	err := VerifyProof(addr, "greenloop.example", "nonce-123", issued, time.Minute, sig)
	if !errors.Is(err, ErrProofExpired) {
		t.Fatalf("expected ErrProofExpired, got %v", err)
	}
}

func TestVerifyProofRejectsMalformedAddress(t *testing.T) {
	issued := time.Now()
	_, sig := signProof(t, "greenloop.example", "nonce-123", issued)

	for _, bad := range []string{"", "0x123", "not-an-address", "0xZZ96045D1a808913D536A5EF8f021dfF8b6aA9ca"} {
		if err := VerifyProof(bad, "greenloop.example", "nonce-123", issued, time.Minute, sig); !errors.Is(err, ErrBadAddress) {
			t.Errorf("address %q: expected ErrBadAddress, got %v", bad, err)
		}
	}
}

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		addr     string
		expected bool
	}{
		{"0x96045D1a808913D536A5EF8f021dfF8b6aA9ca11", true},
		{"0x0000000000000000000000000000000000000000", true},
		{"96045D1a808913D536A5EF8f021dfF8b6aA9ca11", false},
		{"0x96045D1a808913D536A5EF8f021dfF8b6aA9ca1", false},
		{"0x96045D1a808913D536A5EF8f021dfF8b6aA9ca111", false},
		{"0x96045D1a808913D536A5EF8f021dfF8b6aA9cg11", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidAddress(tt.addr); got != tt.expected {
			t.Errorf("IsValidAddress(%q) = %v, want %v", tt.addr, got, tt.expected)
		}
	}
}
