// Package token converts between 18-decimal fixed-point token amounts and
// the 4-digit display strings the API serves.
package token

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimals is the fixed-point precision of the GreenLoop token, matching
// the ERC-20 decimals() value.
const Decimals = 18

// displayDigits is how many fractional digits FormatAmount keeps.
const displayDigits = 4

var (
	unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

	// truncUnit drops everything below the displayed precision.
	truncUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals-displayDigits), nil)
)

// FormatAmount renders a raw fixed-point amount as a decimal string with
// exactly four fractional digits, truncating (never rounding) the rest.
// A nil amount renders as "0.0000".
func FormatAmount(raw *big.Int) string {
	if raw == nil {
		return "0.0000"
	}
	v := raw
	neg := v.Sign() < 0
	if neg {
		v = new(big.Int).Neg(v)
	}
	// Scale down to displayDigits fractional digits, truncating.
	scaled := new(big.Int).Div(v, truncUnit)
	whole := new(big.Int)
	frac := new(big.Int)
	whole.DivMod(scaled, big.NewInt(10000), frac)

	s := fmt.Sprintf("%s.%04d", whole.String(), frac.Int64())
	if neg && scaled.Sign() != 0 {
		s = "-" + s
	}
	return s
}

// FormatAmountString is FormatAmount over a raw decimal string, the form
// amounts take in the cache and over the wire. Unparseable input renders
// as "0.0000".
func FormatAmountString(raw string) string {
	v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return "0.0000"
	}
	return FormatAmount(v)
}

// ParseAmount converts a human decimal string ("12.5") into a raw
// fixed-point integer. Amounts are unsigned on chain, so a sign prefix is
// rejected, as are fractional digits beyond the token precision.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if s[0] == '-' || s[0] == '+' {
		return nil, fmt.Errorf("signed amount %q", s)
	}
	wholePart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		wholePart, fracPart = s[:i], s[i+1:]
	}
	if wholePart == "" {
		wholePart = "0"
	}
	if len(fracPart) > Decimals {
		return nil, fmt.Errorf("amount %q exceeds %d decimal places", s, Decimals)
	}
	digits := wholePart + fracPart + strings.Repeat("0", Decimals-len(fracPart))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// EstimateTokens computes how many whole tokens an ETH amount buys at the
// given rate (tokens per ETH). Both inputs are raw fixed-point values; the
// result is a raw fixed-point token amount.
func EstimateTokens(weiAmount, tokensPerEth *big.Int) *big.Int {
	if weiAmount == nil || tokensPerEth == nil {
		return new(big.Int)
	}
	out := new(big.Int).Mul(weiAmount, tokensPerEth)
	return out.Div(out, unit)
}
