package token

import (
	"math/big"
	"testing"
)

func bi(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad test literal: " + s)
	}
	return v
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      *big.Int
		expected string
	}{
		{"nil", nil, "0.0000"},
		{"zero", big.NewInt(0), "0.0000"},
		{"one token", bi("1000000000000000000"), "1.0000"},
		{"half token", bi("500000000000000000"), "0.5000"},
		{"truncates not rounds", bi("1999999999999999999"), "1.9999"},
		{"dust below precision", bi("99999999999999"), "0.0000"},
		{"just at precision", bi("100000000000000"), "0.0001"},
		{"large", bi("123456789123456789123456789"), "123456789.1234"},
		{"negative", bi("-1500000000000000000"), "-1.5000"},
		{"negative dust", bi("-1"), "0.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(tt.raw); got != tt.expected {
				t.Errorf("FormatAmount(%v) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestFormatAmountString(t *testing.T) {
	if got := FormatAmountString("2500000000000000000"); got != "2.5000" {
		t.Errorf("got %q, want 2.5000", got)
	}
	if got := FormatAmountString("not a number"); got != "0.0000" {
		t.Errorf("unparseable input should render as 0.0000, got %q", got)
	}
	if got := FormatAmountString(""); got != "0.0000" {
		t.Errorf("empty input should render as 0.0000, got %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{"1", "1000000000000000000", false},
		{"12.5", "12500000000000000000", false},
		{"0.0001", "100000000000000", false},
		{".5", "500000000000000000", false},
		{"-3", "", true},   // unsigned domain
		{"-0.5", "", true}, // sign hidden behind a fraction
		{"+3", "", true},
		{"0.0000000000000000001", "", true}, // 19 fractional digits
		{"", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			}
			if got.String() != tt.expected {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.expected)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0.0000", "1.0000", "42.1234", "100000.5000"} {
		v, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", s, err)
		}
		if got := FormatAmount(v); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	oneEth := bi("1000000000000000000")
	rate := bi("100000000000000000000") // 100 tokens per ETH

	if got := EstimateTokens(oneEth, rate); got.Cmp(bi("100000000000000000000")) != 0 {
		t.Errorf("1 ETH at 100/ETH = %s, want 100 tokens", got)
	}

	halfEth := bi("500000000000000000")
	if got := EstimateTokens(halfEth, rate); got.Cmp(bi("50000000000000000000")) != 0 {
		t.Errorf("0.5 ETH at 100/ETH = %s, want 50 tokens", got)
	}

	if got := EstimateTokens(nil, rate); got.Sign() != 0 {
		t.Errorf("nil amount should estimate 0, got %s", got)
	}
}
