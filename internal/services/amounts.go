package services

import "math/big"

func parseRaw(s string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	return v, ok
}

func newBig(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// cmpRaw orders two raw decimal amount strings numerically. Unparseable
// values sort last.
func cmpRaw(a, b string) int {
	av, aok := parseRaw(a)
	bv, bok := parseRaw(b)
	switch {
	case aok && bok:
		return av.Cmp(bv)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}
