package pairnum

import (
	"math/big"
	"testing"
)

func bigFromInt64(n int64) *big.Int {
	return big.NewInt(n)
}

func TestRoundTripSmall(t *testing.T) {
	for n := int64(0); n <= 200; n++ {
		pn := FromBinary(bigFromInt64(n))
		got := pn.ToBinary()
		if got.Cmp(bigFromInt64(n)) != 0 {
			t.Errorf("round trip n=%d: got %s", n, got.String())
		}
	}
}

func TestRoundTripMersenne(t *testing.T) {
	exponents := []int{100, 1000, 10000}
	for _, m := range exponents {
		n := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(m)), big.NewInt(1))
		pn := FromBinary(n)
		got := pn.ToBinary()
		if got.Cmp(n) != 0 {
			t.Errorf("round trip 2^%d-1: mismatch", m)
		}
		wantPairs := (m + 1) / 2
		if pn.PairCount() != wantPairs {
			t.Errorf("2^%d-1: pair count = %d, want %d", m, pn.PairCount(), wantPairs)
		}
	}
}

func TestCompareAgreesWithBigInt(t *testing.T) {
	for a := int64(0); a <= 200; a++ {
		for b := int64(0); b <= 200; b++ {
			pa := FromBinary(bigFromInt64(a))
			pb := FromBinary(bigFromInt64(b))
			got := pa.Compare(pb)
			want := 0
			switch {
			case a < b:
				want = -1
			case a > b:
				want = 1
			}
			if sign(got) != want {
				t.Fatalf("compare(%d,%d) = %d, want sign %d", a, b, got, want)
			}
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestIsOneIsZero(t *testing.T) {
	if !FromBinary(bigFromInt64(1)).IsOne() {
		t.Error("FromBinary(1).IsOne() = false")
	}
	if !FromBinary(bigFromInt64(0)).IsZero() {
		t.Error("FromBinary(0).IsZero() = false")
	}
	if FromBinary(bigFromInt64(3)).IsOne() {
		t.Error("FromBinary(3).IsOne() = true")
	}
}

func TestTrimAndMaskKeepsAtLeastOnePair(t *testing.T) {
	m4, m6, k := TrimAndMask([]uint64{0}, []uint64{0}, 1)
	if k != 1 {
		t.Errorf("k = %d, want 1", k)
	}
	if len(m4) != 1 || len(m6) != 1 {
		t.Errorf("unexpected word count after trim: %d/%d", len(m4), len(m6))
	}
}
