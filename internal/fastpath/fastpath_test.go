package fastpath

import (
	"math/big"
	"testing"
)

func TestMulAdd1MatchesBigInt(t *testing.T) {
	xs := []uint64{3, 5, 9, 17, 33, 65}
	for _, x := range xs {
		for n := uint64(1); n <= 2000; n += 2 {
			u := wideFromU64(n)
			out, overflow := u.mulAdd1(x)
			if overflow {
				t.Fatalf("unexpected overflow for x=%d n=%d", x, n)
			}
			want := new(big.Int).Add(new(big.Int).Mul(big.NewInt(int64(n)), big.NewInt(int64(x))), big.NewInt(1))
			if out.toBigInt().Cmp(want) != 0 {
				t.Fatalf("x=%d n=%d: mulAdd1 = %s, want %s", x, n, out.toBigInt().String(), want.String())
			}
		}
	}
}

func TestMulAdd1DetectsOverflow(t *testing.T) {
	maxWide := wide256{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}
	if _, overflow := maxWide.mulAdd1(3); !overflow {
		t.Error("expected overflow multiplying max wide256 value by 3")
	}
}

func TestWide128MulAdd1MatchesBigInt(t *testing.T) {
	xs := []uint64{3, 5, 9, 17, 33, 65}
	for _, x := range xs {
		for n := uint64(1); n <= 2000; n += 2 {
			u := wide128FromU64(n)
			out, overflow := u.mulAdd1(x)
			if overflow {
				t.Fatalf("unexpected overflow for x=%d n=%d", x, n)
			}
			want := new(big.Int).Add(new(big.Int).Mul(big.NewInt(int64(n)), big.NewInt(int64(x))), big.NewInt(1))
			if out.toBigInt().Cmp(want) != 0 {
				t.Fatalf("x=%d n=%d: wide128 mulAdd1 = %s, want %s", x, n, out.toBigInt().String(), want.String())
			}
		}
	}
}

func TestWide128MulAdd1DetectsOverflow(t *testing.T) {
	maxWide := wide128{^uint64(0), ^uint64(0)}
	if _, overflow := maxWide.mulAdd1(3); !overflow {
		t.Error("expected overflow multiplying max wide128 value by 3")
	}
}

func TestWide128WidenPreservesValue(t *testing.T) {
	u := wide128{123, 456}
	w := u.widen()
	if w[0] != 123 || w[1] != 456 || w[2] != 0 || w[3] != 0 {
		t.Errorf("widen() = %v, want [123 456 0 0]", w)
	}
}

func TestTrailingZerosAndShift(t *testing.T) {
	u := wideFromU64(0b1011000)
	if got := u.trailingZeros(); got != 3 {
		t.Errorf("trailingZeros = %d, want 3", got)
	}
	shifted := u.shiftRight(3)
	if shifted[0] != 0b1011 {
		t.Errorf("shiftRight(3) = %b, want %b", shifted[0], 0b1011)
	}
}

func TestShiftRightAcrossLimbs(t *testing.T) {
	u := wide256{0, 1, 0, 0} // value = 2^64
	shifted := u.shiftRight(64)
	if shifted[0] != 1 || shifted[1] != 0 {
		t.Errorf("shiftRight(64) = %v, want [1 0 0 0]", shifted)
	}
}

func TestIsOne(t *testing.T) {
	if !wideFromU64(1).isOne() {
		t.Error("wideFromU64(1).isOne() = false")
	}
	if wideFromU64(2).isOne() {
		t.Error("wideFromU64(2).isOne() = true")
	}
}

func TestIterateConverges(t *testing.T) {
	res := Iterate(27, Options{X: 3, MaxSteps: 1000, UsePhase1: true})
	if res.Outcome != Converged {
		t.Fatalf("Iterate(27, x=3) outcome = %v, want Converged", res.Outcome)
	}
	if res.Steps != 41 {
		t.Errorf("Iterate(27, x=3) steps = %d, want 41", res.Steps)
	}
}

func TestIterateUsePhase1FalseReportsOverflowImmediately(t *testing.T) {
	res := Iterate(27, Options{X: 3, MaxSteps: 1000, UsePhase1: false})
	if res.Outcome != Overflow {
		t.Fatalf("Iterate with UsePhase1=false outcome = %v, want Overflow", res.Outcome)
	}
	if res.Steps != 0 {
		t.Errorf("Iterate with UsePhase1=false steps = %d, want 0", res.Steps)
	}
}

func TestIterateBudgetExhausted(t *testing.T) {
	res := Iterate(27, Options{X: 3, MaxSteps: 2, UsePhase1: true})
	if res.Outcome != BudgetExhausted {
		t.Fatalf("Iterate(27,x=3,maxSteps=2) outcome = %v, want BudgetExhausted", res.Outcome)
	}
	if res.Steps != 2 {
		t.Errorf("steps = %d, want 2", res.Steps)
	}
}

// TestFastPathStoppingTimeMatchesBigIntReference is the paper's
// fast-path equivalence property: for every odd n in [1,999] with
// x=5, the stopping time the 128-bit fast path reports equals that of
// a reference iteration driven by a standard big-integer library,
// under the same stopping predicate and the same divergence cap.
func TestFastPathStoppingTimeMatchesBigIntReference(t *testing.T) {
	const maxSteps = 1000
	for n := uint64(1); n <= 999; n += 2 {
		fp := Iterate(n, Options{X: 5, MaxSteps: maxSteps, UsePhase1: true, UseStoppingTime: true})

		// Mirrors Iterate's own convention: a step is always taken
		// before checking convergence or the stopping-time predicate,
		// matching scenario 3's step(1,3) treatment rather than
		// short-circuiting when the start value already equals 1.
		cur := new(big.Int).SetUint64(n)
		start := new(big.Int).SetUint64(n)
		one := big.NewInt(1)
		refOk := false
		refSteps := uint64(maxSteps)
		for i := uint64(0); i < maxSteps; i++ {
			xn1 := new(big.Int).Add(new(big.Int).Mul(cur, big.NewInt(5)), one)
			var tz uint
			for xn1.Bit(int(tz)) == 0 {
				tz++
			}
			cur = new(big.Int).Rsh(xn1, tz)
			if cur.Cmp(one) == 0 || cur.Cmp(start) < 0 {
				refOk = true
				refSteps = i + 1
				break
			}
		}

		fpConverged := fp.Outcome == Converged || fp.Outcome == StoppingTimeReached
		if fpConverged != refOk {
			t.Fatalf("n=%d: fast path converged=%t (outcome=%v), reference converged=%t", n, fpConverged, fp.Outcome, refOk)
		}
		if fpConverged && fp.Steps != refSteps {
			t.Fatalf("n=%d: fast path steps=%d, reference steps=%d", n, fp.Steps, refSteps)
		}
	}
}
