package oracle

import (
	"math/big"
	"testing"
)

func TestStepMatchesWorkedExamples(t *testing.T) {
	cases := []struct {
		n, x     int64
		wantD    uint64
		wantNext int64
	}{
		{27, 3, 1, 41},
		{27, 5, 3, 17},
		{1, 3, 2, 1},
	}
	for _, c := range cases {
		next, d := Step(big.NewInt(c.n), uint64(c.x))
		if d != c.wantD {
			t.Errorf("Step(%d,%d) d = %d, want %d", c.n, c.x, d, c.wantD)
		}
		if next.Int64() != c.wantNext {
			t.Errorf("Step(%d,%d) next = %s, want %d", c.n, c.x, next.String(), c.wantNext)
		}
	}
}

func TestStepAgreesWithDirectArithmetic(t *testing.T) {
	for n := int64(1); n <= 999; n += 2 {
		next, d := Step(big.NewInt(n), 3)
		xn1 := new(big.Int).Add(new(big.Int).Mul(big.NewInt(n), big.NewInt(3)), big.NewInt(1))
		var tz uint
		for xn1.Bit(int(tz)) == 0 {
			tz++
		}
		want := new(big.Int).Rsh(xn1, tz)
		if d != uint64(tz) {
			t.Fatalf("n=%d: d=%d, want %d", n, d, tz)
		}
		if next.Cmp(want) != 0 {
			t.Fatalf("n=%d: next=%s, want %s", n, next.String(), want.String())
		}
	}
}

func TestStoppingTimeX3N27(t *testing.T) {
	steps, ok := StoppingTime(big.NewInt(27), 3, 1000, false)
	if !ok {
		t.Fatal("StoppingTime(27,3) did not converge within budget")
	}
	if steps != 41 {
		t.Errorf("steps = %d, want 41", steps)
	}
}

func TestStoppingTimeBudgetExhausted(t *testing.T) {
	_, ok := StoppingTime(big.NewInt(27), 3, 2, false)
	if ok {
		t.Error("StoppingTime reported convergence within an impossibly small budget")
	}
}

func TestMultiplyMatchesBigIntAboveThreshold(t *testing.T) {
	a := new(big.Int).Lsh(big.NewInt(1), bigfftThresholdBits+64)
	a.Add(a, big.NewInt(12345))
	b := big.NewInt(7)

	got := multiply(a, b)
	want := new(big.Int).Mul(a, b)
	if got.Cmp(want) != 0 {
		t.Errorf("multiply above bigfft threshold mismatch: got %s want %s", got.String(), want.String())
	}
}
