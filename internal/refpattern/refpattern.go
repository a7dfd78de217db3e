// Package refpattern implements the Reference Pattern (RP): a purely
// functional object, parameterized by x, exposing where each stage of
// the per-pair adder reads its two input bits.
package refpattern

import (
	"fmt"
	"math/bits"

	"collatz/internal/pairnum"
)

// ReferencePattern is parameterized by x (precondition: x >= 3 and x-1
// is a power of two) and never mutated after construction.
type ReferencePattern struct {
	x     uint64
	s     int // log2(x-1)
	t     int // s/2
	sEven bool
}

// New validates x and builds its reference pattern. Failure is a
// precondition error (a programming error, not a runtime signal), per
// spec §7.
func New(x uint64) (*ReferencePattern, error) {
	if x < 3 {
		return nil, fmt.Errorf("collatz: precondition violation: x=%d must be >= 3", x)
	}
	xm1 := x - 1
	if xm1 == 0 || xm1&(xm1-1) != 0 {
		return nil, fmt.Errorf("collatz: precondition violation: x-1=%d must be a power of two", xm1)
	}
	s := bits.TrailingZeros64(xm1)
	return &ReferencePattern{
		x:     x,
		s:     s,
		t:     s / 2,
		sEven: s%2 == 0,
	}, nil
}

// X returns the multiplier this pattern was built for.
func (rp *ReferencePattern) X() uint64 { return rp.x }

// S returns log2(x-1).
func (rp *ReferencePattern) S() int { return rp.s }

// T returns floor(s/2).
func (rp *ReferencePattern) T() int { return rp.t }

// SEven reports whether s is even.
func (rp *ReferencePattern) SEven() bool { return rp.sEven }

// ExtraPairs is the margin ceil((s+1)/2) that SS/PS must size their
// output streams by, beyond the input pair count, to accommodate the
// reference pattern's lookback window and drain the final carry.
func (rp *ReferencePattern) ExtraPairs() int {
	return (rp.s + 2) / 2
}

// bitAt reads a single pair-position bit from a packed stream, 0 for
// any out-of-range index (negative or >= pairCount).
func bitAt(words []uint64, pairCount, i int) uint64 {
	if i < 0 || i >= pairCount {
		return 0
	}
	w, b := i/64, uint(i%64)
	return (words[w] >> b) & 1
}

// RefR returns (p_R, q_R) at pair index i, single-bit granularity, for
// the sequential scan.
func (rp *ReferencePattern) RefR(m4, m6 []uint64, pairCount, i int) (pR, qR uint64) {
	if rp.sEven {
		return bitAt(m6, pairCount, i-rp.t), bitAt(m6, pairCount, i)
	}
	return bitAt(m4, pairCount, i-rp.t-1), bitAt(m6, pairCount, i)
}

// RefL returns (p_L, q_L) at pair index i, single-bit granularity.
func (rp *ReferencePattern) RefL(m4, m6 []uint64, pairCount, i int) (pL, qL uint64) {
	if rp.sEven {
		return bitAt(m4, pairCount, i-rp.t), bitAt(m4, pairCount, i)
	}
	return bitAt(m6, pairCount, i-rp.t), bitAt(m4, pairCount, i)
}

// RefWindowR returns the 64-bit (p_R, q_R) windows for the word starting
// at pair index wordStart (a multiple of 64), used by the packed scan.
func (rp *ReferencePattern) RefWindowR(m4, m6 []uint64, pairCount, wordStart int) (pR, qR uint64) {
	qR = pairnum.ExtractWindow(m6, pairCount, wordStart)
	if rp.sEven {
		pR = pairnum.ExtractWindow(m6, pairCount, wordStart-rp.t)
	} else {
		pR = pairnum.ExtractWindow(m4, pairCount, wordStart-rp.t-1)
	}
	return
}

// RefWindowL returns the 64-bit (p_L, q_L) windows for the word starting
// at pair index wordStart.
func (rp *ReferencePattern) RefWindowL(m4, m6 []uint64, pairCount, wordStart int) (pL, qL uint64) {
	qL = pairnum.ExtractWindow(m4, pairCount, wordStart)
	if rp.sEven {
		pL = pairnum.ExtractWindow(m4, pairCount, wordStart-rp.t)
	} else {
		pL = pairnum.ExtractWindow(m6, pairCount, wordStart-rp.t)
	}
	return
}
