// Package oracle provides a big.Int reference implementation of a
// single Collatz-type step and of the stopping-time loop. It is
// exercised only by its own tests; the scan and fast-path test suites
// carry their own math/big reference loops. It favors clarity and
// independence from this module's bit-parallel machinery over speed,
// accelerating only the one operation (multiply) where a dedicated
// library materially helps at multi-kilobit sizes.
package oracle

import (
	"math/big"

	"github.com/remyoudompheng/bigfft"
)

// bigfftThresholdBits is the operand size above which bigfft's
// Karatsuba/FFT multiply overtakes math/big's schoolbook multiply; below
// it, math/big.Mul is already faster and is used directly.
const bigfftThresholdBits = 4096

// Step computes xn+1, its trailing zero count d, and the resulting odd
// value next = (xn+1) >> d, entirely in arbitrary precision.
func Step(n *big.Int, x uint64) (next *big.Int, d uint64) {
	xn := multiply(n, new(big.Int).SetUint64(x))
	xn1 := new(big.Int).Add(xn, big.NewInt(1))
	tz := trailingZeros(xn1)
	return new(big.Int).Rsh(xn1, tz), uint64(tz)
}

// multiply dispatches to bigfft for large operands, where its
// divide-and-conquer multiply wins over math/big's schoolbook
// algorithm; small operands go through math/big directly since bigfft's
// setup overhead would dominate.
func multiply(a, b *big.Int) *big.Int {
	if a.BitLen() >= bigfftThresholdBits || b.BitLen() >= bigfftThresholdBits {
		return bigfft.Mul(a, b)
	}
	return new(big.Int).Mul(a, b)
}

// trailingZeros returns the number of low-order zero bits of n (n must
// be nonzero).
func trailingZeros(n *big.Int) uint {
	if n.Sign() == 0 {
		return 0
	}
	var tz uint
	for n.Bit(int(tz)) == 0 {
		tz++
	}
	return tz
}

// StoppingTime drives Step from start until it reaches 1, falls below
// start (when useStoppingTime is set), or exceeds maxSteps. Unlike the
// fast path, it checks for 1 before taking a step, so a start of 1
// reports 0 steps.
func StoppingTime(start *big.Int, x uint64, maxSteps uint64, useStoppingTime bool) (steps uint64, ok bool) {
	cur := new(big.Int).Set(start)
	one := big.NewInt(1)
	for steps = 0; steps < maxSteps; steps++ {
		if cur.Cmp(one) == 0 {
			return steps, true
		}
		if useStoppingTime && cur.Cmp(start) < 0 {
			return steps, true
		}
		next, _ := Step(cur, x)
		cur = next
	}
	return maxSteps, false
}
