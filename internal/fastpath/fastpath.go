// Package fastpath implements the Small-Value Fast Path (FP): fixed
// width 128-bit, then 256-bit, scalar iteration of xn+1 while the
// running value fits, escalating to the pair-scan engine only on
// overflow.
package fastpath

import (
	"math/big"
	"math/bits"

	"collatz/internal/gpk"
	"collatz/internal/pairnum"
	"collatz/internal/refpattern"
	"collatz/internal/scan"
)

// Outcome classifies how an Iterate call ended.
type Outcome int

const (
	// Converged means the running value reached 1.
	Converged Outcome = iota
	// StoppingTimeReached means the running value fell strictly below
	// the starting value (only checked when UseStoppingTime is set).
	StoppingTimeReached
	// BudgetExhausted means MaxSteps was reached without termination.
	BudgetExhausted
	// Overflow means the 256-bit scalar phase overflowed and the
	// caller must continue the trajectory using the pair-scan engine,
	// seeded from Value/Steps.
	Overflow
)

// wide128 is a little-endian 2-limb fixed-width unsigned integer: the
// Phase 1 scalar representation. wide128[0] is the least significant
// 64 bits.
type wide128 [2]uint64

func wide128FromU64(n uint64) wide128 {
	return wide128{n, 0}
}

// mulAdd1 computes x*u + 1, reporting overflow if the true result does
// not fit in 128 bits.
func (u wide128) mulAdd1(x uint64) (wide128, bool) {
	var out wide128
	var carry uint64
	for i := 0; i < 2; i++ {
		hi, lo := bits.Mul64(u[i], x)
		lo, c := bits.Add64(lo, carry, 0)
		out[i] = lo
		carry = hi + c
	}
	if carry != 0 {
		return out, true
	}
	addCarry := uint64(1)
	for i := 0; i < 2 && addCarry != 0; i++ {
		out[i], addCarry = bits.Add64(out[i], addCarry, 0)
	}
	return out, addCarry != 0
}

func (u wide128) trailingZeros() int {
	if u[0] != 0 {
		return bits.TrailingZeros64(u[0])
	}
	if u[1] != 0 {
		return 64 + bits.TrailingZeros64(u[1])
	}
	return 128
}

func (u wide128) shiftRight(d int) wide128 {
	if d <= 0 {
		return u
	}
	var out wide128
	limbShift := d / 64
	bitShift := uint(d % 64)
	for i := 0; i < 2; i++ {
		srcIdx := i + limbShift
		if srcIdx >= 2 {
			continue
		}
		v := u[srcIdx] >> bitShift
		if bitShift != 0 && srcIdx+1 < 2 {
			v |= u[srcIdx+1] << (64 - bitShift)
		}
		out[i] = v
	}
	return out
}

func (u wide128) isOne() bool {
	return u[0] == 1 && u[1] == 0
}

func (u wide128) less(v wide128) bool {
	if u[1] != v[1] {
		return u[1] < v[1]
	}
	return u[0] < v[0]
}

func (u wide128) toBigInt() *big.Int {
	result := new(big.Int).SetUint64(u[1])
	result.Lsh(result, 64)
	result.Or(result, new(big.Int).SetUint64(u[0]))
	return result
}

func (u wide128) toPairNumber() pairnum.PairNumber {
	return pairnum.FromBinary(u.toBigInt())
}

// widen promotes a Phase 1 value to the Phase 1.5 four-limb
// representation, for continuing the recurrence once 128 bits no
// longer suffice.
func (u wide128) widen() wide256 {
	return wide256{u[0], u[1], 0, 0}
}

// wide256 is a little-endian 4-limb fixed-width unsigned integer: the
// Phase 1.5 scalar representation. wide256[0] is the least significant
// 64 bits.
type wide256 [4]uint64

func wideFromU64(n uint64) wide256 {
	return wide256{n, 0, 0, 0}
}

// mulAdd1 computes x*u + 1, reporting overflow if the true result does
// not fit in 256 bits. x is assumed small relative to 2^64 (true for
// every Collatz-type multiplier this engine supports), so the
// high-limb-of-multiply-plus-carry addition below cannot itself
// overflow a uint64.
func (u wide256) mulAdd1(x uint64) (wide256, bool) {
	var out wide256
	var carry uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(u[i], x)
		lo, c := bits.Add64(lo, carry, 0)
		out[i] = lo
		carry = hi + c
	}
	if carry != 0 {
		return out, true
	}
	addCarry := uint64(1)
	for i := 0; i < 4 && addCarry != 0; i++ {
		out[i], addCarry = bits.Add64(out[i], addCarry, 0)
	}
	return out, addCarry != 0
}

func (u wide256) trailingZeros() int {
	for i := 0; i < 4; i++ {
		if u[i] != 0 {
			return i*64 + bits.TrailingZeros64(u[i])
		}
	}
	return 256
}

func (u wide256) shiftRight(d int) wide256 {
	if d <= 0 {
		return u
	}
	var out wide256
	limbShift := d / 64
	bitShift := uint(d % 64)
	for i := 0; i < 4; i++ {
		srcIdx := i + limbShift
		if srcIdx >= 4 {
			continue
		}
		v := u[srcIdx] >> bitShift
		if bitShift != 0 && srcIdx+1 < 4 {
			v |= u[srcIdx+1] << (64 - bitShift)
		}
		out[i] = v
	}
	return out
}

func (u wide256) isOne() bool {
	return u[0] == 1 && u[1] == 0 && u[2] == 0 && u[3] == 0
}

// less reports whether u < v, ordinary unsigned 256-bit comparison.
func (u wide256) less(v wide256) bool {
	for i := 3; i >= 0; i-- {
		if u[i] != v[i] {
			return u[i] < v[i]
		}
	}
	return false
}

func (u wide256) toBigInt() *big.Int {
	result := new(big.Int)
	for i := 3; i >= 0; i-- {
		result.Lsh(result, 64)
		result.Or(result, new(big.Int).SetUint64(u[i]))
	}
	return result
}

func (u wide256) toPairNumber() pairnum.PairNumber {
	return pairnum.FromBinary(u.toBigInt())
}

// Options configures one fast-path trajectory.
type Options struct {
	X               uint64
	MaxSteps        uint64
	UsePhase1       bool // disables BOTH the 128-bit and 256-bit scalar phases when false
	UseStoppingTime bool
	CollectGpk      bool
}

// Result is the outcome of one fast-path trajectory segment.
type Result struct {
	Outcome  Outcome
	Steps    uint64
	MaxValue *big.Int // peak value observed, for trajectory reporting
	GpkStats *gpk.Stats
	// Value carries the running value in every outcome. RawPairNumber
	// carries it only when Outcome is Overflow (for hand-off to the
	// pair-scan engine) or BudgetExhausted; it is left unset otherwise.
	Value         *big.Int
	RawPairNumber pairnum.PairNumber
}

// Iterate runs the fast path starting from n (odd, fits in uint64):
// Phase 1 in 128-bit scalar arithmetic, widening to Phase 1.5's 256-bit
// representation only once 128 bits overflow, and reporting Overflow
// (for escalation to the pair-scan engine) only once 256 bits overflow
// too. When opts.UsePhase1 is false both scalar phases are skipped
// entirely and Iterate immediately reports Overflow, per the original
// implementation's "use_phase1" toggle gating both scalar phases
// together.
func Iterate(n uint64, opts Options) Result {
	maxValue := new(big.Int).SetUint64(n)

	var rp *refpattern.ReferencePattern
	var stats *gpk.Stats
	if opts.CollectGpk {
		var err error
		rp, err = refpattern.New(opts.X)
		if err != nil {
			opts.CollectGpk = false
		} else {
			stats = &gpk.Stats{}
		}
	}

	if !opts.UsePhase1 {
		w := wideFromU64(n)
		return Result{
			Outcome:       Overflow,
			Steps:         0,
			MaxValue:      maxValue,
			GpkStats:      stats,
			Value:         w.toBigInt(),
			RawPairNumber: w.toPairNumber(),
		}
	}

	collectStep := func(pn pairnum.PairNumber) {
		if opts.CollectGpk {
			res := scan.Sequential(pn, rp, true)
			stats.AddStep(res.Gpk)
		}
	}

	start128 := wide128FromU64(n)
	cur128 := start128
	step := uint64(0)

	// Phase 1: 128-bit scalar iteration.
	for ; step < opts.MaxSteps; step++ {
		next, overflowed := cur128.mulAdd1(opts.X)
		if overflowed {
			break
		}
		collectStep(cur128.toPairNumber())
		d := next.trailingZeros()
		next = next.shiftRight(d)
		cur128 = next

		if v := cur128.toBigInt(); v.Cmp(maxValue) > 0 {
			maxValue = v
		}
		if cur128.isOne() {
			return Result{Outcome: Converged, Steps: step + 1, MaxValue: maxValue, GpkStats: stats, Value: cur128.toBigInt()}
		}
		if opts.UseStoppingTime && cur128.less(start128) {
			return Result{Outcome: StoppingTimeReached, Steps: step + 1, MaxValue: maxValue, GpkStats: stats, Value: cur128.toBigInt()}
		}
	}

	if step >= opts.MaxSteps {
		return Result{
			Outcome:       BudgetExhausted,
			Steps:         opts.MaxSteps,
			MaxValue:      maxValue,
			GpkStats:      stats,
			Value:         cur128.toBigInt(),
			RawPairNumber: cur128.toPairNumber(),
		}
	}

	// Phase 1.5: widen to 256-bit and continue the same recurrence.
	startWide := start128.widen()
	cur := cur128.widen()
	for ; step < opts.MaxSteps; step++ {
		next, overflowed := cur.mulAdd1(opts.X)
		if overflowed {
			return Result{
				Outcome:       Overflow,
				Steps:         step,
				MaxValue:      maxValue,
				GpkStats:      stats,
				Value:         cur.toBigInt(),
				RawPairNumber: cur.toPairNumber(),
			}
		}
		collectStep(cur.toPairNumber())
		d := next.trailingZeros()
		next = next.shiftRight(d)
		cur = next

		if v := cur.toBigInt(); v.Cmp(maxValue) > 0 {
			maxValue = v
		}
		if cur.isOne() {
			return Result{Outcome: Converged, Steps: step + 1, MaxValue: maxValue, GpkStats: stats, Value: cur.toBigInt()}
		}
		if opts.UseStoppingTime && cur.less(startWide) {
			return Result{Outcome: StoppingTimeReached, Steps: step + 1, MaxValue: maxValue, GpkStats: stats, Value: cur.toBigInt()}
		}
	}

	return Result{
		Outcome:       BudgetExhausted,
		Steps:         opts.MaxSteps,
		MaxValue:      maxValue,
		GpkStats:      stats,
		Value:         cur.toBigInt(),
		RawPairNumber: cur.toPairNumber(),
	}
}
