// Package postprocess implements the PP stage: trimming the raw xn+1
// packed streams a scan engine produces, counting trailing zero bits in
// the fastener view to get d, shifting the fastener view right by d
// (which swaps the m4/m6 roles when d is odd), and re-establishing the
// Pair-Number invariants on the result.
package postprocess

import (
	"math/bits"

	"collatz/internal/pairnum"
)

// Result is the outcome of postprocessing one step's raw xn+1 streams.
type Result struct {
	Next      pairnum.PairNumber
	D         uint64
	Exchanged bool
}

// Finalize runs the full PP pipeline on a raw (xn+1) packed stream pair.
func Finalize(rawM4, rawM6 []uint64, rawPairCount int) Result {
	m4, m6, k := pairnum.TrimAndMask(rawM4, rawM6, rawPairCount)

	d := trailingFastenerZeros(m4, m6, k)
	exchanged := d%2 == 1

	outK := (2*k - int(d) + 1) / 2
	if outK < 1 {
		outK = 1
	}
	var outM4, outM6 []uint64
	if exchanged {
		outM4, outM6 = shiftOddExchange(m4, m6, k, outK, int(d))
	} else {
		outM4, outM6 = shiftEven(m4, m6, k, outK, int(d))
	}
	outM4, outM6, outK = pairnum.TrimAndMask(outM4, outM6, outK)

	return Result{
		Next:      pairnum.FromPacked(outM4, outM6, outK),
		D:         d,
		Exchanged: exchanged,
	}
}

// trailingFastenerZeros counts the low-order zero bits of the fastener
// view (bit 2i = m6[i], bit 2i+1 = m4[i]) using the per-word shortcut
// from spec §4.5: a word with (m4|m6)==0 contributes 128 fastener
// zeros; otherwise the trailing-zero count of m4|m6 gives the number of
// all-zero pair slots (2 fastener bits each), and the boundary pair
// contributes one more fastener zero exactly when its m6 bit is 0
// (i.e. the pair is (1,0)).
func trailingFastenerZeros(m4, m6 []uint64, k int) uint64 {
	nw := pairnum.WordCount(k)
	var d uint64
	for w := 0; w < nw; w++ {
		combined := m4[w] | m6[w]
		if combined == 0 {
			d += 128
			continue
		}
		tz := bits.TrailingZeros64(combined)
		d += 2 * uint64(tz)
		m6b := (m6[w] >> uint(tz)) & 1
		if m6b == 0 {
			d++
		}
		return d
	}
	// Every word was all-zero: the raw value is 0 (never actually
	// reached by a real xn+1, kept for robustness).
	return uint64(2 * k)
}

// shiftEven implements the d-even case: shifting the fastener view by
// an even amount is a pure pair-index shift with no stream swap.
func shiftEven(m4, m6 []uint64, k, outK, d int) ([]uint64, []uint64) {
	shift := d / 2
	outM4 := make([]uint64, pairnum.WordCount(outK))
	outM6 := make([]uint64, pairnum.WordCount(outK))
	for ow := 0; ow < len(outM4); ow++ {
		base := 64 * ow
		outM4[ow] = pairnum.ExtractWindow(m4, k, base+shift)
		outM6[ow] = pairnum.ExtractWindow(m6, k, base+shift)
	}
	return outM4, outM6
}

// shiftOddExchange implements the d-odd case. Writing d = 2q+1, the new
// m6 stream is the old m4 stream shifted by q, and the new m4 stream is
// the old m6 stream shifted by q+1 — the fastener view alternates
// m6,m4,m6,m4,... so an odd shift lands on the opposite stream, and the
// two output streams are offset from each other by exactly one pair
// position.
func shiftOddExchange(m4, m6 []uint64, k, outK, d int) ([]uint64, []uint64) {
	q := (d - 1) / 2
	outM4 := make([]uint64, pairnum.WordCount(outK))
	outM6 := make([]uint64, pairnum.WordCount(outK))
	for ow := 0; ow < len(outM4); ow++ {
		base := 64 * ow
		outM6[ow] = pairnum.ExtractWindow(m4, k, base+q)
		outM4[ow] = pairnum.ExtractWindow(m6, k, base+q+1)
	}
	return outM4, outM6
}
