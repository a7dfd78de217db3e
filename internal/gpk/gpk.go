// Package gpk implements the per-pair Generate/Propagate/Kill carry
// classification record produced by a single Collatz step, and the
// aggregate statistics the range verifier accumulates across many
// steps.
package gpk

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// HistogramBins is the fixed width of GpkStats' max-carry-chain
// histogram; chain lengths at or beyond this are clipped into the last
// bin.
const HistogramBins = 128

func maxOf[T constraints.Integer](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func wordCount(n int) int {
	return (n + 63) / 64
}

// Record is the per-step GPK classification: a packed bit mask
// identifying which pair positions were Generate, which Propagate
// (Kill is implicitly neither), scalar totals, and the longest carry
// chain observed in this step.
type Record struct {
	generate []uint64
	propagate []uint64
	pairCount int

	GCount        uint64
	PCount        uint64
	KCount        uint64
	MaxCarryChain uint64

	finalized bool
}

// NewRecord allocates a Record able to classify pairCount pair
// positions (only positions 0..pairCount-1 are ever classified — the
// scan engines process a few pair positions beyond the input width to
// drain trailing carries, but those positions carry no G/P/K meaning).
func NewRecord(pairCount int) *Record {
	if pairCount < 0 {
		pairCount = 0
	}
	return &Record{
		generate:  make([]uint64, wordCount(pairCount)),
		propagate: make([]uint64, wordCount(pairCount)),
		pairCount: pairCount,
	}
}

// PairCount returns the number of pair positions this record classifies.
func (r *Record) PairCount() int {
	return r.pairCount
}

// SetGenerate marks pair position i as Generate.
func (r *Record) SetGenerate(i int) {
	r.generate[i/64] |= 1 << uint(i%64)
}

// SetPropagate marks pair position i as Propagate.
func (r *Record) SetPropagate(i int) {
	r.propagate[i/64] |= 1 << uint(i%64)
}

// SetGenerateWord ORs a full 64-bit Generate mask into word w (used by
// the packed scan, which classifies 64 positions at a time).
func (r *Record) SetGenerateWord(w int, mask uint64) {
	r.generate[w] |= mask
}

// SetPropagateWord ORs a full 64-bit Propagate mask into word w.
func (r *Record) SetPropagateWord(w int, mask uint64) {
	r.propagate[w] |= mask
}

// IsGenerate reports whether pair position i was classified Generate.
func (r *Record) IsGenerate(i int) bool {
	return (r.generate[i/64]>>uint(i%64))&1 != 0
}

// IsPropagate reports whether pair position i was classified Propagate.
func (r *Record) IsPropagate(i int) bool {
	return (r.propagate[i/64]>>uint(i%64))&1 != 0
}

// IsKill reports whether pair position i was classified Kill (neither
// Generate nor Propagate).
func (r *Record) IsKill(i int) bool {
	return !r.IsGenerate(i) && !r.IsPropagate(i)
}

// Finalize computes GCount/PCount/KCount by popcount over the packed
// masks and MaxCarryChain by a single sequential sweep: the chain
// counter increments at every Generate and at every Propagate while the
// logical carry is alive, and resets at every Kill. The sweep starts
// with the carry alive, modeling the incoming "+1" of xn+1 at pair 0.
func (r *Record) Finalize() {
	if r.finalized {
		return
	}
	r.finalized = true

	var g, p uint64
	for _, w := range r.generate {
		g += uint64(bits.OnesCount64(w))
	}
	for _, w := range r.propagate {
		p += uint64(bits.OnesCount64(w))
	}
	r.GCount = g
	r.PCount = p
	r.KCount = uint64(r.pairCount) - g - p

	var chain, maxChain uint64
	carryAlive := true
	for i := 0; i < r.pairCount; i++ {
		switch {
		case r.IsGenerate(i):
			chain++
			carryAlive = true
		case r.IsPropagate(i):
			if carryAlive {
				chain++
			} else {
				chain = 0
			}
		default: // Kill
			chain = 0
			carryAlive = false
		}
		maxChain = maxOf(maxChain, chain)
	}
	r.MaxCarryChain = maxChain
}

// Stats is the aggregate record of GPK totals across many steps: used
// both within a single trajectory and merged across verifier workers.
type Stats struct {
	GCount        uint64
	PCount        uint64
	KCount        uint64
	PairPositions uint64
	Steps         uint64
	Histogram     [HistogramBins]uint64
}

// AddStep folds one step's finalized Record into the running totals.
func (s *Stats) AddStep(r *Record) {
	r.Finalize()
	s.GCount += r.GCount
	s.PCount += r.PCount
	s.KCount += r.KCount
	s.PairPositions += uint64(r.pairCount)
	s.Steps++
	bin := r.MaxCarryChain
	if bin >= HistogramBins {
		bin = HistogramBins - 1
	}
	s.Histogram[bin]++
}

// Merge additively folds other into s. Totals are order-independent and
// exact regardless of which worker produced them first.
func (s *Stats) Merge(other *Stats) {
	s.GCount += other.GCount
	s.PCount += other.PCount
	s.KCount += other.KCount
	s.PairPositions += other.PairPositions
	s.Steps += other.Steps
	for i := range s.Histogram {
		s.Histogram[i] += other.Histogram[i]
	}
}
