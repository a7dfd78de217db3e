// Package scan implements the Sequential Scan (SS, the oracle
// reference implementation) and the Packed Scan (PS, the word-parallel
// Kogge-Stone production path) single-step primitives.
package scan

import (
	"collatz/internal/gpk"
	"collatz/internal/pairnum"
	"collatz/internal/postprocess"
	"collatz/internal/refpattern"
)

// StepResult is the outcome of a single Collatz step: the next odd
// iterate, the exponent d, whether the m4/m6 streams were exchanged,
// the GPK classification record (nil unless requested), and the raw
// (xn+1) snapshot taken before postprocessing.
type StepResult struct {
	Next         pairnum.PairNumber
	D            uint64
	Exchanged    bool
	Gpk          *gpk.Record
	RawM4        []uint64
	RawM6        []uint64
	RawPairCount int
}

// Sequential computes one step one pair at a time: the reference oracle
// used for tests and for the CLI's single-step display.
func Sequential(n pairnum.PairNumber, rp *refpattern.ReferencePattern, collectGpk bool) StepResult {
	k := n.PairCount()
	m4in, m6in := n.M4Words(), n.M6Words()
	maxI := k + rp.ExtraPairs()

	outWords := pairnum.WordCount(maxI + 1)
	rawM4 := make([]uint64, outWords)
	rawM6 := make([]uint64, outWords)

	var rec *gpk.Record
	if collectGpk {
		rec = gpk.NewRecord(k)
	}

	c := uint64(1)
	for i := 0; i <= maxI; i++ {
		pR, qR := rp.RefR(m4in, m6in, k, i)
		pL, qL := rp.RefL(m4in, m6in, k, i)

		if collectGpk && i < k {
			gMid := pR & qR
			pMid := pR ^ qR
			gOut := pL & qL
			pOut := pL ^ qL
			gPair := gOut | (pOut & gMid)
			pPair := pOut & pMid
			if gPair != 0 {
				rec.SetGenerate(i)
			} else if pPair != 0 {
				rec.SetPropagate(i)
			}
		}

		sumR := pR + qR + c
		m6out := sumR & 1
		cMid := sumR >> 1

		sumL := pL + qL + cMid
		m4out := sumL & 1
		c = sumL >> 1

		w, b := i/64, uint(i%64)
		if m4out != 0 {
			rawM4[w] |= 1 << b
		}
		if m6out != 0 {
			rawM6[w] |= 1 << b
		}
	}

	if rec != nil {
		rec.Finalize()
	}

	pp := postprocess.Finalize(rawM4, rawM6, maxI+1)
	return StepResult{
		Next:         pp.Next,
		D:            pp.D,
		Exchanged:    pp.Exchanged,
		Gpk:          rec,
		RawM4:        rawM4,
		RawM6:        rawM6,
		RawPairCount: maxI + 1,
	}
}
