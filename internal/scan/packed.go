package scan

import (
	"collatz/internal/gpk"
	"collatz/internal/pairnum"
	"collatz/internal/postprocess"
	"collatz/internal/refpattern"
)

// koggeStoneStrides are the six doubling rounds needed to resolve 64
// carry bits (log2(64) = 6).
var koggeStoneStrides = [...]uint{1, 2, 4, 8, 16, 32}

func majority(a, b, c uint64) uint64 {
	return (a & b) | (b & c) | (a & c)
}

// gpkValidMask returns the bits of word w (pair indices [64w, 64w+64))
// that fall within [0, k) — only those positions carry a meaningful
// Generate/Propagate/Kill classification.
func gpkValidMask(w, k int) uint64 {
	base := w * 64
	if base >= k {
		return 0
	}
	if base+64 <= k {
		return ^uint64(0)
	}
	validBits := k - base
	return uint64(1)<<uint(validBits) - 1
}

// Packed computes one step word-parallel: 64 pair positions at a time,
// threaded by a single inter-word carry bit, using a Kogge-Stone
// parallel-prefix resolver for the intra-word carries. It is numerically
// identical to Sequential but is the production path.
func Packed(n pairnum.PairNumber, rp *refpattern.ReferencePattern, collectGpk bool) StepResult {
	k := n.PairCount()
	m4in, m6in := n.M4Words(), n.M6Words()
	maxI := k + rp.ExtraPairs()
	numWords := pairnum.WordCount(maxI + 1)

	rawM4 := make([]uint64, numWords)
	rawM6 := make([]uint64, numWords)

	var rec *gpk.Record
	if collectGpk {
		rec = gpk.NewRecord(k)
	}

	c := uint64(1)
	for w := 0; w < numWords; w++ {
		wordStart := 64 * w
		pR, qR := rp.RefWindowR(m4in, m6in, k, wordStart)
		pL, qL := rp.RefWindowL(m4in, m6in, k, wordStart)

		gMid := pR & qR
		pMid := pR ^ qR
		gOut := pL & qL
		pOut := pL ^ qL

		gPair := gOut | (pOut & gMid)
		pPair := pOut & pMid

		if rec != nil {
			mask := gpkValidMask(w, k)
			rec.SetGenerateWord(w, gPair&mask)
			rec.SetPropagateWord(w, pPair&mask)
		}

		g, p := gPair, pPair
		for _, stride := range koggeStoneStrides {
			gShift := g << stride
			pShift := (p << stride) | (uint64(1)<<stride - 1)
			g = g | (p & gShift)
			p = p & pShift
		}

		var cInBcast uint64
		if c != 0 {
			cInBcast = ^uint64(0)
		}
		carryAfter := g | (p & cInBcast)
		cInPerPair := (carryAfter << 1) | c

		m6word := pMid ^ cInPerPair
		cMidWord := majority(pR, qR, cInPerPair)
		m4word := pOut ^ cMidWord

		rawM4[w] = m4word
		rawM6[w] = m6word

		c = (carryAfter >> 63) & 1
	}

	if rec != nil {
		rec.Finalize()
	}

	pp := postprocess.Finalize(rawM4, rawM6, numWords*64)
	return StepResult{
		Next:         pp.Next,
		D:            pp.D,
		Exchanged:    pp.Exchanged,
		Gpk:          rec,
		RawM4:        rawM4,
		RawM6:        rawM6,
		RawPairCount: numWords * 64,
	}
}
