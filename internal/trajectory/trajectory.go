// Package trajectory implements the Trajectory Tracer (TR): it drives
// the packed scan across a starting value to convergence or a budget,
// recording each step's packed output, and a lighter StoppingTime path
// that prefers the fast path and only falls back to pair-scan on
// overflow.
package trajectory

import (
	"context"
	"math/big"

	"collatz/internal/collatzerr"
	"collatz/internal/config"
	"collatz/internal/fastpath"
	"collatz/internal/gpk"
	"collatz/internal/pairnum"
	"collatz/internal/refpattern"
	"collatz/internal/scan"
)

// Reason classifies why a trajectory stopped.
type Reason int

const (
	// Converged means the trajectory reached 1. StoppingTime also
	// reports it when the stopping-time predicate is on and the running
	// value fell strictly below the start.
	Converged Reason = iota
	// BudgetExhausted means max_steps was reached.
	BudgetExhausted
	// DivergenceCap means the pair count exceeded config.DefaultMaxPairCount.
	DivergenceCap
	// Cancelled means the caller's context was done before termination.
	Cancelled
)

// StepRecord is one trajectory step's full detail: the pair-number
// result, the exponent d, the exchange flag, and (if requested) its
// GPK classification.
type StepRecord struct {
	Pair      pairnum.PairNumber
	D         uint64
	Exchanged bool
	Gpk       *gpk.Record
}

// Result is the outcome of tracing one trajectory.
type Result struct {
	Start      *big.Int
	Steps      []StepRecord
	GpkStats   *gpk.Stats
	TotalSteps uint64
	MaxValue   *big.Int
	ReachedOne bool
	Reason     Reason
}

// ProgressFunc is invoked after each recorded step with the step
// index, the approximate bit length of the running value, and that
// step's d.
type ProgressFunc func(step int, bitLen int, d uint64)

// Options configures one Trace call.
type Options struct {
	X               uint64
	MaxSteps        uint64
	CollectGpk      bool
	UseSequential   bool // reference mode: drive SS instead of PS
	MaxPairCount    int  // 0 means config.DefaultMaxPairCount
	Progress        ProgressFunc
}

// Trace drives the scan engine on start until convergence, budget
// exhaustion, the pair-count divergence cap, or context cancellation,
// recording every step. Cancellation is checked once per step and, on
// trip, the partial result accumulated so far is returned with no
// error (cancellation is not a failure, per the core's error design).
func Trace(ctx context.Context, start *big.Int, opts Options) (Result, error) {
	rp, err := refpattern.New(opts.X)
	if err != nil {
		return Result{}, collatzerr.NewPrecondition("invalid x for trajectory trace", err)
	}
	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = config.DefaultMaxSteps
	}
	maxPairCount := opts.MaxPairCount
	if maxPairCount == 0 {
		maxPairCount = config.DefaultMaxPairCount
	}

	cur := pairnum.FromBinary(start)
	result := Result{
		Start:    new(big.Int).Set(start),
		MaxValue: new(big.Int).Set(start),
		GpkStats: &gpk.Stats{},
	}

	step := func(n pairnum.PairNumber) scan.StepResult {
		if opts.UseSequential {
			return scan.Sequential(n, rp, opts.CollectGpk)
		}
		return scan.Packed(n, rp, opts.CollectGpk)
	}

	for result.TotalSteps < maxSteps {
		select {
		case <-ctx.Done():
			result.Reason = Cancelled
			return result, nil
		default:
		}

		if cur.IsOne() {
			result.ReachedOne = true
			result.Reason = Converged
			return result, nil
		}
		if cur.PairCount() > maxPairCount {
			result.Reason = DivergenceCap
			return result, nil
		}

		sr := step(cur)
		result.Steps = append(result.Steps, StepRecord{
			Pair:      sr.Next,
			D:         sr.D,
			Exchanged: sr.Exchanged,
			Gpk:       sr.Gpk,
		})
		if sr.Gpk != nil {
			result.GpkStats.AddStep(sr.Gpk)
		}
		result.TotalSteps++
		cur = sr.Next

		if v := cur.ToBinary(); v.Cmp(result.MaxValue) > 0 {
			result.MaxValue = v
		}
		if opts.Progress != nil {
			opts.Progress(len(result.Steps), cur.ToBinary().BitLen(), sr.D)
		}
	}

	result.Reason = BudgetExhausted
	return result, nil
}

// StoppingTimeResult is the outcome of the lightweight stopping-time
// computation.
type StoppingTimeResult struct {
	Steps    uint64
	Reason   Reason
	GpkStats *gpk.Stats
}

// StoppingTime answers "how many steps until convergence (or
// stopping-time crossing)" without recording per-step streams,
// preferring the fixed-width fast path and escalating to the packed
// scan only on overflow, matching the stopping_time/
// stopping_time_u64_fast surface in the core's external interface.
func StoppingTime(start *big.Int, x uint64, maxSteps uint64, usePhase1, useStoppingTime, collectGpk bool) (StoppingTimeResult, error) {
	rp, err := refpattern.New(x)
	if err != nil {
		return StoppingTimeResult{}, collatzerr.NewPrecondition("invalid x for stopping time", err)
	}
	if maxSteps == 0 {
		maxSteps = config.DefaultMaxSteps
	}

	stats := &gpk.Stats{}
	var totalSteps uint64
	startVal := new(big.Int).Set(start)

	if start.IsUint64() {
		fpRes := fastpath.Iterate(start.Uint64(), fastpath.Options{
			X:               x,
			MaxSteps:        maxSteps,
			UsePhase1:       usePhase1,
			UseStoppingTime: useStoppingTime,
			CollectGpk:      collectGpk,
		})
		if fpRes.GpkStats != nil {
			stats.Merge(fpRes.GpkStats)
		}
		totalSteps = fpRes.Steps
		switch fpRes.Outcome {
		case fastpath.Converged:
			return StoppingTimeResult{Steps: totalSteps, Reason: Converged, GpkStats: stats}, nil
		case fastpath.StoppingTimeReached:
			return StoppingTimeResult{Steps: totalSteps, Reason: Converged, GpkStats: stats}, nil
		case fastpath.BudgetExhausted:
			return StoppingTimeResult{Steps: totalSteps, Reason: BudgetExhausted, GpkStats: stats}, nil
		case fastpath.Overflow:
			cur := fpRes.RawPairNumber
			return continuePacked(cur, rp, startVal, totalSteps, maxSteps, useStoppingTime, collectGpk, stats)
		}
	}

	cur := pairnum.FromBinary(start)
	return continuePacked(cur, rp, startVal, totalSteps, maxSteps, useStoppingTime, collectGpk, stats)
}

// continuePacked resumes a stopping-time computation on the pair-scan
// engine, used both for values too large for the fast path and for
// values the fast path escalated after overflow.
func continuePacked(cur pairnum.PairNumber, rp *refpattern.ReferencePattern, start *big.Int, stepsSoFar, maxSteps uint64, useStoppingTime, collectGpk bool, stats *gpk.Stats) (StoppingTimeResult, error) {
	startPair := pairnum.FromBinary(start)
	for steps := stepsSoFar; steps < maxSteps; steps++ {
		if cur.PairCount() > config.DefaultMaxPairCount {
			return StoppingTimeResult{Steps: steps, Reason: DivergenceCap, GpkStats: stats}, nil
		}
		if cur.IsOne() {
			return StoppingTimeResult{Steps: steps, Reason: Converged, GpkStats: stats}, nil
		}
		if useStoppingTime && cur.Compare(startPair) < 0 {
			return StoppingTimeResult{Steps: steps, Reason: Converged, GpkStats: stats}, nil
		}
		sr := scan.Packed(cur, rp, collectGpk)
		if sr.Gpk != nil {
			stats.AddStep(sr.Gpk)
		}
		cur = sr.Next
	}
	return StoppingTimeResult{Steps: maxSteps, Reason: BudgetExhausted, GpkStats: stats}, nil
}
