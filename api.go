// Package collatz is the public surface of the bit-parallel
// generalized-Collatz engine: pair-number arithmetic, single steps on
// both the sequential oracle and the packed production engine,
// trajectory tracing, and parallel range verification.
package collatz

import (
	"context"
	"math/big"

	"collatz/internal/collatzerr"
	"collatz/internal/config"
	"collatz/internal/gpk"
	"collatz/internal/pairnum"
	"collatz/internal/refpattern"
	"collatz/internal/scan"
	"collatz/internal/trajectory"
	"collatz/internal/verify"
)

// PairNumber is the two-stream packed bit representation of a
// nonnegative integer. The zero value is not valid; construct one
// with FromBinary.
type PairNumber = pairnum.PairNumber

// FromBinary builds a PairNumber from an ordinary arbitrary-precision
// integer.
func FromBinary(n *big.Int) PairNumber {
	return pairnum.FromBinary(n)
}

// StepResult is the outcome of a single Collatz-type step.
type StepResult struct {
	Next      PairNumber
	D         uint64
	Exchanged bool
	Gpk       *gpk.Record
}

func fromScanResult(sr scan.StepResult) StepResult {
	return StepResult{Next: sr.Next, D: sr.D, Exchanged: sr.Exchanged, Gpk: sr.Gpk}
}

// Step computes one xn+1 step on the packed production engine. x must
// satisfy x >= 3 and x-1 a power of two; n must be odd (a precondition
// PairNumber values constructed via FromBinary on odd input satisfy
// automatically).
func Step(n PairNumber, x uint64, collectGpk bool) (StepResult, error) {
	rp, err := refpattern.New(x)
	if err != nil {
		return StepResult{}, collatzerr.NewPrecondition("invalid x", err)
	}
	return fromScanResult(scan.Packed(n, rp, collectGpk)), nil
}

// Step3n1 is Step specialized to x=3.
func Step3n1(n PairNumber, collectGpk bool) (StepResult, error) {
	return Step(n, 3, collectGpk)
}

// Step5n1 is Step specialized to x=5.
func Step5n1(n PairNumber, collectGpk bool) (StepResult, error) {
	return Step(n, 5, collectGpk)
}

// PackedStep is an explicit alias for Step, naming the production
// engine it uses.
func PackedStep(n PairNumber, x uint64, collectGpk bool) (StepResult, error) {
	return Step(n, x, collectGpk)
}

// PackedStep3n1 is PackedStep specialized to x=3.
func PackedStep3n1(n PairNumber, collectGpk bool) (StepResult, error) {
	return PackedStep(n, 3, collectGpk)
}

// PackedStep5n1 is PackedStep specialized to x=5.
func PackedStep5n1(n PairNumber, collectGpk bool) (StepResult, error) {
	return PackedStep(n, 5, collectGpk)
}

// SequentialStep computes one xn+1 step one pair at a time: the oracle
// reference path, used by the CLI's single-step display and by tests.
func SequentialStep(n PairNumber, x uint64, collectGpk bool) (StepResult, error) {
	rp, err := refpattern.New(x)
	if err != nil {
		return StepResult{}, collatzerr.NewPrecondition("invalid x", err)
	}
	return fromScanResult(scan.Sequential(n, rp, collectGpk)), nil
}

// StoppingTime reports the number of steps to convergence (or
// stopping-time crossing) starting from n, or ok=false if max_steps
// was reached first.
func StoppingTime(n *big.Int, x uint64, maxSteps uint64, useStoppingTime bool) (steps uint64, ok bool, err error) {
	res, err := trajectory.StoppingTime(n, x, maxSteps, true, useStoppingTime, false)
	if err != nil {
		return 0, false, err
	}
	return res.Steps, res.Reason == trajectory.Converged, nil
}

// StoppingTimeU64Fast is StoppingTime with explicit control over the
// fast-path toggle; it always collects and returns GPK statistics.
func StoppingTimeU64Fast(n *big.Int, x uint64, maxSteps uint64, usePhase1, useStoppingTime bool) (steps uint64, ok bool, stats *gpk.Stats, err error) {
	res, err := trajectory.StoppingTime(n, x, maxSteps, usePhase1, useStoppingTime, true)
	if err != nil {
		return 0, false, nil, err
	}
	return res.Steps, res.Reason == trajectory.Converged, res.GpkStats, nil
}

// TrajectoryResult is the full per-step trace of one trajectory.
type TrajectoryResult = trajectory.Result

// TraceTrajectory traces start to convergence or max_steps, with no
// cancellation and no progress callback.
func TraceTrajectory(start *big.Int, x uint64, maxSteps uint64) (TrajectoryResult, error) {
	return trajectory.Trace(context.Background(), start, trajectory.Options{X: x, MaxSteps: maxSteps, CollectGpk: true})
}

// TraceTrajectoryWithCallback traces start, invoking progress after
// each step.
func TraceTrajectoryWithCallback(start *big.Int, x uint64, maxSteps uint64, progress trajectory.ProgressFunc) (TrajectoryResult, error) {
	return trajectory.Trace(context.Background(), start, trajectory.Options{X: x, MaxSteps: maxSteps, CollectGpk: true, Progress: progress})
}

// TraceTrajectoryCancellable traces start, returning early with a
// partial result if ctx is cancelled before termination.
func TraceTrajectoryCancellable(ctx context.Context, start *big.Int, x uint64, maxSteps uint64, progress trajectory.ProgressFunc) (TrajectoryResult, error) {
	return trajectory.Trace(ctx, start, trajectory.Options{X: x, MaxSteps: maxSteps, CollectGpk: true, Progress: progress})
}

// VerifyResult is the aggregate outcome of verifying a range.
type VerifyResult = verify.Result

// VerifyRange verifies every odd number in [start, end] single-threaded.
func VerifyRange(start, end *big.Int, x uint64, maxSteps uint64) (VerifyResult, error) {
	return verify.Range(context.Background(), start, end, verify.Options{
		X: x, MaxSteps: maxSteps, UsePhase1: true, Workers: 1,
	})
}

// VerifyRangeParallel verifies every odd number in [start, end] across
// a worker pool sized to the logical CPU count.
func VerifyRangeParallel(start, end *big.Int, x uint64, maxSteps uint64) (VerifyResult, error) {
	return verify.Range(context.Background(), start, end, verify.Options{
		X: x, MaxSteps: maxSteps, UsePhase1: true, Workers: config.DefaultWorkers(),
	})
}

// VerifyRangeParallelCancellable is VerifyRangeParallel with
// cancellation and progress reporting.
func VerifyRangeParallelCancellable(ctx context.Context, start, end *big.Int, x uint64, maxSteps uint64, progress verify.ProgressFunc) (VerifyResult, error) {
	return verify.Range(ctx, start, end, verify.Options{
		X: x, MaxSteps: maxSteps, UsePhase1: true, Workers: config.DefaultWorkers(), Progress: progress,
	})
}
