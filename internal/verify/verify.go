// Package verify implements the Range Verifier (RV): it partitions a
// large interval of odd inputs into fixed-size chunks, runs the fast
// path across them on a bounded worker pool, and merges per-worker
// extrema and GPK statistics under a mutex, mirroring the teacher's
// WorkerPool fan-out but built on golang.org/x/sync/errgroup instead of
// a hand-rolled pool.
package verify

import (
	"context"
	"math/big"
	"sync"

	"golang.org/x/sync/errgroup"

	"collatz/internal/config"
	"collatz/internal/fastpath"
	"collatz/internal/gpk"
	"collatz/internal/trajectory"
)

// Failure records one starting value that did not converge within budget.
type Failure struct {
	Number *big.Int
	Reason trajectory.Reason
}

// Result is the outcome of verifying a range. When several numbers share
// the maximum stopping time, MaxStoppingTimeNumber may be any of them,
// and which one is reported can differ between parallel runs.
type Result struct {
	TotalChecked          uint64
	AllConverged          bool
	MaxStoppingTime       uint64
	MaxStoppingTimeNumber *big.Int
	Failures              []Failure
	GpkStats              *gpk.Stats
}

// ProgressFunc is invoked roughly every 100 checked numbers with the
// running total.
type ProgressFunc func(checked uint64)

// Options configures one verify run.
type Options struct {
	X               uint64
	MaxSteps        uint64
	CollectGpk      bool
	UsePhase1       bool
	UseStoppingTime bool
	Workers         int
	Progress        ProgressFunc
}

// Range drives the appropriate strategy: a parallel fast-path sweep
// when [start, end] fits in uint64, a single-threaded trajectory-driven
// loop otherwise.
func Range(ctx context.Context, start, end *big.Int, opts Options) (Result, error) {
	normStart := normalizeOdd(start)
	if opts.Workers == 0 {
		opts.Workers = config.DefaultWorkers()
	}
	if normStart.IsUint64() && end.IsUint64() {
		return rangeParallel(ctx, normStart.Uint64(), end.Uint64(), opts)
	}
	return rangeSequential(ctx, normStart, end, opts)
}

func normalizeOdd(start *big.Int) *big.Int {
	n := new(big.Int).Set(start)
	if n.Bit(0) == 0 {
		n.Add(n, big.NewInt(1))
	}
	return n
}

// rangeParallel partitions [start, end] into config.ChunkSize-wide
// chunks of consecutive odd values and dispatches them across an
// errgroup-managed worker pool, each worker iterating its chunk with
// the fast path and accumulating thread-local extrema, failures, and
// GpkStats that are merged into the shared result under mu.
func rangeParallel(ctx context.Context, start, end uint64, opts Options) (Result, error) {
	type chunk struct{ lo, hi uint64 }
	var chunks []chunk
	step := uint64(config.ChunkSize) * 2 // odd values only, stride 2
	for lo := start; lo <= end; {
		hi := lo + step - 2
		if hi > end || hi < lo {
			hi = end
		}
		chunks = append(chunks, chunk{lo, hi})
		if hi == end {
			break
		}
		lo = hi + 2
	}

	result := Result{AllConverged: true, GpkStats: &gpk.Stats{}}
	var mu sync.Mutex
	var sharedChecked uint64
	var checkedSinceReport uint64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for _, c := range chunks {
		c := c
		g.Go(func() error {
			localStats := &gpk.Stats{}
			var localChecked uint64
			var localMaxSteps uint64
			var localMaxNumber *big.Int
			var localFailures []Failure
			localAllConverged := true

			for n := c.lo; n <= c.hi; n += 2 {
				select {
				case <-gctx.Done():
					goto flush
				default:
				}

				fpRes := fastpath.Iterate(n, fastpath.Options{
					X:               opts.X,
					MaxSteps:        opts.MaxSteps,
					UsePhase1:       opts.UsePhase1,
					UseStoppingTime: opts.UseStoppingTime,
					CollectGpk:      opts.CollectGpk,
				})

				steps := fpRes.Steps
				converged := fpRes.Outcome == fastpath.Converged || fpRes.Outcome == fastpath.StoppingTimeReached
				reason := trajectory.BudgetExhausted
				if fpRes.Outcome == fastpath.Overflow {
					nBig := new(big.Int).SetUint64(n)
					stResult, err := trajectory.StoppingTime(nBig, opts.X, opts.MaxSteps, opts.UsePhase1, opts.UseStoppingTime, opts.CollectGpk)
					if err != nil {
						return err
					}
					steps = stResult.Steps
					converged = stResult.Reason == trajectory.Converged
					reason = stResult.Reason
					if stResult.GpkStats != nil {
						localStats.Merge(stResult.GpkStats)
					}
				} else if fpRes.GpkStats != nil {
					localStats.Merge(fpRes.GpkStats)
				}

				localChecked++
				if !converged {
					localAllConverged = false
					localFailures = append(localFailures, Failure{Number: new(big.Int).SetUint64(n), Reason: reason})
				} else if steps > localMaxSteps {
					localMaxSteps = steps
					localMaxNumber = new(big.Int).SetUint64(n)
				}

				if opts.Progress != nil {
					mu.Lock()
					sharedChecked++
					checkedSinceReport++
					if checkedSinceReport >= 100 {
						checkedSinceReport = 0
						opts.Progress(sharedChecked)
					}
					mu.Unlock()
				}
			}

		flush:
			mu.Lock()
			defer mu.Unlock()
			result.TotalChecked += localChecked
			result.GpkStats.Merge(localStats)
			result.Failures = append(result.Failures, localFailures...)
			if !localAllConverged {
				result.AllConverged = false
			}
			if localMaxNumber != nil && localMaxSteps > result.MaxStoppingTime {
				result.MaxStoppingTime = localMaxSteps
				result.MaxStoppingTimeNumber = localMaxNumber
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return result, nil
}

// rangeSequential is the fallback for bounds too large for uint64: a
// single-threaded loop driving the trajectory tracer with early
// cancellation support, per §4.8 step 3.
func rangeSequential(ctx context.Context, start, end *big.Int, opts Options) (Result, error) {
	result := Result{AllConverged: true, GpkStats: &gpk.Stats{}}
	two := big.NewInt(2)

	for n := new(big.Int).Set(start); n.Cmp(end) <= 0; n.Add(n, two) {
		select {
		case <-ctx.Done():
			return result, nil
		default:
		}

		stResult, err := trajectory.StoppingTime(n, opts.X, opts.MaxSteps, opts.UsePhase1, opts.UseStoppingTime, opts.CollectGpk)
		if err != nil {
			return Result{}, err
		}
		result.TotalChecked++
		if stResult.GpkStats != nil {
			result.GpkStats.Merge(stResult.GpkStats)
		}
		if stResult.Reason != trajectory.Converged {
			result.AllConverged = false
			result.Failures = append(result.Failures, Failure{Number: new(big.Int).Set(n), Reason: stResult.Reason})
			continue
		}
		if stResult.Steps > result.MaxStoppingTime {
			result.MaxStoppingTime = stResult.Steps
			result.MaxStoppingTimeNumber = new(big.Int).Set(n)
		}
		if opts.Progress != nil && result.TotalChecked%100 == 0 {
			opts.Progress(result.TotalChecked)
		}
	}
	return result, nil
}
