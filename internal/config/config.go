// Package config centralizes the engine's tunable defaults: step and
// pair-count budgets, and the worker pool size the range verifier uses.
package config

import "runtime"

const (
	// DefaultMaxSteps bounds a single trajectory before it is reported
	// as budget-exhausted rather than converged.
	DefaultMaxSteps = 100000

	// DefaultMaxPairCount is MAX_PAIR_COUNT: the safety cap on pair
	// count used to detect divergence on non-convergent maps such as
	// 5n+1.
	DefaultMaxPairCount = 10000

	// ChunkSize is the number of consecutive odd values handed to a
	// single range-verifier worker.
	ChunkSize = 10000
)

// DefaultWorkers returns the default worker-pool size for the range
// verifier: the logical CPU count.
func DefaultWorkers() int {
	return runtime.NumCPU()
}
