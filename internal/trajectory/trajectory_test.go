package trajectory

import (
	"context"
	"math/big"
	"testing"
)

func TestTraceInvariantsX3N27(t *testing.T) {
	start := big.NewInt(27)
	result, err := Trace(context.Background(), start, Options{X: 3, MaxSteps: 200, CollectGpk: true})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if !result.ReachedOne {
		t.Fatal("ReachedOne = false, want true")
	}
	if result.TotalSteps != 41 {
		t.Errorf("TotalSteps = %d, want 41", result.TotalSteps)
	}

	var sumD uint64
	for _, s := range result.Steps {
		sumD += s.D
	}
	if sumD != 70 {
		t.Errorf("sum(d) = %d, want 70", sumD)
	}
	if result.TotalSteps+sumD != 111 {
		t.Errorf("total_steps+sum(d) = %d, want 111", result.TotalSteps+sumD)
	}
	if result.MaxValue.BitLen() < 8 {
		t.Errorf("max value bit length = %d, want >= 8 (peak 9232)", result.MaxValue.BitLen())
	}
}

func TestTraceCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := Trace(ctx, big.NewInt(27), Options{X: 3, MaxSteps: 200})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if result.Reason != Cancelled {
		t.Errorf("Reason = %v, want Cancelled", result.Reason)
	}
	if result.ReachedOne {
		t.Error("ReachedOne = true on an already-cancelled context")
	}
}

func TestTraceRejectsInvalidX(t *testing.T) {
	_, err := Trace(context.Background(), big.NewInt(27), Options{X: 4, MaxSteps: 10})
	if err == nil {
		t.Error("Trace with invalid x succeeded, want precondition error")
	}
}

func TestStoppingTimeMatchesTrace(t *testing.T) {
	res, err := StoppingTime(big.NewInt(27), 3, 200, true, false, false)
	if err != nil {
		t.Fatalf("StoppingTime failed: %v", err)
	}
	if res.Reason != Converged {
		t.Errorf("Reason = %v, want Converged", res.Reason)
	}
	if res.Steps != 41 {
		t.Errorf("Steps = %d, want 41", res.Steps)
	}
}

func TestStoppingTimeBudgetExhausted(t *testing.T) {
	// 27 under 5n+1 never reaches 1 (it cycles); a small budget should
	// report exhaustion rather than a false convergence.
	res, err := StoppingTime(big.NewInt(27), 5, 5, true, false, false)
	if err != nil {
		t.Fatalf("StoppingTime failed: %v", err)
	}
	if res.Reason != BudgetExhausted {
		t.Errorf("Reason = %v, want BudgetExhausted", res.Reason)
	}
}
