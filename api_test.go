package collatz

import (
	"math/big"
	"testing"
)

func TestStepPackedAndSequentialAgree(t *testing.T) {
	n := FromBinary(big.NewInt(27))

	packed, err := Step3n1(n, true)
	if err != nil {
		t.Fatalf("Step3n1 failed: %v", err)
	}
	sequential, err := SequentialStep(n, 3, true)
	if err != nil {
		t.Fatalf("SequentialStep failed: %v", err)
	}

	if packed.D != 1 || !packed.Exchanged || packed.Next.ToBinary().Int64() != 41 {
		t.Errorf("Step3n1(27) = %+v, want d=1 exchanged=true next=41", packed)
	}
	if packed.D != sequential.D || packed.Exchanged != sequential.Exchanged || packed.Next.Compare(sequential.Next) != 0 {
		t.Errorf("packed/sequential disagree: %+v vs %+v", packed, sequential)
	}
}

func TestStepRejectsInvalidX(t *testing.T) {
	n := FromBinary(big.NewInt(27))
	if _, err := Step(n, 4, false); err == nil {
		t.Error("Step with x=4 succeeded, want precondition error")
	}
}

func TestStoppingTimeX3N27(t *testing.T) {
	steps, ok, err := StoppingTime(big.NewInt(27), 3, 200, false)
	if err != nil {
		t.Fatalf("StoppingTime failed: %v", err)
	}
	if !ok || steps != 41 {
		t.Errorf("StoppingTime(27,3) = (%d,%t), want (41,true)", steps, ok)
	}
}

func TestTraceTrajectoryReachesOne(t *testing.T) {
	result, err := TraceTrajectory(big.NewInt(27), 3, 200)
	if err != nil {
		t.Fatalf("TraceTrajectory failed: %v", err)
	}
	if !result.ReachedOne || result.TotalSteps != 41 {
		t.Errorf("TraceTrajectory(27,3) = reachedOne=%t steps=%d, want true,41", result.ReachedOne, result.TotalSteps)
	}
}

func TestVerifyRangeSmall(t *testing.T) {
	result, err := VerifyRange(big.NewInt(1), big.NewInt(99), 3, 1000)
	if err != nil {
		t.Fatalf("VerifyRange failed: %v", err)
	}
	if !result.AllConverged {
		t.Errorf("AllConverged = false, failures: %+v", result.Failures)
	}
}
