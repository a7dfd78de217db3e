package gpk

import "testing"

func TestFinalizeCounts(t *testing.T) {
	r := NewRecord(5)
	r.SetGenerate(0)
	r.SetPropagate(1)
	r.SetPropagate(2)
	// pair 3 and 4 left Kill
	r.Finalize()

	if r.GCount != 1 {
		t.Errorf("GCount = %d, want 1", r.GCount)
	}
	if r.PCount != 2 {
		t.Errorf("PCount = %d, want 2", r.PCount)
	}
	if r.KCount != 2 {
		t.Errorf("KCount = %d, want 2", r.KCount)
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	r := NewRecord(3)
	r.SetGenerate(0)
	r.Finalize()
	first := r.GCount
	r.Finalize()
	if r.GCount != first {
		t.Errorf("second Finalize changed GCount: %d -> %d", first, r.GCount)
	}
}

func TestMaxCarryChain(t *testing.T) {
	// Generate, Propagate, Propagate, Kill, Generate: chain peaks at 3.
	r := NewRecord(5)
	r.SetGenerate(0)
	r.SetPropagate(1)
	r.SetPropagate(2)
	// pair 3: Kill (neither set)
	r.SetGenerate(4)
	r.Finalize()

	if r.MaxCarryChain != 3 {
		t.Errorf("MaxCarryChain = %d, want 3", r.MaxCarryChain)
	}
}

func TestStatsMergeIsAdditive(t *testing.T) {
	a := &Stats{GCount: 1, PCount: 2, KCount: 3, Steps: 1}
	a.Histogram[5] = 1
	b := &Stats{GCount: 10, PCount: 20, KCount: 30, Steps: 1}
	b.Histogram[5] = 1

	a.Merge(b)

	if a.GCount != 11 || a.PCount != 22 || a.KCount != 33 || a.Steps != 2 {
		t.Errorf("merge produced unexpected totals: %+v", a)
	}
	if a.Histogram[5] != 2 {
		t.Errorf("histogram bin 5 = %d, want 2", a.Histogram[5])
	}
}

func TestAddStepClipsHistogramBin(t *testing.T) {
	r := NewRecord(HistogramBins * 2)
	for i := 0; i < HistogramBins*2; i++ {
		r.SetPropagate(i)
	}
	s := &Stats{}
	s.AddStep(r)
	if s.Histogram[HistogramBins-1] != 1 {
		t.Errorf("overflow chain not clipped into last bin: %+v", s.Histogram)
	}
}
