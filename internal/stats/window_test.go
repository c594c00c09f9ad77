package stats

import (
	"math"
	"testing"
)

func TestNewWindow_RejectsBadCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -100} {
		if _, err := NewWindow(capacity); err == nil {
			t.Errorf("NewWindow(%d) should fail", capacity)
		}
	}
}

func TestWindow_PushAndEvict(t *testing.T) {
	w, err := NewWindow(3)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	w.Push(1)
	w.Push(2)
	w.Push(3)
	if w.Len() != 3 {
		t.Fatalf("expected Len=3, got %d", w.Len())
	}
	if w.Sum() != 6 {
		t.Errorf("expected Sum=6, got %v", w.Sum())
	}

	// Fourth push evicts the oldest value (1).
	w.Push(4)
	if w.Len() != 3 {
		t.Errorf("expected Len=3 after eviction, got %d", w.Len())
	}
	if w.Sum() != 9 {
		t.Errorf("expected Sum=9 after eviction, got %v", w.Sum())
	}

	values := w.Values()
	want := []float64{2, 3, 4}
	for i, v := range want {
		if values[i] != v {
			t.Errorf("Values()[%d] = %v, want %v", i, values[i], v)
		}
	}
}

func TestWindow_RunningStatisticsMatchDirect(t *testing.T) {
	w, err := NewWindow(5)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	samples := []float64{0.1, 0.9, 0.4, 0.7, 0.2, 0.6, 0.3}
	for _, s := range samples {
		w.Push(s)
	}

	// Direct recomputation over the surviving window contents.
	values := w.Values()
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	n := float64(len(values))
	wantMean := sum / n
	wantVar := sumSq/n - wantMean*wantMean

	if math.Abs(w.Mean()-wantMean) > 1e-12 {
		t.Errorf("Mean = %v, want %v", w.Mean(), wantMean)
	}
	if math.Abs(w.Variance()-wantVar) > 1e-12 {
		t.Errorf("Variance = %v, want %v", w.Variance(), wantVar)
	}
	if math.Abs(w.StdDev()-math.Sqrt(wantVar)) > 1e-12 {
		t.Errorf("StdDev = %v, want %v", w.StdDev(), math.Sqrt(wantVar))
	}
}

func TestWindow_VarianceNeverNegative(t *testing.T) {
	w, err := NewWindow(10)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}

	// Constant data can produce a tiny negative variance from cancellation.
	for i := 0; i < 100; i++ {
		w.Push(0.3333333333333333)
	}
	if w.Variance() < 0 {
		t.Errorf("Variance must not be negative, got %v", w.Variance())
	}
}

func TestWindow_Reset(t *testing.T) {
	w, err := NewWindow(4)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	w.Push(1)
	w.Push(2)
	w.Reset()

	if w.Len() != 0 {
		t.Errorf("expected empty window after Reset, got Len=%d", w.Len())
	}
	if w.Sum() != 0 || w.Mean() != 0 || w.Variance() != 0 {
		t.Errorf("expected zeroed statistics after Reset")
	}
	if w.Cap() != 4 {
		t.Errorf("Reset must not change capacity, got %d", w.Cap())
	}
}
