package engine

import (
	"testing"
	"time"
)

func TestMetrics_FreshEngineIsZero(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), []float64{0.5})

	m := e.Metrics()
	if m.Cycles != 0 {
		t.Errorf("Cycles = %d, want 0", m.Cycles)
	}
	if m.MinProcessingUs != 0 || m.MaxProcessingUs != 0 || m.AvgProcessingUs != 0 {
		t.Errorf("latency stats should be zero on an empty log: %+v", m)
	}
	if m.TheoreticalMaxHz != 0 {
		t.Errorf("TheoreticalMaxHz = %v, want 0 with no samples", m.TheoreticalMaxHz)
	}
	if m.MemoryEstimateBytes < 0 {
		t.Errorf("MemoryEstimateBytes = %d, want >= 0", m.MemoryEstimateBytes)
	}
}

func TestMetrics_PercentileOrderingInvariant(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), []float64{0.3, 0.5, 0.7, 0.4, 0.6})
	e.RunCycles(120)

	m := e.Metrics()
	if m.Cycles != 120 {
		t.Fatalf("Cycles = %d, want 120", m.Cycles)
	}
	if m.MinProcessingUs > m.P50ProcessingUs {
		t.Errorf("min %d > p50 %d", m.MinProcessingUs, m.P50ProcessingUs)
	}
	if m.P50ProcessingUs > m.P95ProcessingUs {
		t.Errorf("p50 %d > p95 %d", m.P50ProcessingUs, m.P95ProcessingUs)
	}
	if m.P95ProcessingUs > m.P99ProcessingUs {
		t.Errorf("p95 %d > p99 %d", m.P95ProcessingUs, m.P99ProcessingUs)
	}
	if m.P99ProcessingUs > m.MaxProcessingUs {
		t.Errorf("p99 %d > max %d", m.P99ProcessingUs, m.MaxProcessingUs)
	}
	if m.AvgProcessingUs < float64(m.MinProcessingUs) || m.AvgProcessingUs > float64(m.MaxProcessingUs) {
		t.Errorf("mean %v outside [min %d, max %d]",
			m.AvgProcessingUs, m.MinProcessingUs, m.MaxProcessingUs)
	}
}

func TestMetrics_NearestRankIndexing(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), []float64{0.5})

	// Bypass cycling and install a known latency log directly.
	e.latencies = nil
	for i := 1; i <= 100; i++ {
		e.latencies = append(e.latencies, time.Duration(i)*time.Microsecond)
	}

	m := e.Metrics()
	// Sorted log is 1..100µs; nearest-rank picks index ⌊n·p⌋ with no
	// interpolation, so p50 -> index 50 -> 51µs, p95 -> 96µs, p99 -> 100µs.
	if m.P50ProcessingUs != 51 {
		t.Errorf("P50 = %d, want 51", m.P50ProcessingUs)
	}
	if m.P95ProcessingUs != 96 {
		t.Errorf("P95 = %d, want 96", m.P95ProcessingUs)
	}
	if m.P99ProcessingUs != 100 {
		t.Errorf("P99 = %d, want 100", m.P99ProcessingUs)
	}
	if m.MinProcessingUs != 1 || m.MaxProcessingUs != 100 {
		t.Errorf("min/max = %d/%d, want 1/100", m.MinProcessingUs, m.MaxProcessingUs)
	}
	if m.AvgProcessingUs != 50.5 {
		t.Errorf("Avg = %v, want 50.5", m.AvgProcessingUs)
	}
	// Theoretical max rate derives from the mean: 1e6 / 50.5.
	want := 1e6 / 50.5
	if diff := m.TheoreticalMaxHz - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("TheoreticalMaxHz = %v, want %v", m.TheoreticalMaxHz, want)
	}
}

func TestMetrics_SingleLatencySample(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), []float64{0.5})
	e.latencies = []time.Duration{42 * time.Microsecond}

	m := e.Metrics()
	if m.MinProcessingUs != 42 || m.MaxProcessingUs != 42 ||
		m.P50ProcessingUs != 42 || m.P95ProcessingUs != 42 || m.P99ProcessingUs != 42 {
		t.Errorf("all stats should collapse to the single sample: %+v", m)
	}
}

func TestMetrics_CountsTrackSubEngines(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), []float64{0.3, 0.5, 0.7, 0.4, 0.6})
	e.RunCycles(25)

	m := e.Metrics()
	if m.SpatialNodes != 25 {
		t.Errorf("SpatialNodes = %d, want 25", m.SpatialNodes)
	}
	// Every cycle after the first yields a prediction.
	if m.PredictionsMade != 24 {
		t.Errorf("PredictionsMade = %d, want 24", m.PredictionsMade)
	}
	if m.HistoryLen != 25 {
		t.Errorf("HistoryLen = %d, want 25", m.HistoryLen)
	}
}

func TestMetrics_MemoryEstimateMonotone(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), []float64{0.3, 0.5, 0.7})

	prev := e.Metrics().MemoryEstimateBytes
	if prev < 0 {
		t.Fatalf("initial estimate negative: %d", prev)
	}
	for i := 0; i < 10; i++ {
		e.RunCycles(10)
		got := e.Metrics().MemoryEstimateBytes
		if got < prev {
			t.Fatalf("estimate shrank while state grew: %d -> %d", prev, got)
		}
		prev = got
	}
}

func TestMetrics_LatencyLogGrowsUnbounded(t *testing.T) {
	// The latency log has no cap by design; it must track cycles 1:1
	// until Reset.
	e := newTestEngine(t, DefaultConfig(), []float64{0.5})
	e.RunCycles(321)
	if got := e.LatencyLogLen(); got != 321 {
		t.Errorf("latency log = %d entries, want 321", got)
	}

	latencies := e.Latencies()
	if len(latencies) != 321 {
		t.Errorf("Latencies() = %d entries, want 321", len(latencies))
	}
}
