package engine

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// SystemMetrics is a derived snapshot recomputed on demand from current
// engine state; it is never stored.
type SystemMetrics struct {
	RuntimeSeconds   float64 `json:"runtime_seconds"`
	Cycles           uint64  `json:"cycles"`
	ProcessingRateHz float64 `json:"processing_rate_hz"`

	AvgProcessingUs  float64 `json:"avg_processing_us"`
	MinProcessingUs  int64   `json:"min_processing_us"`
	MaxProcessingUs  int64   `json:"max_processing_us"`
	P50ProcessingUs  int64   `json:"p50_processing_us"`
	P95ProcessingUs  int64   `json:"p95_processing_us"`
	P99ProcessingUs  int64   `json:"p99_processing_us"`
	TheoreticalMaxHz float64 `json:"theoretical_max_hz"`

	SpatialNodes  int     `json:"spatial_nodes"`
	SpatialEdges  int     `json:"spatial_edges"`
	AverageDegree float64 `json:"average_degree"`

	AnomaliesDetected int `json:"anomalies_detected"`
	PredictionsMade   int `json:"predictions_made"`
	HistoryLen        int `json:"history_len"`

	// MemoryEstimateBytes is a heuristic footprint sum, advisory only.
	// It is a relative indicator, not an accounting of real allocations.
	MemoryEstimateBytes int64 `json:"memory_estimate_bytes"`
}

// Rough per-entity footprints for the advisory memory estimate.
const (
	nodeFootprintBytes    = 3*8 + 4*8 + 48 // position + 4 features + slice/map overhead
	edgeFootprintBytes    = 2 * 16         // both directions of one (id, distance) pair
	recordFootprintBytes  = 8*8 + 64       // cycle record incl. feature/score slices
	latencyFootprintBytes = 8
	anomalyFootprintBytes = 6 * 8
)

// Metrics computes a fresh snapshot. Percentiles use nearest-rank indexing
// into an ascending sorted copy of the latency log — p50 at ⌊n/2⌋, p95 at
// ⌊n·95/100⌋, p99 at ⌊n·99/100⌋ — with no interpolation between ranks.
func (e *Engine) Metrics() SystemMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := SystemMetrics{
		RuntimeSeconds:    e.now().Sub(e.startTime).Seconds(),
		Cycles:            e.cycleCount,
		SpatialNodes:      e.graph.NodeCount(),
		SpatialEdges:      e.graph.EdgeCount(),
		AverageDegree:     e.graph.AverageDegree(),
		AnomaliesDetected: e.detector.Count(),
		PredictionsMade:   e.predictor.Count(),
		HistoryLen:        e.history.len(),
	}

	if m.RuntimeSeconds > 0 {
		m.ProcessingRateHz = float64(e.cycleCount) / m.RuntimeSeconds
	}

	if n := len(e.latencies); n > 0 {
		micros := make([]float64, n)
		for i, d := range e.latencies {
			micros[i] = float64(d.Microseconds())
		}
		sort.Float64s(micros)

		m.MinProcessingUs = int64(micros[0])
		m.MaxProcessingUs = int64(micros[n-1])
		m.AvgProcessingUs = stat.Mean(micros, nil)
		m.P50ProcessingUs = int64(micros[n/2])
		m.P95ProcessingUs = int64(micros[n*95/100])
		m.P99ProcessingUs = int64(micros[n*99/100])

		if m.AvgProcessingUs > 0 {
			m.TheoreticalMaxHz = 1e6 / m.AvgProcessingUs
		}
	}

	m.MemoryEstimateBytes = e.estimateMemoryLocked()
	return m
}

func (e *Engine) estimateMemoryLocked() int64 {
	est := int64(e.graph.NodeCount()) * nodeFootprintBytes
	est += int64(e.graph.EdgeCount()) * edgeFootprintBytes
	est += int64(e.history.len()) * recordFootprintBytes
	est += int64(len(e.latencies)) * latencyFootprintBytes
	est += int64(e.detector.Count()) * anomalyFootprintBytes
	return est
}

// LatencyLogLen reports the current size of the append-only latency log.
// The log grows one entry per cycle until Reset.
func (e *Engine) LatencyLogLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.latencies)
}

// Latencies returns a copy of the latency log in arrival order.
func (e *Engine) Latencies() []time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]time.Duration(nil), e.latencies...)
}
