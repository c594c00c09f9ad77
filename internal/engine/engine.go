// Package engine drives the per-cycle awareness loop: it pulls one
// observation from the sensor collaborator, scores it, and feeds the three
// analytics sub-engines (proximity graph, anomaly detector, predictor)
// while keeping bounded history and latency telemetry.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/meridian-robotics/awareness/internal/anomaly"
	"github.com/meridian-robotics/awareness/internal/predict"
	"github.com/meridian-robotics/awareness/internal/spatial"
)

// Config holds the construction-time parameters of an engine. All values
// are immutable after New; Reset rebuilds the sub-engines with the same
// configuration.
type Config struct {
	AnomalyWindow      int     // sliding-window capacity of the anomaly detector
	PredictorWindow    int     // sliding-window capacity of the predictor
	ProximityThreshold float64 // connection distance in derived spatial units
	HistorySize        int     // circular cycle-history capacity
	PredictionHorizon  int     // steps ahead forecast on every cycle
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		AnomalyWindow:      20,
		PredictorWindow:    10,
		ProximityThreshold: spatial.DefaultThreshold,
		HistorySize:        100,
		PredictionHorizon:  5,
	}
}

// Validate checks that every parameter is positive. The engine must not be
// constructible in an invalid state, so New rejects a bad config outright
// rather than failing at first use.
func (c Config) Validate() error {
	if c.AnomalyWindow < 1 {
		return fmt.Errorf("engine: AnomalyWindow must be >= 1, got %d", c.AnomalyWindow)
	}
	if c.PredictorWindow < 1 {
		return fmt.Errorf("engine: PredictorWindow must be >= 1, got %d", c.PredictorWindow)
	}
	if c.ProximityThreshold <= 0 {
		return fmt.Errorf("engine: ProximityThreshold must be positive, got %v", c.ProximityThreshold)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("engine: HistorySize must be >= 1, got %d", c.HistorySize)
	}
	if c.PredictionHorizon < 1 {
		return fmt.Errorf("engine: PredictionHorizon must be >= 1, got %d", c.PredictionHorizon)
	}
	return nil
}

// Observation is one cycle's input: the reduced feature vector, the fused
// confidence in [0,1], and the observation timestamp in Unix seconds.
type Observation struct {
	Features   []float64
	Confidence float64
	Timestamp  float64
}

// Source supplies one observation per cycle on request.
type Source interface {
	Next() Observation
}

// Scorer maps a feature vector to an opaque score vector. It does not
// learn and the engine never inspects the vector beyond carrying it.
type Scorer interface {
	Forward(features []float64) []float64
}

// PredictionResult is the forecast attached to a cycle result, with the
// trend rendered as a label. A strictly positive slope is "increasing";
// zero and negative slopes are "decreasing" (the zero case is locked by a
// boundary test).
type PredictionResult struct {
	Values     []float64 `json:"values"`
	Confidence float64   `json:"confidence"`
	Trend      float64   `json:"trend"`
	TrendLabel string    `json:"trend_label"`
}

// TrendLabel renders a raw slope as its textual category.
func TrendLabel(trend float64) string {
	if trend > 0 {
		return "increasing"
	}
	return "decreasing"
}

// CycleRecord is the bounded-history record of one cycle.
type CycleRecord struct {
	Cycle         uint64    `json:"cycle"`
	Features      []float64 `json:"features"`
	ScoreOutput   []float64 `json:"score_output"`
	Confidence    float64   `json:"confidence"`
	LatencyMicros int64     `json:"latency_us"`
}

// CycleResult is returned from RunCycle for the caller's own dispatch or
// reporting; the engine retains only the CycleRecord portion.
type CycleResult struct {
	Cycle           uint64            `json:"cycle"`
	Confidence      float64           `json:"confidence"`
	ScoreOutput     []float64         `json:"score_output"`
	NodeID          int               `json:"node_id"`
	AnomalyDetected bool              `json:"anomaly_detected"`
	Anomaly         *anomaly.Anomaly  `json:"anomaly,omitempty"`
	Prediction      *PredictionResult `json:"prediction,omitempty"`
	LatencyMicros   int64             `json:"latency_us"`
}

// EventHandler receives analytics events synchronously inside RunCycle.
// Implementations must be fast; the cycle does not continue until the
// handler returns. A nil handler disables dispatch.
type EventHandler interface {
	AnomalyDetected(cycle uint64, a anomaly.Anomaly)
	PredictionMade(cycle uint64, p PredictionResult)
}

// Engine sequences one awareness cycle at a time. All state is guarded by
// a single mutex held for the duration of a cycle or a metrics snapshot;
// the sub-engines' invariants span multiple fields, so finer-grained
// locking is deliberately not attempted. An engine with cycle count 0 is
// idle; the first RunCycle makes it active until Reset.
type Engine struct {
	mu sync.Mutex

	cfg    Config
	source Source
	scorer Scorer

	graph     *spatial.Graph
	detector  *anomaly.Detector
	predictor *predict.Predictor

	handler EventHandler

	cycleCount uint64
	history    *historyRing
	// latencies grows without bound by design; long-lived callers should
	// Reset periodically or cap externally.
	latencies []time.Duration
	startTime time.Time

	now func() time.Time
}

// New creates an engine from a validated config and its two collaborators.
func New(cfg Config, source Source, scorer Scorer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("engine: source must not be nil")
	}
	if scorer == nil {
		return nil, fmt.Errorf("engine: scorer must not be nil")
	}

	graph, err := spatial.NewGraph(cfg.ProximityThreshold)
	if err != nil {
		return nil, err
	}
	detector, err := anomaly.NewDetector(cfg.AnomalyWindow)
	if err != nil {
		return nil, err
	}
	predictor, err := predict.NewPredictor(cfg.PredictorWindow)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		source:    source,
		scorer:    scorer,
		graph:     graph,
		detector:  detector,
		predictor: predictor,
		history:   newHistoryRing(cfg.HistorySize),
		startTime: time.Now(),
		now:       time.Now,
	}, nil
}

// SetEventHandler installs (or clears, with nil) the synchronous event
// handler. Safe to call between cycles.
func (e *Engine) SetEventHandler(h EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = h
}

// Config returns the engine's construction-time configuration.
func (e *Engine) Config() Config { return e.cfg }

// RunCycle executes one full awareness cycle: observation, graph insert,
// anomaly check, prediction, latency capture, history append, and handler
// dispatch, strictly in that order.
func (e *Engine) RunCycle() CycleResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runCycleLocked()
}

func (e *Engine) runCycleLocked() CycleResult {
	cycleStart := e.now()
	e.cycleCount++

	obs := e.source.Next()
	scoreOut := e.scorer.Forward(obs.Features)

	nodeID := e.graph.AddNode(obs.Features)

	a := e.detector.Detect(obs.Confidence, obs.Timestamp)

	e.predictor.AddObservation(obs.Confidence)
	var predResult *PredictionResult
	if p := e.predictor.Predict(e.cfg.PredictionHorizon); p != nil {
		predResult = &PredictionResult{
			Values:     p.Values,
			Confidence: p.Confidence,
			Trend:      p.Trend,
			TrendLabel: TrendLabel(p.Trend),
		}
	}

	latency := e.now().Sub(cycleStart)
	e.latencies = append(e.latencies, latency)

	e.history.push(CycleRecord{
		Cycle:         e.cycleCount,
		Features:      obs.Features,
		ScoreOutput:   scoreOut,
		Confidence:    obs.Confidence,
		LatencyMicros: latency.Microseconds(),
	})

	if e.handler != nil {
		if a != nil {
			e.handler.AnomalyDetected(e.cycleCount, *a)
		}
		if predResult != nil {
			e.handler.PredictionMade(e.cycleCount, *predResult)
		}
	}

	return CycleResult{
		Cycle:           e.cycleCount,
		Confidence:      obs.Confidence,
		ScoreOutput:     scoreOut,
		NodeID:          nodeID,
		AnomalyDetected: a != nil,
		Anomaly:         a,
		Prediction:      predResult,
		LatencyMicros:   latency.Microseconds(),
	}
}

// RunCycles runs n cycles sequentially and returns every result in order.
// Sequential execution is part of the contract: the running statistics and
// graph insertion depend on causal ordering.
func (e *Engine) RunCycles(n int) []CycleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	results := make([]CycleResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, e.runCycleLocked())
	}
	return results
}

// Warmup runs n cycles and then fully resets, so warmup never contributes
// to subsequently reported metrics.
func (e *Engine) Warmup(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := 0; i < n; i++ {
		e.runCycleLocked()
	}
	e.resetLocked()
}

// Reset returns the engine to its freshly constructed state: cycle counter
// zeroed, history and latency log cleared, wall clock restarted, and every
// sub-engine rebuilt with its original configuration.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.cycleCount = 0
	e.history.reset()
	e.latencies = nil
	e.startTime = e.now()
	e.graph.Reset()
	e.detector.Reset()
	e.predictor.Reset()
}

// CycleCount returns the number of cycles since construction or last Reset.
func (e *Engine) CycleCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycleCount
}

// History returns a copy of the bounded cycle history, oldest first.
func (e *Engine) History() []CycleRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.snapshot()
}

// Anomalies returns a copy of the cumulative anomaly history.
func (e *Engine) Anomalies() []anomaly.Anomaly {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.Anomalies()
}

// historyRing is a fixed-capacity circular buffer of cycle records; the
// oldest record is overwritten once the ring is full.
type historyRing struct {
	records []CycleRecord
	next    int
	full    bool
}

func newHistoryRing(capacity int) *historyRing {
	return &historyRing{records: make([]CycleRecord, capacity)}
}

func (r *historyRing) push(rec CycleRecord) {
	r.records[r.next] = rec
	r.next++
	if r.next == len(r.records) {
		r.next = 0
		r.full = true
	}
}

func (r *historyRing) len() int {
	if r.full {
		return len(r.records)
	}
	return r.next
}

// snapshot returns the ring contents oldest first.
func (r *historyRing) snapshot() []CycleRecord {
	if !r.full {
		return append([]CycleRecord(nil), r.records[:r.next]...)
	}
	out := make([]CycleRecord, 0, len(r.records))
	out = append(out, r.records[r.next:]...)
	out = append(out, r.records[:r.next]...)
	return out
}

func (r *historyRing) reset() {
	r.next = 0
	r.full = false
}
