// Package predict produces short-horizon forecasts of a bounded confidence
// score by fitting an ordinary-least-squares line over a sliding window.
package predict

import (
	"fmt"
	"math"
)

// Numerical guards. MinDenominator rejects a degenerate x-variance in the
// OLS closed form (cannot happen for n >= 2 integer-spaced indices, kept as
// a guard); MinTotalVariance short-circuits R² to 0 instead of dividing by
// a near-zero total sum of squares.
const (
	MinDenominator   = 1e-4
	MinTotalVariance = 1e-4
	MinObservations  = 2
)

// Prediction is the result of one forecast: the extrapolated values (one
// per requested step, each clamped to [0,1]), the coefficient of
// determination as confidence, and the raw fitted slope as trend.
type Prediction struct {
	Values     []float64 `json:"values"`
	Confidence float64   `json:"confidence"`
	Trend      float64   `json:"trend"`
}

// Predictor keeps its own sliding window of observations, independent of
// the anomaly detector's. The OLS sums are recomputed from the window
// contents on every Predict call rather than maintained incrementally; the
// window is small and bounded, so the scan is cheap and the code stays
// simple. Not safe for concurrent use.
type Predictor struct {
	window   []float64
	capacity int
	count    int
}

// NewPredictor creates a predictor with the given window capacity.
func NewPredictor(capacity int) (*Predictor, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("predict: window capacity must be >= 1, got %d", capacity)
	}
	return &Predictor{
		window:   make([]float64, 0, capacity),
		capacity: capacity,
	}, nil
}

// AddObservation appends a value to the window, evicting the oldest when full.
func (p *Predictor) AddObservation(value float64) {
	if len(p.window) >= p.capacity {
		p.window = p.window[1:]
	}
	p.window = append(p.window, value)
}

// Predict fits a line over the current window (0-based window position as
// the independent variable) and extrapolates stepsAhead points past the end
// of the window. It returns nil while fewer than MinObservations values are
// held or when the fit is numerically degenerate; both are expected
// conditions, not errors.
func (p *Predictor) Predict(stepsAhead int) *Prediction {
	n := len(p.window)
	if n < MinObservations {
		return nil
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range p.window {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denominator := fn*sumXX - sumX*sumX
	if math.Abs(denominator) < MinDenominator {
		return nil
	}

	slope := (fn*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / fn

	values := make([]float64, 0, stepsAhead)
	for i := 0; i < stepsAhead; i++ {
		x := fn + float64(i)
		values = append(values, clamp01(slope*x+intercept))
	}

	// R² over the window as forecast confidence.
	yMean := sumY / fn
	var ssTot, ssRes float64
	for i, y := range p.window {
		fit := slope*float64(i) + intercept
		ssTot += (y - yMean) * (y - yMean)
		ssRes += (y - fit) * (y - fit)
	}
	confidence := 0.0
	if ssTot > MinTotalVariance {
		confidence = clamp01(1 - ssRes/ssTot)
	}

	p.count++
	return &Prediction{
		Values:     values,
		Confidence: confidence,
		Trend:      slope,
	}
}

// Count returns the number of successful predictions since the last Reset.
func (p *Predictor) Count() int { return p.count }

// WindowLen returns the number of observations currently held.
func (p *Predictor) WindowLen() int { return len(p.window) }

// Reset clears the window and the prediction counter.
func (p *Predictor) Reset() {
	p.window = p.window[:0]
	p.count = 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
