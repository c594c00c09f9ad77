// Package anomaly flags statistically extreme observations in a stream of
// confidence values using a sliding-window z-score test.
package anomaly

import (
	"fmt"

	"github.com/meridian-robotics/awareness/internal/stats"
)

// Severity classifies how far outside the window distribution an
// observation fell.
type Severity string

const (
	SeverityLow    Severity = "low"    // 2.0 < z <= 2.5
	SeverityMedium Severity = "medium" // 2.5 < z <= 3.0
	SeverityHigh   Severity = "high"   // z > 3.0
)

// Detection thresholds. ZScoreThreshold is the minimum z-score that counts
// as an anomaly; MinStdDev is the floor below which the window is treated
// as constant and the z-score is defined to be exactly 0, so near-constant
// streams never report anomalies regardless of the incoming value.
const (
	ZScoreThreshold = 2.0
	ZScoreMedium    = 2.5
	ZScoreHigh      = 3.0
	MinStdDev       = 1e-4
	MinSamples      = 3
)

// Anomaly is an immutable record of one flagged observation, including the
// window statistics used to flag it.
type Anomaly struct {
	Timestamp float64  `json:"timestamp"`
	Value     float64  `json:"value"`
	ZScore    float64  `json:"z_score"`
	Severity  Severity `json:"severity"`
	Mean      float64  `json:"mean"`
	StdDev    float64  `json:"stdev"`
}

// Detector maintains a sliding window of recent observations and an
// unbounded history of every anomaly it has flagged. It is not safe for
// concurrent use; callers serialise access (the engine holds its own lock).
type Detector struct {
	window    *stats.Window
	anomalies []Anomaly
}

// NewDetector creates a detector whose statistics are computed over a
// window of at most capacity recent observations.
func NewDetector(capacity int) (*Detector, error) {
	w, err := stats.NewWindow(capacity)
	if err != nil {
		return nil, fmt.Errorf("anomaly: %w", err)
	}
	return &Detector{window: w}, nil
}

// Detect pushes value into the window and returns a non-nil Anomaly when
// the value is statistically extreme relative to the window. It returns nil
// while fewer than MinSamples observations have been seen, when the window
// is effectively constant, or when the z-score is within threshold.
func (d *Detector) Detect(value, timestamp float64) *Anomaly {
	d.window.Push(value)

	if d.window.Len() < MinSamples {
		return nil
	}

	mean := d.window.Mean()
	stdev := d.window.StdDev()

	var z float64
	if stdev > MinStdDev {
		z = (value - mean) / stdev
		if z < 0 {
			z = -z
		}
	}

	if z <= ZScoreThreshold {
		return nil
	}

	severity := SeverityLow
	switch {
	case z > ZScoreHigh:
		severity = SeverityHigh
	case z > ZScoreMedium:
		severity = SeverityMedium
	}

	a := Anomaly{
		Timestamp: timestamp,
		Value:     value,
		ZScore:    z,
		Severity:  severity,
		Mean:      mean,
		StdDev:    stdev,
	}
	d.anomalies = append(d.anomalies, a)
	return &a
}

// Count returns the number of anomalies flagged since the last Reset.
func (d *Detector) Count() int { return len(d.anomalies) }

// Anomalies returns a copy of the anomaly history, oldest first.
func (d *Detector) Anomalies() []Anomaly {
	out := make([]Anomaly, len(d.anomalies))
	copy(out, d.anomalies)
	return out
}

// WindowLen returns the number of observations currently in the window.
func (d *Detector) WindowLen() int { return d.window.Len() }

// Reset clears the window, its running accumulators, and the anomaly
// history together.
func (d *Detector) Reset() {
	d.window.Reset()
	d.anomalies = nil
}
