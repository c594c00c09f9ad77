// Package stats provides a fixed-capacity sliding window over scalar
// observations with O(1) incremental mean and variance.
package stats

import (
	"fmt"
	"math"
)

// Window is a fixed-capacity sliding window of float64 samples. The oldest
// sample is evicted when a push would exceed capacity. A running sum and
// sum-of-squares are maintained alongside the buffer so Mean and Variance
// are O(1); they are kept exactly consistent with the window contents
// (modulo floating-point drift over very long streams).
type Window struct {
	values   []float64
	capacity int

	sum   float64
	sumSq float64
}

// NewWindow creates a sliding window with the given capacity.
func NewWindow(capacity int) (*Window, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("stats: window capacity must be >= 1, got %d", capacity)
	}
	return &Window{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}, nil
}

// Push appends a sample, evicting the oldest one first if the window is full.
func (w *Window) Push(v float64) {
	if len(w.values) >= w.capacity {
		old := w.values[0]
		w.values = w.values[1:]
		w.sum -= old
		w.sumSq -= old * old
	}
	w.values = append(w.values, v)
	w.sum += v
	w.sumSq += v * v
}

// Len returns the number of samples currently held.
func (w *Window) Len() int { return len(w.values) }

// Cap returns the window capacity.
func (w *Window) Cap() int { return w.capacity }

// Sum returns the running sum of the current window contents.
func (w *Window) Sum() float64 { return w.sum }

// Mean returns the mean of the current window contents, or 0 when empty.
func (w *Window) Mean() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return w.sum / float64(len(w.values))
}

// Variance returns the population variance of the current window contents.
// The incremental form sumSq/n - mean² can go slightly negative from
// floating-point cancellation, so it is floored at 0.
func (w *Window) Variance() float64 {
	n := float64(len(w.values))
	if n == 0 {
		return 0
	}
	mean := w.sum / n
	variance := w.sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}

// StdDev returns the population standard deviation of the window contents.
func (w *Window) StdDev() float64 {
	return math.Sqrt(w.Variance())
}

// Values returns a copy of the window contents, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Reset empties the window and zeroes the running accumulators.
func (w *Window) Reset() {
	w.values = w.values[:0]
	w.sum = 0
	w.sumSq = 0
}
