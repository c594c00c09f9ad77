package engine

import (
	"math/rand"

	"github.com/meridian-robotics/awareness/internal/sensors"
)

// SensorSource adapts the simulated sensor and its fusion processor to the
// engine's Source interface.
type SensorSource struct {
	sim  *sensors.Simulator
	proc *sensors.Processor
}

// NewSensorSource builds a source backed by the simulated sensor. A nil
// rng gives a time-seeded, non-reproducible stream.
func NewSensorSource(rng *rand.Rand) *SensorSource {
	return &SensorSource{
		sim:  sensors.NewSimulator(rng),
		proc: sensors.NewProcessor(),
	}
}

// Next reads and reduces one sensor observation.
func (s *SensorSource) Next() Observation {
	reading := s.sim.Read()
	processed := s.proc.Process(reading)
	return Observation{
		Features:   processed.Features,
		Confidence: processed.FusedConfidence,
		Timestamp:  reading.Timestamp,
	}
}

var _ Source = (*SensorSource)(nil)
