// Package sensors simulates one multi-modal sensor reading per cycle and
// reduces it to the fixed-length feature vector the analytics engine
// consumes. The simulator stands in for real hardware; the engine only
// depends on the reduced feature vector and fused confidence.
package sensors

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
)

// VisualData is a simulated camera summary.
type VisualData struct {
	Objects    int
	Brightness float64
	Motion     float64
}

// LidarData is a simulated point-cloud summary.
type LidarData struct {
	Points    int
	MaxRange  float64
	Obstacles int
}

// AudioData is a simulated microphone summary. EventType is 0 (quiet),
// 1 (normal) or 2 (loud).
type AudioData struct {
	Amplitude float64
	Frequency float64
	EventType int
}

// IMUData is a simulated inertial reading.
type IMUData struct {
	AccelX float64
	AccelY float64
	AccelZ float64
	Gyro   float64
}

// Reading is one raw multi-modal observation.
type Reading struct {
	Visual    VisualData
	Lidar     LidarData
	Audio     AudioData
	IMU       IMUData
	Timestamp float64 // Unix seconds
}

// Simulator generates plausible readings from an injected random source so
// whole runs are reproducible from a seed.
type Simulator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewSimulator creates a simulator. A nil rng falls back to a time-seeded
// source; tests pass a fixed seed instead.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{rng: rng, now: time.Now}
}

// Read produces one reading. Brightness follows a slow sinusoid over wall
// time so the fused confidence drifts instead of staying white-noise flat.
func (s *Simulator) Read() Reading {
	ts := float64(s.now().UnixNano()) / 1e9
	return Reading{
		Visual: VisualData{
			Objects:    2 + s.rng.Intn(9),
			Brightness: 0.5 + 0.3*math.Sin(ts/5.0),
			Motion:     s.rng.Float64(),
		},
		Lidar: LidarData{
			Points:    500 + s.rng.Intn(1001),
			MaxRange:  10 + s.rng.Float64()*90,
			Obstacles: s.rng.Intn(6),
		},
		Audio: AudioData{
			Amplitude: s.rng.Float64(),
			Frequency: 20 + s.rng.Float64()*(20000-20),
			EventType: s.rng.Intn(3),
		},
		IMU: IMUData{
			AccelX: -0.5 + s.rng.Float64(),
			AccelY: -0.5 + s.rng.Float64(),
			AccelZ: 9.8 + (-0.1 + s.rng.Float64()*0.2),
			Gyro:   -0.1 + s.rng.Float64()*0.2,
		},
		Timestamp: ts,
	}
}

// Processed is a reading reduced to the engine's feature space.
type Processed struct {
	Features        []float64
	FusedConfidence float64
}

// Normalisation bounds used when reducing a reading to features.
const (
	maxObjects     = 10.0
	maxLidarPoints = 1500.0
)

// Processor reduces readings to 4-feature vectors and fuses them into one
// confidence scalar with fixed weights. It does not learn.
type Processor struct {
	weights []float64
}

// NewProcessor creates a processor with the standard fusion weights.
func NewProcessor() *Processor {
	return &Processor{weights: []float64{0.3, 0.3, 0.2, 0.2}}
}

// Process extracts the normalised feature vector
// [objects, lidar density, audio amplitude, |accelX|] and the weighted
// fusion of those features. Each feature and the fused confidence land
// in [0,1] for in-range readings.
func (p *Processor) Process(r Reading) Processed {
	features := []float64{
		float64(r.Visual.Objects) / maxObjects,
		float64(r.Lidar.Points) / maxLidarPoints,
		r.Audio.Amplitude,
		math.Abs(r.IMU.AccelX),
	}
	return Processed{
		Features:        features,
		FusedConfidence: floats.Dot(features, p.weights),
	}
}
