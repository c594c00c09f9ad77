package engine

import (
	"math/rand"
	"testing"

	"github.com/meridian-robotics/awareness/internal/scorer"
)

func TestSensorSource_ProducesBoundedObservations(t *testing.T) {
	src := NewSensorSource(rand.New(rand.NewSource(11)))

	for i := 0; i < 100; i++ {
		obs := src.Next()
		if len(obs.Features) != 4 {
			t.Fatalf("expected 4 features, got %d", len(obs.Features))
		}
		if obs.Confidence < 0 || obs.Confidence > 1 {
			t.Fatalf("confidence out of [0,1]: %v", obs.Confidence)
		}
		if obs.Timestamp <= 0 {
			t.Fatalf("timestamp not set: %v", obs.Timestamp)
		}
	}
}

func TestEngine_EndToEndWithSimulatedCollaborators(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	net, err := scorer.New(4, 8, 2, rng)
	if err != nil {
		t.Fatalf("scorer.New: %v", err)
	}
	e, err := New(DefaultConfig(), NewSensorSource(rng), net)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results := e.RunCycles(60)
	for i, r := range results {
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Fatalf("results[%d].Confidence out of range: %v", i, r.Confidence)
		}
		if len(r.ScoreOutput) != 2 {
			t.Fatalf("results[%d].ScoreOutput length = %d", i, len(r.ScoreOutput))
		}
		if r.Prediction != nil {
			if r.Prediction.Confidence < 0 || r.Prediction.Confidence > 1 {
				t.Fatalf("results[%d] prediction confidence out of range: %v",
					i, r.Prediction.Confidence)
			}
			for _, v := range r.Prediction.Values {
				if v < 0 || v > 1 {
					t.Fatalf("results[%d] forecast out of range: %v", i, v)
				}
			}
		}
	}

	m := e.Metrics()
	if m.Cycles != 60 || m.SpatialNodes != 60 {
		t.Errorf("metrics mismatch: cycles=%d nodes=%d, want 60/60", m.Cycles, m.SpatialNodes)
	}
	if m.PredictionsMade != 59 {
		t.Errorf("PredictionsMade = %d, want 59", m.PredictionsMade)
	}
}
