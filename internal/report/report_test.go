package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/meridian-robotics/awareness/internal/anomaly"
	"github.com/meridian-robotics/awareness/internal/engine"
)

func sampleExport() RunExport {
	return RunExport{
		RunID:     "test-run",
		Timestamp: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Config:    engine.DefaultConfig(),
		Metrics: engine.SystemMetrics{
			Cycles:            3,
			ProcessingRateHz:  1200,
			AvgProcessingUs:   42.5,
			MinProcessingUs:   30,
			MaxProcessingUs:   60,
			P50ProcessingUs:   40,
			P95ProcessingUs:   55,
			P99ProcessingUs:   60,
			SpatialNodes:      3,
			SpatialEdges:      2,
			AnomaliesDetected: 1,
			PredictionsMade:   2,
		},
		Results: []engine.CycleResult{
			{Cycle: 1, Confidence: 0.7, NodeID: 0, LatencyMicros: 30},
			{Cycle: 2, Confidence: 0.72, NodeID: 1, LatencyMicros: 40},
			{Cycle: 3, Confidence: 0.95, NodeID: 2, AnomalyDetected: true, LatencyMicros: 60},
		},
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	export := sampleExport()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, export); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded RunExport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(export, decoded); diff != "" {
		t.Errorf("export changed across encode/decode (-want +got):\n%s", diff)
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := WriteJSONFile(path, sampleExport()); err != nil {
		t.Fatalf("WriteJSONFile: %v", err)
	}
	require.FileExists(t, path)
}

func TestRenderDashboard_EmitsCharts(t *testing.T) {
	anomalies := []anomaly.Anomaly{
		{Timestamp: 1, Value: 0.95, ZScore: 2.3, Severity: anomaly.SeverityLow},
		{Timestamp: 2, Value: 0.99, ZScore: 3.4, Severity: anomaly.SeverityHigh},
	}

	var buf bytes.Buffer
	if err := RenderDashboard(&buf, sampleExport(), anomalies); err != nil {
		t.Fatalf("RenderDashboard: %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		"Awareness run test-run",
		"Cycle latency",
		"Fused confidence",
		"Proximity graph growth",
		"Anomalies by severity",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard HTML missing %q", want)
		}
	}
}

func TestStore_SaveAndListRuns(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	export := sampleExport()
	export.RunID = NewRunID()
	require.NoError(t, store.SaveRun(export))

	second := sampleExport()
	second.RunID = NewRunID()
	second.Timestamp = second.Timestamp.Add(time.Hour)
	second.Results = second.Results[:1]
	require.NoError(t, store.SaveRun(second))

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, second.RunID, runs[0].RunID, "newest run should list first")
	require.Equal(t, int64(3), runs[0].Cycles)

	n, err := store.CycleCount(export.RunID)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	n, err = store.CycleCount(second.RunID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestStore_DuplicateRunIDRejected(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	export := sampleExport()
	require.NoError(t, store.SaveRun(export))
	require.Error(t, store.SaveRun(export), "run_id is the primary key")
}
