// Package report holds the reporting sinks: JSON export, an HTML chart
// dashboard, and a sqlite run store. Sinks consume engine snapshots as
// plain data; nothing here reaches back into the engine.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/meridian-robotics/awareness/internal/engine"
)

// RunExport is the JSON document written for one run.
type RunExport struct {
	RunID     string                 `json:"run_id"`
	Timestamp time.Time              `json:"timestamp"`
	Config    engine.Config          `json:"config"`
	Metrics   engine.SystemMetrics   `json:"metrics"`
	Results   []engine.CycleResult   `json:"results,omitempty"`
	History   []engine.CycleRecord   `json:"history,omitempty"`
}

// WriteJSON renders the export as indented JSON.
func WriteJSON(w io.Writer, export RunExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("report: encode JSON export: %w", err)
	}
	return nil
}

// WriteJSONFile writes the export to a file, creating or truncating it.
func WriteJSONFile(path string, export RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteJSON(f, export); err != nil {
		return err
	}
	return f.Close()
}
