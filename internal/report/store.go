package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists run exports to a sqlite file for offline analysis. This
// is an export sink only: the engine never reads anything back, and engine
// state is not restored across restarts.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) the run database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id              TEXT PRIMARY KEY,
			started_at          TIMESTAMP,
			cycles              BIGINT,
			processing_rate_hz  DOUBLE,
			avg_processing_us   DOUBLE,
			p50_processing_us   BIGINT,
			p95_processing_us   BIGINT,
			p99_processing_us   BIGINT,
			max_processing_us   BIGINT,
			spatial_nodes       BIGINT,
			spatial_edges       BIGINT,
			anomalies_detected  BIGINT,
			predictions_made    BIGINT
		);
		CREATE TABLE IF NOT EXISTS run_cycles (
			run_id       TEXT,
			cycle        BIGINT,
			confidence   DOUBLE,
			node_id      BIGINT,
			anomaly      BOOLEAN,
			latency_us   BIGINT,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("report: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// SaveRun writes one run summary plus its per-cycle rows in a single
// transaction.
func (s *Store) SaveRun(export RunExport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("report: begin transaction: %w", err)
	}
	defer tx.Rollback()

	m := export.Metrics
	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, started_at, cycles, processing_rate_hz, avg_processing_us,
			p50_processing_us, p95_processing_us, p99_processing_us,
			max_processing_us, spatial_nodes, spatial_edges,
			anomalies_detected, predictions_made
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		export.RunID, export.Timestamp, m.Cycles, m.ProcessingRateHz,
		m.AvgProcessingUs, m.P50ProcessingUs, m.P95ProcessingUs,
		m.P99ProcessingUs, m.MaxProcessingUs, m.SpatialNodes, m.SpatialEdges,
		m.AnomaliesDetected, m.PredictionsMade)
	if err != nil {
		return fmt.Errorf("report: insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_cycles (run_id, cycle, confidence, node_id, anomaly, latency_us)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("report: prepare cycle insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range export.Results {
		if _, err := stmt.Exec(export.RunID, r.Cycle, r.Confidence,
			r.NodeID, r.AnomalyDetected, r.LatencyMicros); err != nil {
			return fmt.Errorf("report: insert cycle %d: %w", r.Cycle, err)
		}
	}

	return tx.Commit()
}

// RunSummary is one stored run row.
type RunSummary struct {
	RunID             string
	StartedAt         time.Time
	Cycles            int64
	ProcessingRateHz  float64
	AnomaliesDetected int64
	PredictionsMade   int64
}

// ListRuns returns all stored runs, newest first.
func (s *Store) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(`
		SELECT run_id, started_at, cycles, processing_rate_hz,
		       anomalies_detected, predictions_made
		FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("report: query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Cycles,
			&r.ProcessingRateHz, &r.AnomaliesDetected, &r.PredictionsMade); err != nil {
			return nil, fmt.Errorf("report: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CycleCount returns the number of stored cycle rows for a run.
func (s *Store) CycleCount(runID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM run_cycles WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("report: count cycles: %w", err)
	}
	return n, nil
}
