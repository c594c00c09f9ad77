// Command awareness runs the streaming awareness engine against the
// simulated sensor, prints a metrics summary, and optionally exports the
// run as JSON, an HTML dashboard, or rows in a sqlite run store.
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/meridian-robotics/awareness/internal/anomaly"
	"github.com/meridian-robotics/awareness/internal/engine"
	"github.com/meridian-robotics/awareness/internal/report"
	"github.com/meridian-robotics/awareness/internal/scorer"
)

var (
	cycles    = flag.Int("cycles", 1000, "Number of awareness cycles per batch")
	batches   = flag.Int("batches", 1, "Number of batches; interim metrics are logged between batches")
	warmup    = flag.Int("warmup", 0, "Warmup cycles discarded before the measured run")
	history   = flag.Int("history", 100, "Cycle history capacity")
	window    = flag.Int("window", 20, "Anomaly detector window size")
	predictor = flag.Int("predictor", 10, "Predictor window size")
	horizon   = flag.Int("horizon", 5, "Prediction horizon in steps")
	threshold = flag.Float64("threshold", 50.0, "Proximity graph connection threshold")
	seed      = flag.Int64("seed", 0, "Sensor RNG seed (0 seeds from the clock)")
	jsonOut   = flag.String("json", "", "Write the run export as JSON to this file")
	htmlOut   = flag.String("html", "", "Write the HTML dashboard to this file")
	dbOut     = flag.String("db", "", "Append the run to this sqlite store")
	verbose   = flag.Bool("v", false, "Log every anomaly and prediction event")
)

// logHandler streams analytics events to the logger as they fire.
type logHandler struct {
	log *slog.Logger
}

func (h *logHandler) AnomalyDetected(cycle uint64, a anomaly.Anomaly) {
	h.log.Warn("anomaly detected",
		"cycle", cycle,
		"value", a.Value,
		"z_score", a.ZScore,
		"severity", a.Severity)
}

func (h *logHandler) PredictionMade(cycle uint64, p engine.PredictionResult) {
	h.log.Debug("prediction made",
		"cycle", cycle,
		"confidence", p.Confidence,
		"trend", p.TrendLabel)
}

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
	slog.SetDefault(logger)

	cfg := engine.Config{
		AnomalyWindow:      *window,
		PredictorWindow:    *predictor,
		ProximityThreshold: *threshold,
		HistorySize:        *history,
		PredictionHorizon:  *horizon,
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}
	scoreRNG := rand.New(rand.NewSource(time.Now().UnixNano()))
	if *seed != 0 {
		scoreRNG = rand.New(rand.NewSource(*seed + 1))
	}

	net, err := scorer.New(4, 8, 2, scoreRNG)
	if err != nil {
		logger.Error("build scorer", "error", err)
		os.Exit(1)
	}

	e, err := engine.New(cfg, engine.NewSensorSource(rng), net)
	if err != nil {
		logger.Error("build engine", "error", err)
		os.Exit(1)
	}
	if *verbose {
		e.SetEventHandler(&logHandler{log: logger})
	}

	if *warmup > 0 {
		logger.Info("warming up", "cycles", *warmup)
		e.Warmup(*warmup)
	}

	logger.Info("starting run", "batches", *batches, "cycles_per_batch", *cycles, "config", cfg)
	var results []engine.CycleResult
	for b := 1; b <= *batches; b++ {
		results = append(results, e.RunCycles(*cycles)...)
		if *batches > 1 {
			interim := e.Metrics()
			logger.Info("batch complete",
				"batch", b,
				"cycles", interim.Cycles,
				"rate_hz", interim.ProcessingRateHz,
				"anomalies", interim.AnomaliesDetected)
		}
	}
	m := e.Metrics()

	logger.Info("run complete",
		"cycles", m.Cycles,
		"rate_hz", m.ProcessingRateHz,
		"avg_us", m.AvgProcessingUs,
		"p50_us", m.P50ProcessingUs,
		"p95_us", m.P95ProcessingUs,
		"p99_us", m.P99ProcessingUs,
		"max_hz_theoretical", m.TheoreticalMaxHz)
	logger.Info("analytics summary",
		"anomalies", m.AnomaliesDetected,
		"predictions", m.PredictionsMade,
		"spatial_nodes", m.SpatialNodes,
		"spatial_edges", m.SpatialEdges,
		"avg_degree", m.AverageDegree)

	if *jsonOut == "" && *htmlOut == "" && *dbOut == "" {
		return
	}

	export := report.RunExport{
		RunID:     report.NewRunID(),
		Timestamp: time.Now().UTC(),
		Config:    cfg,
		Metrics:   m,
		Results:   results,
		History:   e.History(),
	}

	if *jsonOut != "" {
		if err := report.WriteJSONFile(*jsonOut, export); err != nil {
			logger.Error("write JSON export", "error", err)
			os.Exit(1)
		}
		logger.Info("wrote JSON export", "path", *jsonOut)
	}

	if *htmlOut != "" {
		if err := report.RenderDashboardFile(*htmlOut, export, e.Anomalies()); err != nil {
			logger.Error("write dashboard", "error", err)
			os.Exit(1)
		}
		logger.Info("wrote dashboard", "path", *htmlOut)
	}

	if *dbOut != "" {
		store, err := report.OpenStore(*dbOut)
		if err != nil {
			logger.Error("open run store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.SaveRun(export); err != nil {
			logger.Error("save run", "error", err)
			os.Exit(1)
		}
		logger.Info("saved run", "path", *dbOut, "run_id", export.RunID)
	}
}
