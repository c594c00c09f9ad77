package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/meridian-robotics/awareness/internal/anomaly"
)

// RenderDashboard writes a self-contained HTML page with a per-cycle
// latency line, an anomaly severity breakdown, and a confidence trace,
// built from one run's results and anomaly history.
func RenderDashboard(w io.Writer, export RunExport, anomalies []anomaly.Anomaly) error {
	page := components.NewPage()
	page.PageTitle = "Awareness run " + export.RunID

	page.AddCharts(
		latencyChart(export),
		confidenceChart(export),
		graphGrowthChart(export),
		severityChart(anomalies),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("report: render dashboard: %w", err)
	}
	return nil
}

// RenderDashboardFile renders the dashboard to a file.
func RenderDashboardFile(path string, export RunExport, anomalies []anomaly.Anomaly) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	if err := RenderDashboard(f, export, anomalies); err != nil {
		return err
	}
	return f.Close()
}

func latencyChart(export RunExport) components.Charter {
	x := make([]string, 0, len(export.Results))
	y := make([]opts.LineData, 0, len(export.Results))
	for _, r := range export.Results {
		x = append(x, fmt.Sprintf("%d", r.Cycle))
		y = append(y, opts.LineData{Value: r.LatencyMicros})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Cycle latency",
			Subtitle: fmt.Sprintf("p50=%dµs p95=%dµs p99=%dµs max=%dµs",
				export.Metrics.P50ProcessingUs, export.Metrics.P95ProcessingUs,
				export.Metrics.P99ProcessingUs, export.Metrics.MaxProcessingUs),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "µs"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "cycle"}),
	)
	line.SetXAxis(x).AddSeries("latency_us", y)
	return line
}

func confidenceChart(export RunExport) components.Charter {
	x := make([]string, 0, len(export.Results))
	y := make([]opts.LineData, 0, len(export.Results))
	for _, r := range export.Results {
		x = append(x, fmt.Sprintf("%d", r.Cycle))
		y = append(y, opts.LineData{Value: r.Confidence})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Fused confidence"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "confidence", Min: 0, Max: 1}),
		charts.WithXAxisOpts(opts.XAxis{Name: "cycle"}),
	)
	line.SetXAxis(x).AddSeries("confidence", y)
	return line
}

// Node IDs are assigned sequentially, one per cycle, so NodeID+1 is the
// graph size after that cycle.
func graphGrowthChart(export RunExport) components.Charter {
	x := make([]string, 0, len(export.Results))
	y := make([]opts.LineData, 0, len(export.Results))
	for _, r := range export.Results {
		x = append(x, fmt.Sprintf("%d", r.Cycle))
		y = append(y, opts.LineData{Value: r.NodeID + 1})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Proximity graph growth",
			Subtitle: fmt.Sprintf("final: %d nodes, %d edges",
				export.Metrics.SpatialNodes, export.Metrics.SpatialEdges),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "nodes"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "cycle"}),
	)
	line.SetXAxis(x).AddSeries("nodes", y)
	return line
}

func severityChart(anomalies []anomaly.Anomaly) components.Charter {
	counts := map[anomaly.Severity]int{}
	for _, a := range anomalies {
		counts[a.Severity]++
	}

	x := []string{"low", "medium", "high"}
	y := []opts.BarData{
		{Value: counts[anomaly.SeverityLow]},
		{Value: counts[anomaly.SeverityMedium]},
		{Value: counts[anomaly.SeverityHigh]},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Anomalies by severity",
			Subtitle: fmt.Sprintf("total=%d", len(anomalies)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("anomalies", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}
