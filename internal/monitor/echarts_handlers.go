package monitor

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// viridisColors approximates the matplotlib viridis ramp used by the
// original map display.
var viridisColors = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// handleDebugHeatmap renders a quick heatmap (HTML) of the most recent
// downscaled grid using go-echarts. This is a debugging-only endpoint (no
// auth) to eyeball results without a frontend.
// Query params:
//   - max_dim (optional; default 200) caps cells per axis to bound payload size
func (ws *WebServer) handleDebugHeatmap(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	run := ws.lastRun
	ws.mu.Unlock()
	if run == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no pipeline run available; POST /api/downscale first")
		return
	}

	maxDim := 200
	if md := r.URL.Query().Get("max_dim"); md != "" {
		if v, err := strconv.Atoi(md); err == nil && v >= 10 && v <= 1000 {
			maxDim = v
		}
	}

	result := run.Result
	data := PrepareHeatmapData(result.Downscaled, result.DownscaledAxes.Lat, result.DownscaledAxes.Lon, maxDim)

	cells := make([]opts.HeatMapData, 0, len(data.Cells))
	for _, c := range data.Cells {
		cells = append(cells, opts.HeatMapData{Value: [3]interface{}{c.X, c.Y, c.Value}})
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "NO2 Downscaled Grid", Theme: "dark", Width: "1000px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Downscaled NO2 Field",
			Subtitle: fmt.Sprintf("run=%s shape=%dx%d stride=%dx%d", run.ID, result.Downscaled.Rows, result.Downscaled.Cols, data.StrideY, data.StrideX),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: data.XLabels, Name: "Longitude"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: data.YLabels, Name: "Latitude"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(data.MinValue),
			Max:        float32(data.MaxValue),
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	hm.AddSeries("no2", cells)

	ws.renderChart(w, hm)
}

// handleDebugHistogram renders the value distribution of the most recent
// downscaled grid as a bar chart (HTML).
func (ws *WebServer) handleDebugHistogram(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	run := ws.lastRun
	cfg := ws.cfg
	ws.mu.Unlock()
	if run == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no pipeline run available; POST /api/downscale first")
		return
	}

	data := PrepareHistogramData(run.Result.Downscaled, cfg.GetHistogramBins())
	bars := make([]opts.BarData, 0, len(data.Counts))
	for _, count := range data.Counts {
		bars = append(bars, opts.BarData{Value: count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "NO2 Value Distribution", Theme: "dark", Width: "1000px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Histogram of Downscaled NO2 Values",
			Subtitle: fmt.Sprintf("run=%s bins=%d", run.ID, len(data.Counts)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	bar.SetXAxis(data.Labels).AddSeries("count", bars)

	ws.renderChart(w, bar)
}

// renderChart writes any go-echarts chart as a standalone HTML page.
func (ws *WebServer) renderChart(w http.ResponseWriter, chart interface{ Render(io.Writer) error }) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
