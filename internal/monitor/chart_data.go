// Chart data preparation utilities for the debug chart pages. Data
// transformation is separated from eCharts rendering for testability.
package monitor

import (
	"fmt"
	"math"

	"github.com/airgrid-data/downscale/internal/grid"
)

// HeatmapCell is a single cell of a debug heatmap chart.
type HeatmapCell struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value float64 `json:"value"`
}

// HeatmapChartData holds prepared data for rendering a grid heatmap.
type HeatmapChartData struct {
	Cells    []HeatmapCell `json:"cells"`
	XLabels  []string      `json:"x_labels"`
	YLabels  []string      `json:"y_labels"`
	MinValue float64       `json:"min_value"`
	MaxValue float64       `json:"max_value"`
	StrideX  int           `json:"stride_x"`
	StrideY  int           `json:"stride_y"`
}

// PrepareHeatmapData downsamples a grid by stride so the chart stays under
// maxDim cells per axis, labelling axes with the supplied coordinates.
// NaN samples are skipped.
func PrepareHeatmapData(g *grid.Grid, lat, lon []float64, maxDim int) *HeatmapChartData {
	if maxDim < 1 {
		maxDim = 200
	}
	strideX := (g.Cols + maxDim - 1) / maxDim
	strideY := (g.Rows + maxDim - 1) / maxDim
	if strideX < 1 {
		strideX = 1
	}
	if strideY < 1 {
		strideY = 1
	}

	data := &HeatmapChartData{
		StrideX:  strideX,
		StrideY:  strideY,
		MinValue: math.Inf(1),
		MaxValue: math.Inf(-1),
	}

	for c := 0; c < g.Cols; c += strideX {
		data.XLabels = append(data.XLabels, fmt.Sprintf("%.1f", lon[c]))
	}
	for r := 0; r < g.Rows; r += strideY {
		data.YLabels = append(data.YLabels, fmt.Sprintf("%.1f", lat[r]))
	}

	for r, y := 0, 0; r < g.Rows; r, y = r+strideY, y+1 {
		for c, x := 0, 0; c < g.Cols; c, x = c+strideX, x+1 {
			v := g.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			if v < data.MinValue {
				data.MinValue = v
			}
			if v > data.MaxValue {
				data.MaxValue = v
			}
			data.Cells = append(data.Cells, HeatmapCell{X: x, Y: y, Value: v})
		}
	}

	if len(data.Cells) == 0 {
		data.MinValue, data.MaxValue = 0, 1
	}
	return data
}

// HistogramChartData holds prepared data for the value-distribution bar
// chart.
type HistogramChartData struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// PrepareHistogramData bins the grid's values for the histogram chart.
func PrepareHistogramData(g *grid.Grid, bins int) *HistogramChartData {
	data := &HistogramChartData{}
	for _, bin := range grid.Histogram(g, bins) {
		data.Labels = append(data.Labels, fmt.Sprintf("%.3f", (bin.Low+bin.High)/2))
		data.Counts = append(data.Counts, bin.Count)
	}
	return data
}
