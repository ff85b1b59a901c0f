package monitor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airgrid-data/downscale/internal/grid"
)

func TestPrepareHeatmapData_NoDownsamplingNeeded(t *testing.T) {
	g, err := grid.FromRows([][]float64{
		{0.1, 0.2},
		{0.3, 0.4},
	})
	require.NoError(t, err)

	data := PrepareHeatmapData(g, []float64{-45, 45}, []float64{-90, 90}, 200)
	assert.Equal(t, 1, data.StrideX)
	assert.Equal(t, 1, data.StrideY)
	assert.Len(t, data.Cells, 4)
	assert.Equal(t, []string{"-90.0", "90.0"}, data.XLabels)
	assert.Equal(t, []string{"-45.0", "45.0"}, data.YLabels)
	assert.Equal(t, 0.1, data.MinValue)
	assert.Equal(t, 0.4, data.MaxValue)
}

func TestPrepareHeatmapData_StrideCapsCells(t *testing.T) {
	g, _ := grid.New(100, 200)
	for i := range g.Values {
		g.Values[i] = float64(i)
	}
	lat := grid.Linspace(-90, 90, 100)
	lon := grid.Linspace(-180, 180, 200)

	data := PrepareHeatmapData(g, lat, lon, 50)
	assert.Equal(t, 4, data.StrideX)
	assert.Equal(t, 2, data.StrideY)
	assert.LessOrEqual(t, len(data.XLabels), 50)
	assert.LessOrEqual(t, len(data.YLabels), 50)
	assert.Equal(t, len(data.XLabels)*len(data.YLabels), len(data.Cells))
}

func TestPrepareHeatmapData_SkipsNaN(t *testing.T) {
	g, _ := grid.FromRows([][]float64{
		{1, math.NaN()},
		{math.NaN(), 2},
	})
	data := PrepareHeatmapData(g, []float64{0, 1}, []float64{0, 1}, 10)
	assert.Len(t, data.Cells, 2)
	assert.Equal(t, 1.0, data.MinValue)
	assert.Equal(t, 2.0, data.MaxValue)
}

func TestPrepareHistogramData(t *testing.T) {
	g, _ := grid.FromRows([][]float64{
		{0, 0.5},
		{0.5, 1},
	})
	data := PrepareHistogramData(g, 2)
	require.Len(t, data.Counts, 2)
	assert.Equal(t, 1, data.Counts[0])
	assert.Equal(t, 3, data.Counts[1])
	assert.Equal(t, "0.250", data.Labels[0])
	assert.Equal(t, "0.750", data.Labels[1])
}
