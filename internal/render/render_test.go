package render

import (
	"bytes"
	"math"
	"testing"

	"github.com/airgrid-data/downscale/internal/downscale"
	"github.com/airgrid-data/downscale/internal/grid"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func testGridAndAxes(t *testing.T) (*grid.Grid, downscale.Axes) {
	t.Helper()
	g, err := grid.New(4, 6)
	if err != nil {
		t.Fatalf("grid.New failed: %v", err)
	}
	for i := range g.Values {
		g.Values[i] = float64(i) / float64(len(g.Values))
	}
	axes := downscale.Axes{
		Lat: grid.Linspace(-90, 90, 4),
		Lon: grid.Linspace(-180, 180, 6),
	}
	return g, axes
}

func TestHeatmap_WritesPNG(t *testing.T) {
	g, axes := testGridAndAxes(t)
	for _, pal := range append([]string{""}, Palettes()...) {
		var buf bytes.Buffer
		err := Heatmap(&buf, g, axes, HeatmapOptions{Title: "test", Palette: pal})
		if err != nil {
			t.Fatalf("palette %q: %v", pal, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
			t.Fatalf("palette %q: output is not a PNG", pal)
		}
	}
}

func TestHeatmapPDF_WritesPDF(t *testing.T) {
	g, axes := testGridAndAxes(t)
	var buf bytes.Buffer
	if err := HeatmapPDF(&buf, g, axes, HeatmapOptions{Title: "test"}); err != nil {
		t.Fatalf("HeatmapPDF failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestHeatmap_UnknownPalette(t *testing.T) {
	g, axes := testGridAndAxes(t)
	var buf bytes.Buffer
	if err := Heatmap(&buf, g, axes, HeatmapOptions{Palette: "viridis-ultra"}); err == nil {
		t.Fatal("unknown palette should fail")
	}
	if buf.Len() != 0 {
		t.Fatal("failed render must not write partial output")
	}
}

func TestHeatmap_NaNSamples(t *testing.T) {
	g, axes := testGridAndAxes(t)
	g.Set(1, 1, math.NaN())
	var buf bytes.Buffer
	if err := Heatmap(&buf, g, axes, HeatmapOptions{VMin: 0, VMax: 1}); err != nil {
		t.Fatalf("Heatmap with NaN sample failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestDiffMap_WritesPNG(t *testing.T) {
	g, axes := testGridAndAxes(t)
	for i := range g.Values {
		g.Values[i] -= 0.5
	}
	var buf bytes.Buffer
	if err := DiffMap(&buf, g, axes, 0.2); err != nil {
		t.Fatalf("DiffMap failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestHistogram_WritesPNG(t *testing.T) {
	g, _ := testGridAndAxes(t)
	var buf bytes.Buffer
	if err := Histogram(&buf, g, 10, "distribution"); err != nil {
		t.Fatalf("Histogram failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestHistogram_NoFiniteValues(t *testing.T) {
	g, _ := grid.New(2, 2)
	for i := range g.Values {
		g.Values[i] = math.NaN()
	}
	var buf bytes.Buffer
	if err := Histogram(&buf, g, 10, "empty"); err == nil {
		t.Fatal("all-NaN grid should fail")
	}
}

func TestGridXYZ_Orientation(t *testing.T) {
	g, axes := testGridAndAxes(t)
	d := gridXYZ{g: g, axes: axes}

	c, r := d.Dims()
	if c != 6 || r != 4 {
		t.Fatalf("Dims = %d,%d, want 6,4", c, r)
	}
	if d.Y(0) != -90 || d.Y(3) != 90 {
		t.Fatalf("Y endpoints %v..%v, want -90..90", d.Y(0), d.Y(3))
	}
	if d.X(0) != -180 || d.X(5) != 180 {
		t.Fatalf("X endpoints %v..%v, want -180..180", d.X(0), d.X(5))
	}
	if d.Z(2, 1) != g.At(1, 2) {
		t.Fatalf("Z(2,1) = %v, want grid At(1,2) = %v", d.Z(2, 1), g.At(1, 2))
	}
}
