// Package render produces visualisations of pipeline grids with gonum/plot:
// value heatmaps over lat/lon axes, a diverging difference map, and a
// histogram of the downscaled value distribution. Maps render to PNG, or to
// PDF for document export.
package render

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/airgrid-data/downscale/internal/downscale"
	"github.com/airgrid-data/downscale/internal/grid"
)

// Default canvas size for saved maps.
const (
	mapWidth  = 10 * vg.Inch
	mapHeight = 5 * vg.Inch
)

// HeatmapOptions control a single map render.
type HeatmapOptions struct {
	Title   string
	Palette string  // "heat", "kindlmann", "blackbody" or "diverging"
	VMin    float64 // color range; ignored when VMin == VMax
	VMax    float64
}

// gridXYZ adapts a grid plus coordinate axes to plotter.GridXYZ. Row 0 maps
// to the south edge, so no vertical flip is needed. NaN samples render at
// the bottom of the color range.
type gridXYZ struct {
	g    *grid.Grid
	axes downscale.Axes
	vmin float64
}

func (d gridXYZ) Dims() (c, r int) { return d.g.Cols, d.g.Rows }
func (d gridXYZ) X(c int) float64  { return d.axes.Lon[c] }
func (d gridXYZ) Y(r int) float64  { return d.axes.Lat[r] }

func (d gridXYZ) Z(c, r int) float64 {
	v := d.g.At(r, c)
	if math.IsNaN(v) {
		return d.vmin
	}
	return v
}

// Heatmap renders g as a PNG heatmap and writes it to w.
func Heatmap(w io.Writer, g *grid.Grid, axes downscale.Axes, opts HeatmapOptions) error {
	return heatmap(w, g, axes, opts, "png")
}

// HeatmapPDF renders the same map as Heatmap into a PDF document, used by
// the export path.
func HeatmapPDF(w io.Writer, g *grid.Grid, axes downscale.Axes, opts HeatmapOptions) error {
	return heatmap(w, g, axes, opts, "pdf")
}

func heatmap(w io.Writer, g *grid.Grid, axes downscale.Axes, opts HeatmapOptions, format string) error {
	pal, err := lookupPalette(opts.Palette)
	if err != nil {
		return err
	}

	data := gridXYZ{g: g, axes: axes, vmin: opts.VMin}
	hm := plotter.NewHeatMap(data, pal)
	if opts.VMin != opts.VMax {
		hm.Min = opts.VMin
		hm.Max = opts.VMax
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Add(hm)

	return writePlot(w, p, mapWidth, mapHeight, format)
}

// DiffMap renders the downscaled-minus-baseline difference with a diverging
// palette centred on zero, clipped symmetrically at limit (0.2 in the UI).
func DiffMap(w io.Writer, diff *grid.Grid, axes downscale.Axes, limit float64) error {
	if limit <= 0 {
		limit = 0.2
	}
	return Heatmap(w, diff, axes, HeatmapOptions{
		Title:   "Difference: Downscaled - Upsampled Processed",
		Palette: "diverging",
		VMin:    -limit,
		VMax:    limit,
	})
}

// Histogram renders the distribution of g's finite values into bins bars.
func Histogram(w io.Writer, g *grid.Grid, bins int, title string) error {
	if bins < 1 {
		bins = 50
	}
	vals := make(plotter.Values, 0, len(g.Values))
	for _, v := range g.Values {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return fmt.Errorf("histogram: grid has no finite values")
	}

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Value"
	p.Y.Label.Text = "Count"
	p.Add(h)

	return writePlot(w, p, 8*vg.Inch, 5*vg.Inch, "png")
}

func writePlot(w io.Writer, p *plot.Plot, width, height vg.Length, format string) error {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

func lookupPalette(name string) (palette.Palette, error) {
	const colors = 255
	switch name {
	case "", "heat":
		return palette.Heat(colors, 1), nil
	case "kindlmann":
		cm := moreland.Kindlmann()
		cm.SetMin(0)
		cm.SetMax(1)
		return cm.Palette(colors), nil
	case "blackbody":
		cm := moreland.BlackBody()
		cm.SetMin(0)
		cm.SetMax(1)
		return cm.Palette(colors), nil
	case "diverging":
		cm := moreland.SmoothBlueRed()
		cm.SetMin(0)
		cm.SetMax(1)
		return cm.Palette(colors), nil
	}
	return nil, fmt.Errorf("unknown palette %q (valid: heat, kindlmann, blackbody, diverging)", name)
}

// Palettes lists the palette names accepted by Heatmap.
func Palettes() []string {
	return []string{"heat", "kindlmann", "blackbody", "diverging"}
}
