package grid

import (
	"math"
	"math/rand"
)

// Synthetic field dimensions: one sample per degree of latitude and longitude.
const (
	syntheticRows = 180
	syntheticCols = 360
)

// hotspot is a rectangular emission patch added onto the synthetic base field.
type hotspot struct {
	rowLo, rowHi int
	colLo, colHi int
	boost        float64
}

var syntheticHotspots = []hotspot{
	{60, 80, 100, 120, 0.5},
	{30, 50, 200, 220, 0.4},
	{20, 40, 70, 90, 0.6},
}

// Synthetic generates the deterministic sample NO2 field used when no raster
// has been uploaded: a zonal sin^2(2*lat)*cos(lon)/2 base pattern, three
// emission hotspots, and seeded Gaussian noise (stddev 0.1). The same seed
// always produces the same field.
func Synthetic(seed int64) (*Grid, BoundingBox) {
	g, _ := New(syntheticRows, syntheticCols)
	bbox := GlobalBounds

	lat := Linspace(bbox.South, bbox.North, syntheticRows)
	lon := Linspace(bbox.West, bbox.East, syntheticCols)

	for i := 0; i < syntheticRows; i++ {
		sinTerm := math.Pow(math.Sin(2*lat[i]*math.Pi/180), 2)
		for j := 0; j < syntheticCols; j++ {
			cosTerm := math.Cos(lon[j]*math.Pi/180) / 2
			g.Set(i, j, sinTerm*cosTerm)
		}
	}

	for _, h := range syntheticHotspots {
		for i := h.rowLo; i < h.rowHi; i++ {
			for j := h.colLo; j < h.colHi; j++ {
				g.Set(i, j, g.At(i, j)+h.boost)
			}
		}
	}

	return AddNoise(g, 0.1, seed), bbox
}

// AddNoise returns a copy of g with seeded Gaussian noise added to every
// sample. NaN samples stay NaN. A stddev of zero returns a plain copy.
func AddNoise(g *Grid, stddev float64, seed int64) *Grid {
	out := g.Clone()
	if stddev == 0 {
		return out
	}
	rng := rand.New(rand.NewSource(seed))
	for i, v := range out.Values {
		if math.IsNaN(v) {
			continue
		}
		out.Values[i] = v + rng.NormFloat64()*stddev
	}
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive. For n == 1
// the single value is lo.
func Linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
