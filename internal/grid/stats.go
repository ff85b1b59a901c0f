package grid

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarises a grid for display and export. Mean and StdDev skip NaN
// samples so the summary is meaningful both before and after preprocessing.
type Stats struct {
	Rows    int     `json:"rows"`
	Cols    int     `json:"cols"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Missing int     `json:"missing"`
}

// Summarise computes NaN-aware summary statistics for a grid.
func Summarise(g *Grid) Stats {
	s := Stats{
		Rows: g.Rows,
		Cols: g.Cols,
		Min:  math.Inf(1),
		Max:  math.Inf(-1),
	}

	finite := make([]float64, 0, len(g.Values))
	for _, v := range g.Values {
		if math.IsNaN(v) {
			s.Missing++
			continue
		}
		finite = append(finite, v)
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}

	if len(finite) == 0 {
		s.Min, s.Max = math.NaN(), math.NaN()
		s.Mean, s.StdDev = math.NaN(), math.NaN()
		return s
	}

	s.Mean = stat.Mean(finite, nil)
	if len(finite) > 1 {
		s.StdDev = stat.StdDev(finite, nil)
	}
	return s
}

// HistogramBin is a single bar of a value-distribution histogram.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram bins the grid's finite values into n equal-width bins spanning
// [min, max]. A constant grid yields a single fully-populated bin at index 0.
func Histogram(g *Grid, n int) []HistogramBin {
	if n < 1 {
		n = 1
	}
	s := Summarise(g)
	if math.IsNaN(s.Min) {
		return nil
	}

	bins := make([]HistogramBin, n)
	width := (s.Max - s.Min) / float64(n)
	for i := range bins {
		bins[i].Low = s.Min + float64(i)*width
		bins[i].High = s.Min + float64(i+1)*width
	}

	for _, v := range g.Values {
		if math.IsNaN(v) {
			continue
		}
		idx := 0
		if width > 0 {
			idx = int((v - s.Min) / width)
			if idx >= n {
				idx = n - 1 // max value lands in the top bin
			}
		}
		bins[idx].Count++
	}
	return bins
}
