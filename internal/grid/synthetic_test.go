package grid

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSynthetic_ShapeAndBounds(t *testing.T) {
	g, bbox := Synthetic(42)
	if g.Rows != 180 || g.Cols != 360 {
		t.Fatalf("shape = %dx%d, want 180x360", g.Rows, g.Cols)
	}
	if bbox != GlobalBounds {
		t.Fatalf("bbox = %+v, want global bounds", bbox)
	}
	if g.MissingCount() != 0 {
		t.Fatalf("synthetic field should have no missing samples, got %d", g.MissingCount())
	}
}

func TestSynthetic_Deterministic(t *testing.T) {
	a, _ := Synthetic(42)
	b, _ := Synthetic(42)
	if diff := cmp.Diff(a.Values, b.Values); diff != "" {
		t.Fatalf("same seed produced different fields (-a +b):\n%s", diff)
	}
	c, _ := Synthetic(7)
	if cmp.Equal(a.Values, c.Values) {
		t.Fatal("different seeds produced identical fields")
	}
}

func TestSynthetic_HotspotsRaiseLocalMean(t *testing.T) {
	g, _ := Synthetic(42)

	regionMean := func(rowLo, rowHi, colLo, colHi int) float64 {
		sum, n := 0.0, 0
		for i := rowLo; i < rowHi; i++ {
			for j := colLo; j < colHi; j++ {
				sum += g.At(i, j)
				n++
			}
		}
		return sum / float64(n)
	}

	// The hotspot patch adds a 0.5 boost; noise (stddev 0.1) cannot mask
	// that over a 20x20 region compared to the quiet band beside it.
	hot := regionMean(60, 80, 100, 120)
	quiet := regionMean(60, 80, 140, 160)
	if hot-quiet < 0.3 {
		t.Fatalf("hotspot mean %v not clearly above quiet mean %v", hot, quiet)
	}
}

func TestAddNoise_PreservesNaNAndZeroStdDev(t *testing.T) {
	g, _ := New(2, 2)
	g.Set(0, 0, 1)
	g.Set(0, 1, math.NaN())

	noisy := AddNoise(g, 0.5, 1)
	if !math.IsNaN(noisy.At(0, 1)) {
		t.Fatal("NaN sample lost under noise")
	}
	if noisy.At(0, 0) == 1 {
		t.Fatal("noise with stddev 0.5 left the value untouched")
	}

	plain := AddNoise(g, 0, 1)
	if plain.At(0, 0) != 1 {
		t.Fatalf("stddev 0 should copy values, got %v", plain.At(0, 0))
	}
	plain.Set(1, 1, 99)
	if g.At(1, 1) == 99 {
		t.Fatal("AddNoise must not alias the input grid")
	}
}
