package downscale

import (
	"math"
	"math/rand"
	"testing"

	"github.com/airgrid-data/downscale/internal/grid"
)

func TestPreprocess_FillsNaNWithoutBlur(t *testing.T) {
	g, _ := grid.FromRows([][]float64{
		{1, math.NaN()},
		{math.NaN(), 4},
	})
	out := Preprocess(g, 0)
	if out.At(0, 1) != 0 || out.At(1, 0) != 0 {
		t.Fatalf("NaN samples not filled with 0: %v", out.Values)
	}
	if out.At(0, 0) != 1 || out.At(1, 1) != 4 {
		t.Fatalf("finite samples changed under sigma=0: %v", out.Values)
	}
	if !math.IsNaN(g.At(0, 1)) {
		t.Fatal("input grid was modified")
	}
}

func TestPreprocess_ConstantGridIsFixedPoint(t *testing.T) {
	g, _ := grid.New(10, 10)
	for i := range g.Values {
		g.Values[i] = 0.42
	}
	out := Preprocess(g, 2.0)
	for i, v := range out.Values {
		if math.Abs(v-0.42) > 1e-12 {
			t.Fatalf("blurred constant drifted at %d: %v", i, v)
		}
	}
}

func TestPreprocess_BlurReducesVarianceKeepsMean(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g, _ := grid.New(40, 40)
	for i := range g.Values {
		g.Values[i] = rng.Float64()
	}

	out := Preprocess(g, 1.5)
	if out.Rows != g.Rows || out.Cols != g.Cols {
		t.Fatalf("blur changed shape: %dx%d", out.Rows, out.Cols)
	}

	before := grid.Summarise(g)
	after := grid.Summarise(out)
	if after.StdDev >= before.StdDev {
		t.Fatalf("blur did not reduce spread: %v -> %v", before.StdDev, after.StdDev)
	}
	if math.Abs(after.Mean-before.Mean) > 0.05 {
		t.Fatalf("blur shifted the mean too far: %v -> %v", before.Mean, after.Mean)
	}
}

func TestGaussianKernel_NormalisedAndScipySized(t *testing.T) {
	for _, sigma := range []float64{0.5, 1, 2, 3.5} {
		k := gaussianKernel(sigma)
		wantRadius := int(4*sigma + 0.5)
		if wantRadius < 1 {
			wantRadius = 1
		}
		if len(k) != 2*wantRadius+1 {
			t.Errorf("sigma=%v: kernel length %d, want %d", sigma, len(k), 2*wantRadius+1)
		}
		sum := 0.0
		for _, w := range k {
			sum += w
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("sigma=%v: kernel sum %v, want 1", sigma, sum)
		}
		if k[0] != k[len(k)-1] {
			t.Errorf("sigma=%v: kernel not symmetric", sigma)
		}
	}
}

func TestBlurSeparable_EdgeClampStaysInRange(t *testing.T) {
	// With nearest-edge boundary and a normalised kernel every output is a
	// convex combination of inputs, so the value range cannot grow.
	g, _ := grid.FromRows([][]float64{
		{0, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
	})
	out := blurSeparable(g, 1)
	for i, v := range out.Values {
		if v < 0 || v > 1 {
			t.Fatalf("blur produced out-of-range value %v at %d", v, i)
		}
	}
}
