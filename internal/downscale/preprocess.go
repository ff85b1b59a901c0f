package downscale

import (
	"math"

	"github.com/airgrid-data/downscale/internal/grid"
)

// Preprocess replaces every NaN sample with 0.0 and then applies a separable
// Gaussian blur with standard deviation sigma (in grid-cell units). A sigma
// of zero (or less) skips the blur, so the result is the input with missing
// values filled. The input grid is never modified.
func Preprocess(g *grid.Grid, sigma float64) *grid.Grid {
	filled := g.Clone()
	for i, v := range filled.Values {
		if math.IsNaN(v) {
			filled.Values[i] = 0
		}
	}
	if sigma <= 0 {
		return filled
	}
	return blurSeparable(filled, sigma)
}

// gaussianKernel builds a normalised 1-D Gaussian kernel. The radius follows
// the scipy convention of truncating at four standard deviations, so kernel
// length is 2*int(4*sigma+0.5)+1.
func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// blurSeparable convolves the grid with a 1-D Gaussian along rows and then
// columns, equivalent to a full 2-D Gaussian convolution. Boundary handling
// is nearest-edge: samples beyond the grid take the value of the closest
// edge sample. With a normalised kernel this keeps every output a convex
// combination of inputs, so a constant grid stays constant and the mean is
// approximately preserved away from edges.
func blurSeparable(g *grid.Grid, sigma float64) *grid.Grid {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	clamp := func(i, n int) int {
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}

	// Horizontal pass.
	mid := g.Clone()
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			acc := 0.0
			for k, w := range kernel {
				acc += w * g.At(r, clamp(c+k-radius, g.Cols))
			}
			mid.Set(r, c, acc)
		}
	}

	// Vertical pass.
	out := mid.Clone()
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			acc := 0.0
			for k, w := range kernel {
				acc += w * mid.At(clamp(r+k-radius, g.Rows), c)
			}
			out.Set(r, c, acc)
		}
	}
	return out
}
