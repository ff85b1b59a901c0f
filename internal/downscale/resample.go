package downscale

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"github.com/airgrid-data/downscale/internal/grid"
	"github.com/airgrid-data/downscale/internal/monitoring"
)

// ErrInvalidShape marks inputs rejected before any computation: a nil or
// empty grid, or a magnification factor below 2. These are hard errors, not
// candidates for the fallback path.
var ErrInvalidShape = errors.New("invalid resample input")

// smoothSigma is the fixed extra blur applied by MethodGaussianSmooth before
// nearest-neighbour expansion, independent of the preprocessor's sigma.
const smoothSigma = 1.0

// Result carries the resampler output. On success Grid has factor-times the
// input resolution. When an internal numeric routine failed, Grid is the
// unmodified input at its original resolution, Fallback is true, and Reason
// describes the failure. Callers must check Fallback rather than trusting the
// output resolution.
type Result struct {
	Grid     *grid.Grid
	Fallback bool
	Reason   string
}

// Resample expands g to (rows*factor) x (cols*factor) using the selected
// method. Output cell (i, j) maps to continuous input coordinate
// (i/factor, j/factor), clamped at the top edges.
//
// Numeric failures inside a method (singular regression fit, spline fit
// refusal, panics out of the matrix kernels) never escape: the error is
// logged and the original grid is returned with the Fallback flag set.
func Resample(g *grid.Grid, factor int, method Method) (res *Result, err error) {
	if g == nil || g.Rows < 1 || g.Cols < 1 {
		return nil, fmt.Errorf("%w: grid must have at least one row and column", ErrInvalidShape)
	}
	if factor < 2 {
		return nil, fmt.Errorf("%w: factor must be at least 2, got %d", ErrInvalidShape, factor)
	}

	defer func() {
		if r := recover(); r != nil {
			res = fallback(g, method, fmt.Errorf("panic in %s: %v", method, r))
			err = nil
		}
	}()

	var out *grid.Grid
	var numErr error
	switch method {
	case MethodGaussianSmooth:
		out = nearestExpand(blurSeparable(g, smoothSigma), factor)
	case MethodBilinear:
		out, numErr = interpolateExpand(g, factor, func() interp.FittablePredictor {
			return &interp.PiecewiseLinear{}
		})
	case MethodCubicSpline:
		out, numErr = interpolateExpand(g, factor, func() interp.FittablePredictor {
			return &interp.NaturalCubic{}
		})
	case MethodRegressionPlane:
		out, numErr = regressionPlane(g, factor)
	default:
		return nil, fmt.Errorf("%w: unknown method %v", ErrInvalidShape, method)
	}

	if numErr != nil {
		return fallback(g, method, numErr), nil
	}
	return &Result{Grid: out}, nil
}

func fallback(g *grid.Grid, method Method, cause error) *Result {
	monitoring.Logf("resample %s failed, returning original grid: %v", method, cause)
	return &Result{Grid: g.Clone(), Fallback: true, Reason: cause.Error()}
}

// nearestExpand replicates each input cell into a factor x factor block,
// copying the nearest input sample for every output cell. No new values are
// synthesised.
func nearestExpand(g *grid.Grid, factor int) *grid.Grid {
	out := mustNew(g.Rows*factor, g.Cols*factor)
	for i := 0; i < out.Rows; i++ {
		si := nearestIndex(i, factor, g.Rows)
		for j := 0; j < out.Cols; j++ {
			out.Set(i, j, g.At(si, nearestIndex(j, factor, g.Cols)))
		}
	}
	return out
}

// nearestIndex rounds the continuous input coordinate i/factor to the closest
// input index, clamped to the axis extent.
func nearestIndex(i, factor, n int) int {
	idx := int(math.Round(float64(i) / float64(factor)))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// interpolateExpand performs separable interpolation: every row is expanded
// to cols*factor samples, then every column of the intermediate grid is
// expanded to rows*factor. newPredictor supplies a fresh 1-D interpolator per
// sequence (linear for bilinear, natural cubic for cubic spline).
func interpolateExpand(g *grid.Grid, factor int, newPredictor func() interp.FittablePredictor) (*grid.Grid, error) {
	// Horizontal pass.
	mid := mustNew(g.Rows, g.Cols*factor)
	row := make([]float64, g.Cols)
	for r := 0; r < g.Rows; r++ {
		copy(row, g.Values[r*g.Cols:(r+1)*g.Cols])
		expanded, err := interpolateAxis(row, factor, newPredictor)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		copy(mid.Values[r*mid.Cols:(r+1)*mid.Cols], expanded)
	}

	// Vertical pass.
	out := mustNew(g.Rows*factor, g.Cols*factor)
	col := make([]float64, g.Rows)
	for c := 0; c < out.Cols; c++ {
		for r := 0; r < g.Rows; r++ {
			col[r] = mid.At(r, c)
		}
		expanded, err := interpolateAxis(col, factor, newPredictor)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", c, err)
		}
		for r := 0; r < out.Rows; r++ {
			out.Set(r, c, expanded[r])
		}
	}
	return out, nil
}

// interpolateAxis expands one sequence to len(seq)*factor samples, evaluating
// the fitted 1-D interpolant at i/factor. Coordinates past the last input
// sample clamp to it (nearest-edge, consistent with the blur boundary). A
// single-sample sequence replicates, as every interpolant degenerates to a
// constant there.
func interpolateAxis(seq []float64, factor int, newPredictor func() interp.FittablePredictor) ([]float64, error) {
	n := len(seq)
	out := make([]float64, n*factor)
	if n == 1 {
		for i := range out {
			out[i] = seq[0]
		}
		return out, nil
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	p := newPredictor()
	if err := p.Fit(xs, seq); err != nil {
		return nil, fmt.Errorf("interpolant fit: %w", err)
	}

	limit := float64(n - 1)
	for i := range out {
		x := float64(i) / float64(factor)
		if x > limit {
			x = limit
		}
		out[i] = p.Predict(x)
	}
	return out, nil
}

// regressionPlane fits v ~ a*x + b*y + c by ordinary least squares, with x
// and y normalised to [0,1] across the column and row extents, then evaluates
// the plane on the factor-times-denser [0,1] lattice. Only the linear basis
// is used: the output is a global trend surface that intentionally flattens
// all non-planar detail.
func regressionPlane(g *grid.Grid, factor int) (*grid.Grid, error) {
	xs := grid.Linspace(0, 1, g.Cols)
	ys := grid.Linspace(0, 1, g.Rows)

	n := g.Rows * g.Cols
	design := mat.NewDense(n, 3, nil)
	obs := mat.NewVecDense(n, nil)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			k := g.Idx(r, c)
			design.Set(k, 0, xs[c])
			design.Set(k, 1, ys[r])
			design.Set(k, 2, 1)
			obs.SetVec(k, g.At(r, c))
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(design, obs); err != nil {
		return nil, fmt.Errorf("least-squares plane fit: %w", err)
	}
	a, b, c := beta.AtVec(0), beta.AtVec(1), beta.AtVec(2)

	newXs := grid.Linspace(0, 1, g.Cols*factor)
	newYs := grid.Linspace(0, 1, g.Rows*factor)
	out := mustNew(g.Rows*factor, g.Cols*factor)
	for r := 0; r < out.Rows; r++ {
		base := b*newYs[r] + c
		for col := 0; col < out.Cols; col++ {
			out.Set(r, col, a*newXs[col]+base)
		}
	}
	return out, nil
}

// mustNew wraps grid.New for dimensions already validated by the caller.
func mustNew(rows, cols int) *grid.Grid {
	g, err := grid.New(rows, cols)
	if err != nil {
		panic(err)
	}
	return g
}
