package downscale

import (
	"fmt"

	"github.com/airgrid-data/downscale/internal/grid"
)

// Magnification factor bounds accepted at the pipeline boundary. The
// resampler itself only insists on factor >= 2; the upper bound keeps a
// single request from allocating a grid 100x the input size.
const (
	MinFactor = 2
	MaxFactor = 10
)

// Params bundles the user-facing pipeline controls into one explicit value;
// there is no implicit global state.
type Params struct {
	Sigma  float64 `json:"sigma"`
	Factor int     `json:"factor"`
	Method Method  `json:"-"`
}

// Validate rejects parameter combinations before any computation runs.
func (p Params) Validate() error {
	if p.Sigma < 0 {
		return fmt.Errorf("sigma must be non-negative, got %v", p.Sigma)
	}
	if p.Factor < MinFactor || p.Factor > MaxFactor {
		return fmt.Errorf("factor must be in [%d, %d], got %d", MinFactor, MaxFactor, p.Factor)
	}
	return nil
}

// PipelineResult is everything one pipeline run produces: the three grids the
// UI tabs show, the difference map against a block-upsampled baseline, axes
// for both resolutions, per-grid statistics, and the fallback report.
type PipelineResult struct {
	Original   *grid.Grid
	Processed  *grid.Grid
	Downscaled *grid.Grid

	// Baseline is Processed expanded by plain nearest-neighbour replication;
	// Diff is Downscaled minus Baseline. Both are nil when the resampler fell
	// back, since the degraded output is not at the target resolution.
	Baseline *grid.Grid
	Diff     *grid.Grid

	OriginalAxes   Axes
	DownscaledAxes Axes

	Fallback bool
	Reason   string

	OriginalStats   grid.Stats
	ProcessedStats  grid.Stats
	DownscaledStats grid.Stats
}

// Run executes the full pipeline: preprocess, resample, axis projection and
// statistics. The input grid is not modified. A fallback inside the
// resampler is reported, not returned as an error; invalid shapes or
// parameters abort the run.
func Run(g *grid.Grid, bbox grid.BoundingBox, p Params) (*PipelineResult, error) {
	if g == nil || g.Rows < 1 || g.Cols < 1 {
		return nil, fmt.Errorf("%w: grid must have at least one row and column", ErrInvalidShape)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := bbox.Validate(); err != nil {
		return nil, err
	}

	processed := Preprocess(g, p.Sigma)
	res, err := Resample(processed, p.Factor, p.Method)
	if err != nil {
		return nil, err
	}

	out := &PipelineResult{
		Original:   g.Clone(),
		Processed:  processed,
		Downscaled: res.Grid,
		Fallback:   res.Fallback,
		Reason:     res.Reason,
	}

	oldAxes, newAxes, err := ProjectAxes(bbox, g.Rows, g.Cols, res.Grid.Rows, res.Grid.Cols)
	if err != nil {
		return nil, err
	}
	out.OriginalAxes = oldAxes
	out.DownscaledAxes = newAxes

	if !res.Fallback {
		out.Baseline = nearestExpand(processed, p.Factor)
		diff := res.Grid.Clone()
		for i := range diff.Values {
			diff.Values[i] -= out.Baseline.Values[i]
		}
		out.Diff = diff
	}

	out.OriginalStats = grid.Summarise(out.Original)
	out.ProcessedStats = grid.Summarise(out.Processed)
	out.DownscaledStats = grid.Summarise(out.Downscaled)
	return out, nil
}
