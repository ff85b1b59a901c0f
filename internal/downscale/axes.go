package downscale

import (
	"github.com/airgrid-data/downscale/internal/grid"
)

// Axes holds evenly spaced coordinate vectors for one grid shape: Lat has
// one entry per row spanning [south, north], Lon one per column spanning
// [west, east].
type Axes struct {
	Lat []float64 `json:"lat"`
	Lon []float64 `json:"lon"`
}

// ProjectAxes derives coordinate axes for the original and resampled grid
// shapes from one bounding box. Pure; the only failure is a degenerate box.
func ProjectAxes(bbox grid.BoundingBox, oldRows, oldCols, newRows, newCols int) (old, resampled Axes, err error) {
	if err := bbox.Validate(); err != nil {
		return Axes{}, Axes{}, err
	}
	old = Axes{
		Lat: grid.Linspace(bbox.South, bbox.North, oldRows),
		Lon: grid.Linspace(bbox.West, bbox.East, oldCols),
	}
	resampled = Axes{
		Lat: grid.Linspace(bbox.South, bbox.North, newRows),
		Lon: grid.Linspace(bbox.West, bbox.East, newCols),
	}
	return old, resampled, nil
}
