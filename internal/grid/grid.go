// Package grid provides the in-memory raster model shared by every pipeline
// stage: a rectangular 2-D field of float64 samples with an attached
// geographic bounding box. Grids are treated as immutable between stages;
// each stage returns a fresh grid rather than mutating its input.
package grid

import (
	"fmt"
	"math"
)

// Grid is a rectangular raster of float64 samples stored row-major in a flat
// backing slice. NaN marks a missing sample prior to preprocessing.
type Grid struct {
	Rows   int
	Cols   int
	Values []float64
}

// New allocates a zero-filled grid. Rows and cols must both be at least 1.
func New(rows, cols int) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("grid dimensions must be at least 1x1, got %dx%d", rows, cols)
	}
	return &Grid{
		Rows:   rows,
		Cols:   cols,
		Values: make([]float64, rows*cols),
	}, nil
}

// FromRows builds a grid from a slice of equal-length rows.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("grid requires at least one row and one column")
	}
	cols := len(rows[0])
	g, err := New(len(rows), cols)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged grid: row %d has %d values, want %d", i, len(row), cols)
		}
		copy(g.Values[i*cols:(i+1)*cols], row)
	}
	return g, nil
}

// Idx converts (row, col) to the flat backing index.
func (g *Grid) Idx(row, col int) int {
	return row*g.Cols + col
}

// At returns the sample at (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Values[row*g.Cols+col]
}

// Set stores a sample at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Values[row*g.Cols+col] = v
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		Rows:   g.Rows,
		Cols:   g.Cols,
		Values: make([]float64, len(g.Values)),
	}
	copy(out.Values, g.Values)
	return out
}

// ToRows returns the grid as a slice of rows, copying the backing data.
// Used by the JSON API and CSV export.
func (g *Grid) ToRows() [][]float64 {
	rows := make([][]float64, g.Rows)
	for i := 0; i < g.Rows; i++ {
		rows[i] = make([]float64, g.Cols)
		copy(rows[i], g.Values[i*g.Cols:(i+1)*g.Cols])
	}
	return rows
}

// MissingCount reports how many samples are NaN.
func (g *Grid) MissingCount() int {
	n := 0
	for _, v := range g.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// BoundingBox is the geographic extent of a grid in degrees. The first and
// last rows map linearly to south and north, the first and last columns to
// west and east.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// GlobalBounds is the whole-earth extent assumed for rasters that carry no
// geographic metadata of their own.
var GlobalBounds = BoundingBox{West: -180, South: -90, East: 180, North: 90}

// Validate checks that the box is non-degenerate.
func (b BoundingBox) Validate() error {
	if !(b.West < b.East) {
		return fmt.Errorf("bounding box west (%v) must be less than east (%v)", b.West, b.East)
	}
	if !(b.South < b.North) {
		return fmt.Errorf("bounding box south (%v) must be less than north (%v)", b.South, b.North)
	}
	return nil
}
