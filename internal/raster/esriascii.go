package raster

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/airgrid-data/downscale/internal/grid"
)

// esriHeader holds the parsed header of an ESRI ASCII grid. Either the
// corner or the center form of the origin keywords may appear.
type esriHeader struct {
	ncols, nrows int
	xllcorner    float64
	yllcorner    float64
	cellsize     float64
	nodata       float64
	hasNoData    bool
}

// DecodeEsriASCII reads an ESRI ASCII grid (.asc). Rows in the file run
// north to south, matching the grid convention where row 0 is the southmost
// only after flipping; the loader flips so that row 0 maps to the bounding
// box's south edge. NODATA cells become NaN and are handled by the
// preprocessor's fill step.
func DecodeEsriASCII(r io.Reader) (*grid.Grid, grid.BoundingBox, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	hdr, firstDataLine, err := parseEsriHeader(scanner)
	if err != nil {
		return nil, grid.BoundingBox{}, err
	}

	g, err := grid.New(hdr.nrows, hdr.ncols)
	if err != nil {
		return nil, grid.BoundingBox{}, err
	}

	row := 0
	consume := func(line string) error {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil
		}
		if row >= hdr.nrows {
			return fmt.Errorf("too many data rows, expected %d", hdr.nrows)
		}
		if len(fields) != hdr.ncols {
			return fmt.Errorf("row %d has %d values, want %d", row, len(fields), hdr.ncols)
		}
		// File rows run north to south; store them south-up.
		target := hdr.nrows - 1 - row
		for c, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("row %d col %d: %w", row, c, err)
			}
			if hdr.hasNoData && v == hdr.nodata {
				v = math.NaN()
			}
			g.Set(target, c, v)
		}
		row++
		return nil
	}

	if firstDataLine != "" {
		if err := consume(firstDataLine); err != nil {
			return nil, grid.BoundingBox{}, err
		}
	}
	for scanner.Scan() {
		if err := consume(scanner.Text()); err != nil {
			return nil, grid.BoundingBox{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, grid.BoundingBox{}, err
	}
	if row != hdr.nrows {
		return nil, grid.BoundingBox{}, fmt.Errorf("expected %d data rows, got %d", hdr.nrows, row)
	}

	bbox := grid.BoundingBox{
		West:  hdr.xllcorner,
		South: hdr.yllcorner,
		East:  hdr.xllcorner + float64(hdr.ncols)*hdr.cellsize,
		North: hdr.yllcorner + float64(hdr.nrows)*hdr.cellsize,
	}
	if err := bbox.Validate(); err != nil {
		return nil, grid.BoundingBox{}, fmt.Errorf("raster extent: %w", err)
	}
	return g, bbox, nil
}

// parseEsriHeader consumes the keyword lines at the top of the file. The
// first non-keyword line is data and is returned for the caller to process.
func parseEsriHeader(scanner *bufio.Scanner) (esriHeader, string, error) {
	hdr := esriHeader{cellsize: math.NaN()}
	hdr.ncols, hdr.nrows = -1, -1
	seenCorner := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])

		var num float64
		isKeyword := true
		if len(fields) == 2 {
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
				num = v
			} else {
				isKeyword = false
			}
		} else {
			isKeyword = false
		}

		if isKeyword {
			switch key {
			case "ncols":
				hdr.ncols = int(num)
				continue
			case "nrows":
				hdr.nrows = int(num)
				continue
			case "xllcorner":
				hdr.xllcorner = num
				seenCorner = true
				continue
			case "yllcorner":
				hdr.yllcorner = num
				seenCorner = true
				continue
			case "xllcenter":
				// Convert center origin to corner form once cellsize is known;
				// store as-is and adjust below.
				hdr.xllcorner = num
				continue
			case "yllcenter":
				hdr.yllcorner = num
				continue
			case "cellsize":
				hdr.cellsize = num
				continue
			case "nodata_value":
				hdr.nodata = num
				hdr.hasNoData = true
				continue
			}
		}

		// First data line reached.
		if err := validateEsriHeader(&hdr, seenCorner); err != nil {
			return hdr, "", err
		}
		return hdr, line, nil
	}
	if err := scanner.Err(); err != nil {
		return hdr, "", err
	}
	return hdr, "", fmt.Errorf("ESRI ASCII grid has no data rows")
}

func validateEsriHeader(hdr *esriHeader, seenCorner bool) error {
	if hdr.ncols < 1 || hdr.nrows < 1 {
		return fmt.Errorf("ESRI ASCII header missing or invalid ncols/nrows")
	}
	if math.IsNaN(hdr.cellsize) || hdr.cellsize <= 0 {
		return fmt.Errorf("ESRI ASCII header missing or invalid cellsize")
	}
	if !seenCorner {
		// Center-form origin: shift by half a cell to the corner form.
		hdr.xllcorner -= hdr.cellsize / 2
		hdr.yllcorner -= hdr.cellsize / 2
	}
	return nil
}
