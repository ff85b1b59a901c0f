// Package export writes pipeline results to portable formats: CSV (one line
// per grid row), PNG and PDF (rendered heatmap). Filenames embed a run id so
// repeated exports never collide.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/airgrid-data/downscale/internal/downscale"
	"github.com/airgrid-data/downscale/internal/grid"
	"github.com/airgrid-data/downscale/internal/render"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat validates a format string from the API or CLI.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPNG:
		return FormatPNG, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown export format %q (valid: csv, png, pdf)", s)
}

// ContentType returns the MIME type for HTTP downloads.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// WriteCSV writes the grid as CSV, one record per grid row, values formatted
// with full float64 round-trip precision.
func WriteCSV(w io.Writer, g *grid.Grid) error {
	cw := csv.NewWriter(w)
	record := make([]string, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			record[c] = strconv.FormatFloat(g.At(r, c), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write encodes the downscaled grid from result in the requested format.
func Write(w io.Writer, result *downscale.PipelineResult, format Format, opts render.HeatmapOptions) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, result.Downscaled)
	case FormatPNG:
		return render.Heatmap(w, result.Downscaled, result.DownscaledAxes, opts)
	case FormatPDF:
		return render.HeatmapPDF(w, result.Downscaled, result.DownscaledAxes, opts)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Filename builds a collision-free export filename like
// "no2_downscaled_3b1f...c2.csv".
func Filename(format Format) string {
	return fmt.Sprintf("no2_downscaled_%s.%s", uuid.NewString(), format)
}

// ToFile writes an export into dir under a generated filename and returns
// the full path.
func ToFile(dir string, result *downscale.PipelineResult, format Format, opts render.HeatmapOptions) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, Filename(format))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(f, result, format, opts); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}
