package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/airgrid-data/downscale/internal/downscale"
	"github.com/airgrid-data/downscale/internal/grid"
	"github.com/airgrid-data/downscale/internal/render"
)

func testResult(t *testing.T) *downscale.PipelineResult {
	t.Helper()
	g, _ := grid.Synthetic(1)
	res, err := downscale.Run(g, grid.GlobalBounds, downscale.Params{
		Sigma:  1,
		Factor: 2,
		Method: downscale.MethodBilinear,
	})
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}
	return res
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("csv"); err != nil || f != FormatCSV {
		t.Fatalf("ParseFormat(csv) = %v, %v", f, err)
	}
	if f, err := ParseFormat("png"); err != nil || f != FormatPNG {
		t.Fatalf("ParseFormat(png) = %v, %v", f, err)
	}
	if f, err := ParseFormat("pdf"); err != nil || f != FormatPDF {
		t.Fatalf("ParseFormat(pdf) = %v, %v", f, err)
	}
	if _, err := ParseFormat("svg"); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestFormat_ContentType(t *testing.T) {
	if ct := FormatCSV.ContentType(); ct != "text/csv" {
		t.Fatalf("csv content type = %q", ct)
	}
	if ct := FormatPNG.ContentType(); ct != "image/png" {
		t.Fatalf("png content type = %q", ct)
	}
	if ct := FormatPDF.ContentType(); ct != "application/pdf" {
		t.Fatalf("pdf content type = %q", ct)
	}
}

func TestWriteCSV_RoundTripValues(t *testing.T) {
	g, _ := grid.FromRows([][]float64{
		{0.1, 0.25},
		{1.0 / 3.0, 2},
	})
	var buf bytes.Buffer
	if err := WriteCSV(&buf, g); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	if len(records) != 2 || len(records[0]) != 2 {
		t.Fatalf("unexpected CSV shape: %v", records)
	}
	// Full round-trip precision: 1/3 must survive exactly.
	if records[1][0] != "0.3333333333333333" {
		t.Fatalf("records[1][0] = %q", records[1][0])
	}
}

func TestWrite_CSVAndPNG(t *testing.T) {
	res := testResult(t)

	var csvBuf bytes.Buffer
	if err := Write(&csvBuf, res, FormatCSV, render.HeatmapOptions{}); err != nil {
		t.Fatalf("CSV export failed: %v", err)
	}
	lines := strings.Count(csvBuf.String(), "\n")
	if lines != res.Downscaled.Rows {
		t.Fatalf("CSV has %d lines, want %d", lines, res.Downscaled.Rows)
	}

	var pngBuf bytes.Buffer
	if err := Write(&pngBuf, res, FormatPNG, render.HeatmapOptions{Title: "export"}); err != nil {
		t.Fatalf("PNG export failed: %v", err)
	}
	if !bytes.HasPrefix(pngBuf.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatal("PNG export is not a PNG")
	}

	var pdfBuf bytes.Buffer
	if err := Write(&pdfBuf, res, FormatPDF, render.HeatmapOptions{Title: "export"}); err != nil {
		t.Fatalf("PDF export failed: %v", err)
	}
	if !bytes.HasPrefix(pdfBuf.Bytes(), []byte("%PDF")) {
		t.Fatal("PDF export is not a PDF")
	}

	if err := Write(&bytes.Buffer{}, res, Format("svg"), render.HeatmapOptions{}); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestFilename_UniqueAndWellFormed(t *testing.T) {
	a := Filename(FormatCSV)
	b := Filename(FormatCSV)
	if a == b {
		t.Fatal("filenames must not collide")
	}
	if !strings.HasPrefix(a, "no2_downscaled_") || !strings.HasSuffix(a, ".csv") {
		t.Fatalf("unexpected filename %q", a)
	}
	if !strings.HasSuffix(Filename(FormatPNG), ".png") {
		t.Fatalf("unexpected png filename %q", Filename(FormatPNG))
	}
	if !strings.HasSuffix(Filename(FormatPDF), ".pdf") {
		t.Fatalf("unexpected pdf filename %q", Filename(FormatPDF))
	}
}

func TestToFile(t *testing.T) {
	res := testResult(t)
	dir := t.TempDir()

	path, err := ToFile(dir, res, FormatCSV, render.HeatmapOptions{})
	if err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("export written outside %s: %s", dir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("export file is empty")
	}
}
