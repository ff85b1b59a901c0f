package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/airgrid-data/downscale/internal/config"
	"github.com/airgrid-data/downscale/internal/downscale"
	"github.com/airgrid-data/downscale/internal/export"
	"github.com/airgrid-data/downscale/internal/grid"
	"github.com/airgrid-data/downscale/internal/monitoring"
	"github.com/airgrid-data/downscale/internal/raster"
	"github.com/airgrid-data/downscale/internal/render"
	"github.com/airgrid-data/downscale/internal/units"
)

// syntheticSeed fixes the generator so repeated runs without an uploaded
// raster are comparable.
const syntheticSeed = 42

// maxUploadBytes bounds multipart raster uploads.
const maxUploadBytes = 32 << 20

// downscaleRequest is the /api/downscale body. Grid and bbox are optional;
// when absent the synthetic NO2 field is used. Params are merged over the
// server's current parameter set for this run only.
type downscaleRequest struct {
	Grid   [][]float64            `json:"grid,omitempty"`
	BBox   *grid.BoundingBox      `json:"bbox,omitempty"`
	Params *config.PipelineConfig `json:"params,omitempty"`
}

// downscaleResponse summarises one pipeline run. The downscaled values are
// included only when the request asks for them; shapes, axes, statistics and
// the fallback report are always present so callers can detect degraded
// output without payload cost. Statistics and grid values are reported in
// the requested column density units (mol/m2 unless overridden).
type downscaleResponse struct {
	RunID           string         `json:"run_id"`
	Method          string         `json:"method"`
	Factor          int            `json:"factor"`
	Sigma           float64        `json:"sigma"`
	Units           string         `json:"units"`
	OriginalShape   [2]int         `json:"original_shape"`
	DownscaledShape [2]int         `json:"downscaled_shape"`
	Fallback        bool           `json:"fallback"`
	Reason          string         `json:"reason,omitempty"`
	OriginalAxes    downscale.Axes `json:"original_axes"`
	DownscaledAxes  downscale.Axes `json:"downscaled_axes"`
	OriginalStats   grid.Stats     `json:"original_stats"`
	ProcessedStats  grid.Stats     `json:"processed_stats"`
	DownscaledStats grid.Stats     `json:"downscaled_stats"`
	Downscaled      [][]float64    `json:"downscaled,omitempty"`
}

func (ws *WebServer) handleDownscale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req downscaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Params != nil {
		if err := req.Params.Validate(); err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var g *grid.Grid
	var bbox grid.BoundingBox
	if len(req.Grid) > 0 {
		var err error
		g, err = grid.FromRows(req.Grid)
		if err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		bbox = grid.GlobalBounds
		if req.BBox != nil {
			bbox = *req.BBox
		}
	} else {
		g, bbox = grid.Synthetic(syntheticSeed)
	}

	ws.runPipeline(w, r, g, bbox, req.Params)
}

// handleUpload accepts a multipart raster ("file" field), converts it to a
// grid and runs the pipeline with the server's current parameters.
func (ws *WebServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		ws.writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ws.writeJSONError(w, http.StatusBadRequest, "missing file field: "+err.Error())
		return
	}
	defer func() {
		_ = file.Close()
	}()

	var g *grid.Grid
	var bbox grid.BoundingBox
	if strings.EqualFold(filepath.Ext(header.Filename), ".asc") {
		g, bbox, err = raster.DecodeEsriASCII(file)
	} else {
		g, bbox, err = raster.DecodeImage(file, header.Filename)
	}
	if err != nil {
		ws.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws.runPipeline(w, r, g, bbox, nil)
}

func (ws *WebServer) runPipeline(w http.ResponseWriter, r *http.Request, g *grid.Grid, bbox grid.BoundingBox, override *config.PipelineConfig) {
	targetUnits := r.URL.Query().Get("units")
	if targetUnits == "" {
		targetUnits = units.MolPerM2
	}
	if !units.IsValid(targetUnits) {
		ws.writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown units %q (valid: %s)", targetUnits, units.GetValidUnitsString()))
		return
	}

	ws.mu.Lock()
	cfg := ws.cfg.Merge(override)
	ws.mu.Unlock()

	if cfg.GetAddNoise() {
		g = grid.AddNoise(g, cfg.GetNoiseStdDev(), syntheticSeed+1)
	}

	result, err := downscale.Run(g, bbox, cfg.Params())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, downscale.ErrInvalidShape) {
			status = http.StatusBadRequest
		}
		ws.writeJSONError(w, status, err.Error())
		return
	}

	run := &pipelineRun{ID: uuid.NewString(), When: time.Now(), Result: result}
	ws.mu.Lock()
	ws.lastRun = run
	ws.mu.Unlock()

	resp := downscaleResponse{
		RunID:           run.ID,
		Method:          cfg.GetMethod().String(),
		Factor:          cfg.GetFactor(),
		Sigma:           cfg.GetSigma(),
		Units:           targetUnits,
		OriginalShape:   [2]int{result.Original.Rows, result.Original.Cols},
		DownscaledShape: [2]int{result.Downscaled.Rows, result.Downscaled.Cols},
		Fallback:        result.Fallback,
		Reason:          result.Reason,
		OriginalAxes:    result.OriginalAxes,
		DownscaledAxes:  result.DownscaledAxes,
		OriginalStats:   convertStats(result.OriginalStats, targetUnits),
		ProcessedStats:  convertStats(result.ProcessedStats, targetUnits),
		DownscaledStats: convertStats(result.DownscaledStats, targetUnits),
	}
	if r.URL.Query().Get("include_grid") == "1" {
		resp.Downscaled = convertRows(result.Downscaled, targetUnits)
	}
	ws.writeJSON(w, resp)
}

// convertStats rescales a summary from the canonical mol/m2 storage unit.
// Every supported conversion is a pure scaling, so min, max, mean and the
// standard deviation all convert the same way; the missing count does not.
func convertStats(s grid.Stats, targetUnits string) grid.Stats {
	if targetUnits == units.MolPerM2 {
		return s
	}
	s.Min = units.Convert(s.Min, targetUnits)
	s.Max = units.Convert(s.Max, targetUnits)
	s.Mean = units.Convert(s.Mean, targetUnits)
	s.StdDev = units.Convert(s.StdDev, targetUnits)
	return s
}

func convertRows(g *grid.Grid, targetUnits string) [][]float64 {
	rows := g.ToRows()
	if targetUnits == units.MolPerM2 {
		return rows
	}
	for _, row := range rows {
		for i, v := range row {
			row[i] = units.Convert(v, targetUnits)
		}
	}
	return rows
}

// handleExport streams the most recent run in the requested format.
func (ws *WebServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		ws.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws.mu.Lock()
	run := ws.lastRun
	cfg := ws.cfg
	ws.mu.Unlock()
	if run == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no pipeline run to export; POST /api/downscale first")
		return
	}

	opts := render.HeatmapOptions{
		Title:   "Downscaled NO2 Image",
		Palette: cfg.GetPalette(),
		VMin:    cfg.GetVMin(),
		VMax:    cfg.GetVMax(),
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format)))
	if err := export.Write(w, run.Result, format, opts); err != nil {
		// Headers are already sent; log rather than rewrite the status.
		monitoring.Logf("export failed: %v", err)
	}
}
