// Package monitor provides the HTTP interface to the downscaling pipeline:
// JSON endpoints for running the pipeline and adjusting its parameters,
// raster upload, result export, and debug chart pages.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/airgrid-data/downscale/internal/config"
	"github.com/airgrid-data/downscale/internal/downscale"
)

// WebServer handles the HTTP interface for the downscaling pipeline. All
// pipeline computation is synchronous and pure; the only mutable state is
// the current parameter set and the most recent run, both guarded by mu.
type WebServer struct {
	address string
	server  *http.Server

	mu      sync.Mutex
	cfg     *config.PipelineConfig
	lastRun *pipelineRun
}

// pipelineRun pairs a pipeline result with the identifiers the export and
// debug endpoints need.
type pipelineRun struct {
	ID     string
	When   time.Time
	Result *downscale.PipelineResult
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address  string
	Pipeline *config.PipelineConfig
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(cfg WebServerConfig) *WebServer {
	pipeline := cfg.Pipeline
	if pipeline == nil {
		pipeline = config.EmptyPipelineConfig()
	}
	ws := &WebServer{
		address: cfg.Address,
		cfg:     pipeline,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

func (ws *WebServer) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/api/pipeline/params", ws.handlePipelineParams)
	mux.HandleFunc("/api/downscale", ws.handleDownscale)
	mux.HandleFunc("/api/upload", ws.handleUpload)
	mux.HandleFunc("/api/export", ws.handleExport)
	mux.HandleFunc("/debug/heatmap", ws.handleDebugHeatmap)
	mux.HandleFunc("/debug/histogram", ws.handleDebugHistogram)
	return mux
}

// Start begins the HTTP server and blocks until ctx is cancelled, then
// shuts the server down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return ws.server.Close()
	}
	return nil
}

// Handler exposes the route table for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handlePipelineParams returns the effective parameter set on GET and merges
// a partial update on POST, mirroring the config-file schema.
func (ws *WebServer) handlePipelineParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ws.mu.Lock()
		cfg := ws.cfg
		ws.mu.Unlock()
		ws.writeJSON(w, effectiveParams(cfg))

	case http.MethodPost:
		update := config.EmptyPipelineConfig()
		if err := json.NewDecoder(r.Body).Decode(update); err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
		if err := update.Validate(); err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		ws.mu.Lock()
		ws.cfg = ws.cfg.Merge(update)
		cfg := ws.cfg
		ws.mu.Unlock()
		ws.writeJSON(w, effectiveParams(cfg))

	default:
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "use GET or POST")
	}
}

// effectiveParams flattens a pointer-field config into concrete values for
// display.
func effectiveParams(cfg *config.PipelineConfig) map[string]interface{} {
	return map[string]interface{}{
		"sigma":          cfg.GetSigma(),
		"add_noise":      cfg.GetAddNoise(),
		"noise_std_dev":  cfg.GetNoiseStdDev(),
		"factor":         cfg.GetFactor(),
		"method":         cfg.GetMethod().String(),
		"vmin":           cfg.GetVMin(),
		"vmax":           cfg.GetVMax(),
		"palette":        cfg.GetPalette(),
		"histogram_bins": cfg.GetHistogramBins(),
	}
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
