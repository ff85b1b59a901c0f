// Package main provides a comparison tool for the four resampling methods.
// It runs each method on the same input grid and reports shape, summary
// statistics and fallback status side by side.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/airgrid-data/downscale/internal/downscale"
	"github.com/airgrid-data/downscale/internal/grid"
	"github.com/airgrid-data/downscale/internal/raster"
	"github.com/airgrid-data/downscale/internal/render"
)

// Config holds configuration for the method comparison.
type Config struct {
	InputPath  string
	OutputDir  string
	Sigma      float64
	Factor     int
	Seed       int64
	WritePlots bool
	OutputJSON string
}

// MethodStats holds per-method comparison results.
type MethodStats struct {
	Method           string  `json:"method"`
	Rows             int     `json:"rows"`
	Cols             int     `json:"cols"`
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	Mean             float64 `json:"mean"`
	Fallback         bool    `json:"fallback"`
	Reason           string  `json:"reason,omitempty"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
}

// ComparisonResult holds the results for all methods.
type ComparisonResult struct {
	Input     string        `json:"input"`
	Rows      int           `json:"rows"`
	Cols      int           `json:"cols"`
	Sigma     float64       `json:"sigma"`
	Factor    int           `json:"factor"`
	PerMethod []MethodStats `json:"per_method"`
}

func main() {
	cfg := parseFlags()

	g, bbox, err := loadInput(cfg)
	if err != nil {
		log.Fatalf("Failed to load input: %v", err)
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	result := ComparisonResult{
		Input:  inputName(cfg),
		Rows:   g.Rows,
		Cols:   g.Cols,
		Sigma:  cfg.Sigma,
		Factor: cfg.Factor,
	}

	for _, m := range downscale.Methods() {
		start := time.Now()
		run, err := downscale.Run(g, bbox, downscale.Params{
			Sigma:  cfg.Sigma,
			Factor: cfg.Factor,
			Method: m,
		})
		if err != nil {
			log.Fatalf("Pipeline failed for %s: %v", m, err)
		}

		stats := MethodStats{
			Method:           m.String(),
			Rows:             run.Downscaled.Rows,
			Cols:             run.Downscaled.Cols,
			Min:              run.DownscaledStats.Min,
			Max:              run.DownscaledStats.Max,
			Mean:             run.DownscaledStats.Mean,
			Fallback:         run.Fallback,
			Reason:           run.Reason,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}
		result.PerMethod = append(result.PerMethod, stats)

		if cfg.WritePlots && cfg.OutputDir != "" {
			name := strings.ReplaceAll(m.String(), "-", "_") + ".png"
			if err := writePlot(filepath.Join(cfg.OutputDir, name), run); err != nil {
				log.Printf("Warning: failed to write plot for %s: %v", m, err)
			}
		}
	}

	printResults(result)

	if cfg.OutputJSON != "" {
		outputPath := cfg.OutputJSON
		if cfg.OutputDir != "" {
			outputPath = filepath.Join(cfg.OutputDir, cfg.OutputJSON)
		}
		if err := exportJSON(result, outputPath); err != nil {
			log.Printf("Warning: failed to export JSON: %v", err)
		} else {
			log.Printf("Results exported to: %s", outputPath)
		}
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.InputPath, "input", "", "Input raster (.png/.jpg/.tif/.asc); synthetic data when empty")
	flag.StringVar(&cfg.OutputDir, "output", "", "Output directory for plots and JSON")
	flag.Float64Var(&cfg.Sigma, "sigma", 1.0, "Smoothing sigma in grid cells")
	flag.IntVar(&cfg.Factor, "factor", 4, "Magnification factor (2-10)")
	flag.Int64Var(&cfg.Seed, "seed", 42, "Seed for the synthetic field")
	flag.BoolVar(&cfg.WritePlots, "plots", false, "Write a heatmap PNG per method")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename (e.g., results.json)")

	flag.Parse()
	return cfg
}

func loadInput(cfg Config) (*grid.Grid, grid.BoundingBox, error) {
	if cfg.InputPath == "" {
		g, bbox := grid.Synthetic(cfg.Seed)
		return g, bbox, nil
	}
	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, grid.BoundingBox{}, err
	}
	defer func() {
		_ = f.Close()
	}()
	if strings.EqualFold(filepath.Ext(cfg.InputPath), ".asc") {
		return raster.DecodeEsriASCII(f)
	}
	return raster.DecodeImage(f, cfg.InputPath)
}

func inputName(cfg Config) string {
	if cfg.InputPath == "" {
		return fmt.Sprintf("synthetic(seed=%d)", cfg.Seed)
	}
	return cfg.InputPath
}

func writePlot(path string, run *downscale.PipelineResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Heatmap(f, run.Downscaled, run.DownscaledAxes, render.HeatmapOptions{Title: path}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printResults(result ComparisonResult) {
	fmt.Printf("\nInput: %s (%dx%d), sigma=%.2f, factor=%d\n\n",
		result.Input, result.Rows, result.Cols, result.Sigma, result.Factor)
	fmt.Printf("%-18s %-12s %-10s %-10s %-10s %-8s %s\n",
		"METHOD", "SHAPE", "MIN", "MAX", "MEAN", "TIME(ms)", "FALLBACK")
	for _, s := range result.PerMethod {
		fallback := "-"
		if s.Fallback {
			fallback = s.Reason
		}
		fmt.Printf("%-18s %-12s %-10.4f %-10.4f %-10.4f %-8d %s\n",
			s.Method, fmt.Sprintf("%dx%d", s.Rows, s.Cols),
			s.Min, s.Max, s.Mean, s.ProcessingTimeMs, fallback)
	}
}

func exportJSON(result ComparisonResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
