// Command no2map runs the NO2 downscaling service and batch pipeline.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/airgrid-data/downscale/internal/config"
	"github.com/airgrid-data/downscale/internal/downscale"
	"github.com/airgrid-data/downscale/internal/export"
	"github.com/airgrid-data/downscale/internal/grid"
	"github.com/airgrid-data/downscale/internal/monitor"
	"github.com/airgrid-data/downscale/internal/raster"
	"github.com/airgrid-data/downscale/internal/render"
	"github.com/airgrid-data/downscale/internal/version"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var (
		listen     string
		configPath string

		inputPath string
		outDir    string
		sigma     float64
		factor    int
		method    string
		format    string
		seed      int64
	)

	rootCmd := &cobra.Command{
		Use:  "no2map",
		Long: `Sentinel-5P NO2 raster downscaling`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve [--listen <addr>] [--config <path>]",
		Short: "Start the HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			log.Println(version.String())
			ws := monitor.NewWebServer(monitor.WebServerConfig{
				Address:  listen,
				Pipeline: cfg,
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return ws.Start(ctx)
		},
	}
	serveCmd.Flags().StringVar(&listen, "listen", ":8080", "Listen address for the HTTP server")
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to pipeline config JSON (defaults applied when empty)")

	downscaleCmd := &cobra.Command{
		Use:   "downscale [--input <raster>] [--out <dir>]",
		Short: "Run the pipeline once and write maps, histogram and an export",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBatch(batchOptions{
				inputPath: inputPath,
				outDir:    outDir,
				sigma:     sigma,
				factor:    factor,
				method:    method,
				format:    format,
				seed:      seed,
			})
		},
	}
	downscaleCmd.Flags().StringVar(&inputPath, "input", "", "Input raster (.png/.jpg/.tif/.asc); synthetic data when empty")
	downscaleCmd.Flags().StringVar(&outDir, "out", "out", "Output directory")
	downscaleCmd.Flags().Float64Var(&sigma, "sigma", 1.0, "Smoothing sigma in grid cells")
	downscaleCmd.Flags().IntVar(&factor, "factor", 4, "Magnification factor (2-10)")
	downscaleCmd.Flags().StringVar(&method, "method", "bilinear", "Resampling method: gaussian-smooth, bilinear, cubic-spline, regression-plane")
	downscaleCmd.Flags().StringVar(&format, "format", "csv", "Export format: csv, png or pdf")
	downscaleCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the synthetic field")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.String())
		},
	}

	rootCmd.AddCommand(serveCmd, downscaleCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(path string) (*config.PipelineConfig, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err == nil {
			path = config.DefaultConfigPath
		} else {
			return config.EmptyPipelineConfig(), nil
		}
	}
	cfg, err := config.LoadPipelineConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

type batchOptions struct {
	inputPath string
	outDir    string
	sigma     float64
	factor    int
	method    string
	format    string
	seed      int64
}

// runBatch executes one pipeline run and writes every artefact the UI tabs
// would show: the three heatmaps, the difference map, the histogram and a
// CSV or PNG export of the downscaled grid.
func runBatch(o batchOptions) error {
	m, err := downscale.ParseMethod(o.method)
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}

	g, bbox, err := loadInput(o.inputPath, o.seed)
	if err != nil {
		return err
	}
	log.Printf("Input grid %dx%d, bbox %+v", g.Rows, g.Cols, bbox)

	result, err := downscale.Run(g, bbox, downscale.Params{Sigma: o.sigma, Factor: o.factor, Method: m})
	if err != nil {
		return err
	}
	if result.Fallback {
		log.Printf("WARNING: resample fell back to the original grid: %s", result.Reason)
	}

	if err := os.MkdirAll(o.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	maps := []struct {
		name string
		g    *grid.Grid
		axes downscale.Axes
	}{
		{"original.png", result.Original, result.OriginalAxes},
		{"processed.png", result.Processed, result.OriginalAxes},
		{"downscaled.png", result.Downscaled, result.DownscaledAxes},
	}
	for _, mp := range maps {
		title := strings.TrimSuffix(mp.name, ".png")
		if err := writeMap(filepath.Join(o.outDir, mp.name), mp.g, mp.axes, title); err != nil {
			return err
		}
	}

	if result.Diff != nil {
		if err := writeFile(filepath.Join(o.outDir, "diff.png"), func(f *os.File) error {
			return render.DiffMap(f, result.Diff, result.DownscaledAxes, 0.2)
		}); err != nil {
			return err
		}
	}

	if err := writeFile(filepath.Join(o.outDir, "histogram.png"), func(f *os.File) error {
		return render.Histogram(f, result.Downscaled, 50, "Histogram of Downscaled NO2 Values")
	}); err != nil {
		return err
	}

	path, err := export.ToFile(o.outDir, result, f, render.HeatmapOptions{
		Title: "Downscaled NO2 Image",
	})
	if err != nil {
		return err
	}
	log.Printf("Export written to %s", path)

	log.Printf("Original mean: %.4f  Processed mean: %.4f  Downscaled mean: %.4f",
		result.OriginalStats.Mean, result.ProcessedStats.Mean, result.DownscaledStats.Mean)
	return nil
}

func loadInput(path string, seed int64) (*grid.Grid, grid.BoundingBox, error) {
	if path == "" {
		g, bbox := grid.Synthetic(seed)
		return g, bbox, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, grid.BoundingBox{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if strings.EqualFold(filepath.Ext(path), ".asc") {
		return raster.DecodeEsriASCII(f)
	}
	return raster.DecodeImage(f, path)
}

func writeMap(path string, g *grid.Grid, axes downscale.Axes, title string) error {
	return writeFile(path, func(f *os.File) error {
		return render.Heatmap(f, g, axes, render.HeatmapOptions{Title: title})
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
