// Package raster ingests external rasters into the pipeline's grid model.
// Two loaders are provided: greyscale image decoding (PNG, JPEG, TIFF) for
// satellite imagery exports, and ESRI ASCII grids for data that carries its
// own geographic extent. The pipeline itself never sees file formats; both
// loaders return a plain grid plus a bounding box.
package raster

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"golang.org/x/image/tiff"

	// Registered for image.Decode.
	_ "image/jpeg"
	_ "image/png"

	"github.com/airgrid-data/downscale/internal/grid"
)

// DecodeImage reads a PNG, JPEG or TIFF image and converts it to a grid of
// luminance values normalised to [0, 1]. Plain images carry no geographic
// metadata, so the returned bounding box is the whole-earth extent, matching
// how uploads without georeferencing are treated.
func DecodeImage(r io.Reader, name string) (*grid.Grid, grid.BoundingBox, error) {
	var img image.Image
	var err error

	if isTIFF(name) {
		img, err = tiff.Decode(r)
	} else {
		img, _, err = image.Decode(r)
	}
	if err != nil {
		return nil, grid.BoundingBox{}, fmt.Errorf("failed to decode image %q: %w", name, err)
	}

	return imageToGrid(img)
}

func isTIFF(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tif", ".tiff":
		return true
	}
	return false
}

func imageToGrid(img image.Image) (*grid.Grid, grid.BoundingBox, error) {
	grey := effect.Grayscale(img)
	bounds := grey.Bounds()

	g, err := grid.New(bounds.Dy(), bounds.Dx())
	if err != nil {
		return nil, grid.BoundingBox{}, err
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Grayscale output has equal channels; red carries the luminance.
			r, _, _, _ := grey.At(x, y).RGBA()
			g.Set(y-bounds.Min.Y, x-bounds.Min.X, float64(r>>8)/255.0)
		}
	}
	return g, grid.GlobalBounds, nil
}
