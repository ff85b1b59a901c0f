package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/airgrid-data/downscale/internal/grid"
)

// testImage builds a 2x2 greyscale gradient: black, dark, light, white.
func testImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 85})
	img.SetGray(0, 1, color.Gray{Y: 170})
	img.SetGray(1, 1, color.Gray{Y: 255})
	return img
}

func checkGradient(t *testing.T, g *grid.Grid, bbox grid.BoundingBox) {
	t.Helper()
	if g.Rows != 2 || g.Cols != 2 {
		t.Fatalf("shape %dx%d, want 2x2", g.Rows, g.Cols)
	}
	want := [][]float64{
		{0, 85.0 / 255},
		{170.0 / 255, 1},
	}
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if math.Abs(g.At(r, c)-want[r][c]) > 0.02 {
				t.Fatalf("At(%d,%d) = %v, want ~%v", r, c, g.At(r, c), want[r][c])
			}
		}
	}
	if bbox != grid.GlobalBounds {
		t.Fatalf("bbox = %+v, want global bounds", bbox)
	}
}

func TestDecodeImage_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	g, bbox, err := DecodeImage(&buf, "upload.png")
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	checkGradient(t, g, bbox)
}

func TestDecodeImage_TIFF(t *testing.T) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, testImage(), nil); err != nil {
		t.Fatalf("tiff encode: %v", err)
	}
	g, bbox, err := DecodeImage(&buf, "scene.tif")
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	checkGradient(t, g, bbox)
}

func TestDecodeImage_Garbage(t *testing.T) {
	if _, _, err := DecodeImage(strings.NewReader("not an image"), "x.png"); err == nil {
		t.Fatal("garbage input should fail")
	}
	if _, _, err := DecodeImage(strings.NewReader("not a tiff"), "x.tif"); err == nil {
		t.Fatal("garbage TIFF input should fail")
	}
}
