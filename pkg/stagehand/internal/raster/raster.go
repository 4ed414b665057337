// Package raster turns SVG icons into RGBA images for hosts to upload as
// textures.
package raster

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed spinner.svg
var spinnerSVG []byte

// Spinner rasterizes the built-in loading spinner at size x size pixels.
func Spinner(size int) (*image.RGBA, error) {
	return SVG(spinnerSVG, size)
}

// SVG rasterizes data into a square image, scaling the icon's viewBox to
// fill it.
func SVG(data []byte, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, errors.New("raster: size must be positive")
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("raster: parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)
	return img, nil
}
