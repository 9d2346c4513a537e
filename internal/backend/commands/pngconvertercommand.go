package commands

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/jo-hoe/certshowcase/internal/backend/commandstructure"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// PngConverterCommand turns SVG or raster input into PNG. The site icon is
// kept as SVG and served as PNG through this command.
type PngConverterCommand struct {
	name string
	// width and height override the SVG view box size when both are set.
	width, height int
}

// NewPngConverterCommand creates a new PNG converter command. Optional
// params: width, height.
func NewPngConverterCommand(params map[string]any) (commandstructure.Command, error) {
	w := commandstructure.GetIntParam(params, "width", 0)
	h := commandstructure.GetIntParam(params, "height", 0)
	if w < 0 || h < 0 || (w == 0) != (h == 0) {
		return nil, fmt.Errorf("width and height must both be positive or both be omitted, got %dx%d", w, h)
	}

	return &PngConverterCommand{
		name:   "PngConverterCommand",
		width:  w,
		height: h,
	}, nil
}

// Name returns the command name
func (c *PngConverterCommand) Name() string {
	return c.name
}

func (c *PngConverterCommand) Execute(imageData []byte) ([]byte, error) {
	if isSVGData(imageData) {
		return c.convertSVG(imageData)
	}

	if hasCorrectSignature(imageData, "png") {
		slog.Debug("PngConverterCommand: PNG detected; returning original bytes")
		return imageData, nil
	}

	img, format, err := decodeImage(imageData)
	if err != nil {
		slog.Error("PngConverterCommand: failed to decode image", "error", err)
		return nil, err
	}
	slog.Debug("PngConverterCommand: converting raster image", "current_format", format)
	return encodeImage(img, "png", 0)
}

func (c *PngConverterCommand) convertSVG(imageData []byte) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(imageData))
	if err != nil {
		slog.Error("PngConverterCommand: failed to parse SVG", "error", err)
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	w, h := c.width, c.height
	if w == 0 {
		w = int(math.Ceil(icon.ViewBox.W))
		h = int(math.Ceil(icon.ViewBox.H))
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("SVG has no usable size (%dx%d); set width and height", w, h)
	}

	slog.Debug("PngConverterCommand: rendering SVG", "width", w, "height", h)

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	return encodeImage(dst, "png", 0)
}

// isSVGData looks for an <svg tag in the first 4KB.
func isSVGData(data []byte) bool {
	n := min(len(data), 4096)
	return bytes.Contains(bytes.ToLower(data[:n]), []byte("<svg"))
}

func init() {
	// Register the command in the default registry
	if err := commandstructure.DefaultRegistry.Register("PngConverterCommand", NewPngConverterCommand); err != nil {
		panic(fmt.Sprintf("failed to register PngConverterCommand: %v", err))
	}
}
