package commands

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/jo-hoe/certshowcase/internal/backend/commandstructure"
)

// TrimParams represents typed parameters for trim command
type TrimParams struct {
	// Tolerance is the largest per-channel difference from the background
	// that still counts as background.
	Tolerance int
	// Padding is kept around the content, in pixels.
	Padding int
	Quality int
}

// NewTrimParamsFromMap creates TrimParams from a generic map
func NewTrimParamsFromMap(params map[string]any) (*TrimParams, error) {
	tolerance := commandstructure.GetIntParam(params, "tolerance", 16)
	padding := commandstructure.GetIntParam(params, "padding", 0)

	if tolerance < 0 || tolerance > 255 {
		return nil, fmt.Errorf("tolerance must be between 0 and 255, got %d", tolerance)
	}
	if padding < 0 {
		return nil, fmt.Errorf("padding must not be negative, got %d", padding)
	}

	return &TrimParams{
		Tolerance: tolerance,
		Padding:   padding,
		Quality:   commandstructure.GetIntParam(params, "quality", defaultJpegQuality),
	}, nil
}

// TrimCommand removes the uniform border that rasterized certificates carry
// around the page content. The top left pixel defines the border color.
type TrimCommand struct {
	name   string
	params *TrimParams
}

// NewTrimCommand creates a new trim command from configuration parameters
func NewTrimCommand(params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewTrimParamsFromMap(params)
	if err != nil {
		return nil, err
	}

	return &TrimCommand{
		name:   "TrimCommand",
		params: typedParams,
	}, nil
}

// Name returns the command name
func (c *TrimCommand) Name() string {
	return c.name
}

// Execute crops the image to its content plus padding
func (c *TrimCommand) Execute(imageData []byte) ([]byte, error) {
	img, format, err := decodeImage(imageData)
	if err != nil {
		slog.Error("TrimCommand: failed to decode image", "error", err)
		return nil, err
	}

	bounds := img.Bounds()
	content, ok := contentBounds(img, c.params.Tolerance)
	if !ok {
		slog.Debug("TrimCommand: image is uniform; nothing to trim")
		return imageData, nil
	}

	crop := image.Rect(
		content.Min.X-c.params.Padding,
		content.Min.Y-c.params.Padding,
		content.Max.X+c.params.Padding,
		content.Max.Y+c.params.Padding,
	).Intersect(bounds)
	if crop == bounds {
		slog.Debug("TrimCommand: no border found")
		return imageData, nil
	}

	slog.Debug("TrimCommand: trimming border",
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"crop", crop.String())

	cropped := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	parallelFor(crop.Dy(), func(y int) {
		for x := 0; x < crop.Dx(); x++ {
			cropped.Set(x, y, img.At(crop.Min.X+x, crop.Min.Y+y))
		}
	})

	out, err := encodeImage(cropped, format, c.params.Quality)
	if err != nil {
		slog.Error("TrimCommand: failed to encode trimmed image", "error", err)
		return nil, err
	}
	return out, nil
}

// GetParams returns the typed parameters
func (c *TrimCommand) GetParams() *TrimParams {
	return c.params
}

// contentBounds returns the smallest rectangle holding every pixel that
// differs from the top left pixel by more than tolerance.
func contentBounds(img image.Image, tolerance int) (image.Rectangle, bool) {
	b := img.Bounds()
	if b.Empty() {
		return image.Rectangle{}, false
	}
	bg := img.At(b.Min.X, b.Min.Y)

	// per row: first and last content column, -1 when the row is background
	first := make([]int, b.Dy())
	last := make([]int, b.Dy())
	parallelFor(b.Dy(), func(y int) {
		first[y], last[y] = -1, -1
		for x := 0; x < b.Dx(); x++ {
			if differs(img.At(b.Min.X+x, b.Min.Y+y), bg, tolerance) {
				if first[y] < 0 {
					first[y] = x
				}
				last[y] = x
			}
		}
	})

	minX, minY, maxX, maxY := b.Dx(), -1, -1, -1
	for y := 0; y < b.Dy(); y++ {
		if first[y] < 0 {
			continue
		}
		if minY < 0 {
			minY = y
		}
		maxY = y
		minX = min(minX, first[y])
		maxX = max(maxX, last[y])
	}
	if minY < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(b.Min.X+minX, b.Min.Y+minY, b.Min.X+maxX+1, b.Min.Y+maxY+1), true
}

func differs(a, b color.Color, tolerance int) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	t := uint32(tolerance) * 0x101
	return absDiff(ar, br) > t || absDiff(ag, bg) > t || absDiff(ab, bb) > t || absDiff(aa, ba) > t
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func init() {
	// Register the command in the default registry
	if err := commandstructure.DefaultRegistry.Register("TrimCommand", NewTrimCommand); err != nil {
		panic(fmt.Sprintf("failed to register TrimCommand: %v", err))
	}
}
