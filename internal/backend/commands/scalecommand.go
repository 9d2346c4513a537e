package commands

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/jo-hoe/certshowcase/internal/backend/commandstructure"
	"golang.org/x/image/draw"
)

// ScaleParams represents typed parameters for scale command
type ScaleParams struct {
	Height int
	Width  int
	// Upscale allows images smaller than the box to grow.
	Upscale bool
	Quality int
}

// NewScaleParamsFromMap creates ScaleParams from a generic map
func NewScaleParamsFromMap(params map[string]any) (*ScaleParams, error) {
	// Validate required parameters exist
	if err := commandstructure.ValidateRequiredParams(params, []string{"height", "width"}); err != nil {
		return nil, err
	}

	height := commandstructure.GetIntParam(params, "height", 0)
	width := commandstructure.GetIntParam(params, "width", 0)

	// Validate dimensions are positive
	if height <= 0 {
		return nil, fmt.Errorf("height must be positive, got %d", height)
	}
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}

	return &ScaleParams{
		Height:  height,
		Width:   width,
		Upscale: commandstructure.GetBoolParam(params, "upscale", false),
		Quality: commandstructure.GetIntParam(params, "quality", defaultJpegQuality),
	}, nil
}

// ScaleCommand fits an image into a width x height box, keeping its aspect
// ratio and its encoding format.
type ScaleCommand struct {
	name   string
	params *ScaleParams
}

// NewScaleCommand creates a new scale command from configuration parameters
func NewScaleCommand(params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewScaleParamsFromMap(params)
	if err != nil {
		return nil, err
	}

	return &ScaleCommand{
		name:   "ScaleCommand",
		params: typedParams,
	}, nil
}

// Name returns the command name
func (c *ScaleCommand) Name() string {
	return c.name
}

// Execute scales the image into the configured box
func (c *ScaleCommand) Execute(imageData []byte) ([]byte, error) {
	img, format, err := decodeImage(imageData)
	if err != nil {
		slog.Error("ScaleCommand: failed to decode image", "error", err)
		return nil, err
	}

	bounds := img.Bounds()
	originalWidth, originalHeight := bounds.Dx(), bounds.Dy()
	scaledWidth, scaledHeight := computeScaledDimensions(originalWidth, originalHeight, c.params.Width, c.params.Height)

	if !c.params.Upscale && (scaledWidth >= originalWidth || scaledHeight >= originalHeight) {
		slog.Debug("ScaleCommand: image already fits; skipping scaling",
			"width", originalWidth,
			"height", originalHeight)
		return imageData, nil
	}
	if scaledWidth == originalWidth && scaledHeight == originalHeight {
		return imageData, nil
	}

	slog.Debug("ScaleCommand: scaling",
		"format", format,
		"original_width", originalWidth,
		"original_height", originalHeight,
		"scaled_width", scaledWidth,
		"scaled_height", scaledHeight)

	dst := image.NewRGBA(image.Rect(0, 0, scaledWidth, scaledHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	out, err := encodeImage(dst, format, c.params.Quality)
	if err != nil {
		slog.Error("ScaleCommand: failed to encode scaled image", "error", err)
		return nil, err
	}

	slog.Debug("ScaleCommand: scaling complete",
		"output_size_bytes", len(out))

	return out, nil
}

// GetParams returns the typed parameters
func (c *ScaleCommand) GetParams() *ScaleParams {
	return c.params
}

// computeScaledDimensions returns the largest size with the original aspect
// ratio that fits the target box. Neither side drops below one pixel.
func computeScaledDimensions(originalWidth, originalHeight, targetWidth, targetHeight int) (int, int) {
	originalAspect := float64(originalWidth) / float64(originalHeight)
	targetAspect := float64(targetWidth) / float64(targetHeight)
	var w, h int
	if originalAspect > targetAspect {
		// Original is wider - scale to target width
		w = targetWidth
		h = int(float64(targetWidth) / originalAspect)
	} else {
		// Original is taller - scale to target height
		h = targetHeight
		w = int(float64(targetHeight) * originalAspect)
	}
	return max(w, 1), max(h, 1)
}

func init() {
	// Register the command in the default registry
	if err := commandstructure.DefaultRegistry.Register("ScaleCommand", NewScaleCommand); err != nil {
		panic(fmt.Sprintf("failed to register ScaleCommand: %v", err))
	}
}
