package commands

import (
	"fmt"
	"log/slog"

	"github.com/jo-hoe/certshowcase/internal/backend/commandstructure"
)

// ImageConverterParams represents typed parameters for image converter command
type ImageConverterParams struct {
	TargetType string
	// Quality applies to JPEG output only.
	Quality int
}

// NewImageConverterParamsFromMap creates ImageConverterParams from a generic map
func NewImageConverterParamsFromMap(params map[string]any) (*ImageConverterParams, error) {
	targetType := normalizeFormat(commandstructure.GetStringParam(params, "targetType", "png"))

	switch targetType {
	case "png", "jpeg", "gif":
	default:
		return nil, fmt.Errorf("invalid target type: %s (must be 'png', 'jpeg', 'jpg', or 'gif')", targetType)
	}

	quality := commandstructure.GetIntParam(params, "quality", defaultJpegQuality)
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", quality)
	}

	return &ImageConverterParams{
		TargetType: targetType,
		Quality:    quality,
	}, nil
}

// ImageConverterCommand handles image format conversion
type ImageConverterCommand struct {
	name   string
	params *ImageConverterParams
}

// NewImageConverterCommand creates a new image converter command from configuration parameters
func NewImageConverterCommand(params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewImageConverterParamsFromMap(params)
	if err != nil {
		return nil, err
	}

	return &ImageConverterCommand{
		name:   "ImageConverterCommand",
		params: typedParams,
	}, nil
}

// Name returns the command name
func (c *ImageConverterCommand) Name() string {
	return c.name
}

// Execute converts the image to the target format
func (c *ImageConverterCommand) Execute(imageData []byte) ([]byte, error) {
	img, currentFormat, err := decodeImage(imageData)
	if err != nil {
		slog.Error("ImageConverterCommand: failed to decode image", "error", err)
		return nil, err
	}

	slog.Debug("ImageConverterCommand: image decoded",
		"current_format", currentFormat,
		"target_format", c.params.TargetType)

	// If already in target format, verify signature; only re-encode if signature is incorrect
	if currentFormat == c.params.TargetType {
		if hasCorrectSignature(imageData, c.params.TargetType) {
			slog.Debug("ImageConverterCommand: already in target format, no conversion needed")
			return imageData, nil
		}
		slog.Warn("ImageConverterCommand: target format matches but signature incorrect, re-encoding to fix header",
			"format", c.params.TargetType)
	}

	out, err := encodeImage(img, c.params.TargetType, c.params.Quality)
	if err != nil {
		slog.Error("ImageConverterCommand: failed to encode image",
			"target_format", c.params.TargetType,
			"error", err)
		return nil, err
	}

	slog.Debug("ImageConverterCommand: conversion complete",
		"output_size_bytes", len(out),
		"output_format", c.params.TargetType)

	return out, nil
}

// GetTargetType returns the configured target type
func (c *ImageConverterCommand) GetTargetType() string {
	return c.params.TargetType
}

// GetParams returns the typed parameters
func (c *ImageConverterCommand) GetParams() *ImageConverterParams {
	return c.params
}

func init() {
	// Register the command in the default registry
	if err := commandstructure.DefaultRegistry.Register("ImageConverterCommand", NewImageConverterCommand); err != nil {
		panic(fmt.Sprintf("failed to register ImageConverterCommand: %v", err))
	}
}
