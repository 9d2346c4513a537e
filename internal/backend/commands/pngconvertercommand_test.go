package commands

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/jo-hoe/certshowcase/internal/backend/commandstructure"
)

const testIconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32"><rect width="32" height="32" fill="red"/></svg>`

func TestNewPngConverterCommand(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
	}{
		{name: "No parameters", params: map[string]any{}},
		{name: "Explicit size", params: map[string]any{"width": 64, "height": 64}},
		{name: "Only width", params: map[string]any{"width": 64}, wantErr: true},
		{name: "Negative size", params: map[string]any{"width": -1, "height": -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, err := NewPngConverterCommand(tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if err == nil && command.Name() != "PngConverterCommand" {
				t.Errorf("Expected name 'PngConverterCommand', got '%s'", command.Name())
			}
		})
	}
}

func TestPngConverterCommand_Execute_InvalidImage(t *testing.T) {
	command, err := NewPngConverterCommand(map[string]any{})
	if err != nil {
		t.Fatalf("Failed to create command: %v", err)
	}

	if _, err := command.Execute([]byte("not a valid image")); err == nil {
		t.Error("Expected error for invalid image data, got nil")
	}
}

func TestPngConverterCommand_Execute_AlreadyPng(t *testing.T) {
	command, err := NewPngConverterCommand(map[string]any{})
	if err != nil {
		t.Fatalf("Failed to create command: %v", err)
	}

	input := testPNG(t, 4, 4)
	result, err := command.Execute(input)
	if err != nil {
		t.Fatalf("Expected no error for PNG input, got %v", err)
	}
	if !bytes.Equal(result, input) {
		t.Error("Expected PNG input to be returned unchanged")
	}
}

func TestPngConverterCommand_Execute_JPEG(t *testing.T) {
	command, err := NewPngConverterCommand(map[string]any{})
	if err != nil {
		t.Fatalf("Failed to create command: %v", err)
	}

	result, err := command.Execute(testJPEG(t, 10, 6))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("Result is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 6 {
		t.Errorf("Expected 10x6, got %v", img.Bounds())
	}
}

func TestPngConverterCommand_RenderSVG(t *testing.T) {
	tests := []struct {
		name          string
		params        map[string]any
		width, height int
	}{
		{name: "View box size", params: map[string]any{}, width: 32, height: 32},
		{name: "Explicit size", params: map[string]any{"width": 64, "height": 48}, width: 64, height: 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, err := NewPngConverterCommand(tt.params)
			if err != nil {
				t.Fatalf("Failed to create command: %v", err)
			}

			result, err := command.Execute([]byte(testIconSVG))
			if err != nil {
				t.Fatalf("Execute failed for SVG: %v", err)
			}

			img, err := png.Decode(bytes.NewReader(result))
			if err != nil {
				t.Fatalf("Rendered SVG result is not valid PNG: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.width || b.Dy() != tt.height {
				t.Fatalf("Expected PNG dimensions %dx%d, got %dx%d", tt.width, tt.height, b.Dx(), b.Dy())
			}
			r, _, _, a := img.At(b.Dx()/2, b.Dy()/2).RGBA()
			if r>>8 < 200 || a>>8 < 200 {
				t.Errorf("Expected red center pixel, got r=%d a=%d", r>>8, a>>8)
			}
		})
	}
}

func TestIsSVGData(t *testing.T) {
	if !isSVGData([]byte(testIconSVG)) {
		t.Error("Expected SVG to be detected")
	}
	if isSVGData(testPNG(t, 2, 2)) {
		t.Error("Expected PNG not to be detected as SVG")
	}
	if isSVGData(nil) {
		t.Error("Expected empty data not to be detected as SVG")
	}
}

func TestDefaultRegistry_HasCommands(t *testing.T) {
	expected := []string{
		"ImageConverterCommand",
		"PngConverterCommand",
		"ScaleCommand",
		"TrimCommand",
	}
	names := commandstructure.DefaultRegistry.GetRegisteredNames()
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, names)
			break
		}
	}
}
