package commands

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func TestNewScaleCommand_Params(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
	}{
		{name: "valid", params: map[string]any{"width": 100, "height": 50}},
		{name: "yaml floats", params: map[string]any{"width": 100.0, "height": 50.0}},
		{name: "missing height", params: map[string]any{"width": 100}, wantErr: true},
		{name: "zero width", params: map[string]any{"width": 0, "height": 50}, wantErr: true},
		{name: "negative height", params: map[string]any{"width": 10, "height": -5}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScaleCommand(tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewScaleCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScaleCommand_DownscalesKeepingAspectAndFormat(t *testing.T) {
	command, err := NewScaleCommand(map[string]any{"width": 50, "height": 50})
	if err != nil {
		t.Fatalf("Failed to create command: %v", err)
	}

	out, err := command.Execute(testJPEG(t, 200, 100))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !IsJPEG(out) {
		t.Fatal("Expected JPEG input to stay JPEG")
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Expected valid JPEG: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 50, 25) {
		t.Errorf("Expected 50x25, got %v", img.Bounds())
	}
}

func TestScaleCommand_NoUpscaleByDefault(t *testing.T) {
	command, err := NewScaleCommand(map[string]any{"width": 500, "height": 500})
	if err != nil {
		t.Fatalf("Failed to create command: %v", err)
	}

	input := testPNG(t, 40, 20)
	out, err := command.Execute(input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Error("Expected small image to be returned unchanged")
	}
}

func TestScaleCommand_Upscale(t *testing.T) {
	command, err := NewScaleCommand(map[string]any{"width": 80, "height": 80, "upscale": true})
	if err != nil {
		t.Fatalf("Failed to create command: %v", err)
	}

	out, err := command.Execute(testPNG(t, 40, 20))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Expected valid PNG: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 80, 40) {
		t.Errorf("Expected 80x40, got %v", img.Bounds())
	}
}

func TestComputeScaledDimensions(t *testing.T) {
	tests := []struct {
		ow, oh, tw, th int
		ww, wh         int
	}{
		{200, 100, 50, 50, 50, 25},
		{100, 200, 50, 50, 25, 50},
		{100, 100, 30, 60, 30, 30},
		{1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := computeScaledDimensions(tt.ow, tt.oh, tt.tw, tt.th)
		if w != tt.ww || h != tt.wh {
			t.Errorf("computeScaledDimensions(%d, %d, %d, %d) = %dx%d, want %dx%d",
				tt.ow, tt.oh, tt.tw, tt.th, w, h, tt.ww, tt.wh)
		}
	}
}
