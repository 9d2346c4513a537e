package wordcloud

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Width, opts.Height = 200, 100
	return opts
}

var sampleFrequencies = Frequencies{
	"python":           9,
	"machine learning": 6,
	"SQL":              4,
	"statistics":       3,
	"keras":            2,
	"go":               1,
}

func TestRenderer_Deterministic(t *testing.T) {
	first, err := NewRenderer(smallOptions())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	second, err := NewRenderer(smallOptions())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	a, err := first.Render(sampleFrequencies)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b, err := second.Render(sampleFrequencies)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	pa, pb := a.Placements(), b.Placements()
	if len(pa) != len(pb) {
		t.Fatalf("Expected same number of placements, got %d and %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i].Word != pb[i].Word || pa[i].Bounds != pb[i].Bounds ||
			pa[i].Color != pb[i].Color || pa[i].Vertical != pb[i].Vertical {
			t.Errorf("placement %d differs: %+v vs %+v", i, pa[i], pb[i])
		}
	}

	pngA, err := a.PNG()
	if err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	pngB, err := b.PNG()
	if err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	if !bytes.Equal(pngA, pngB) {
		t.Error("Expected identical PNG output for identical input")
	}
}

func TestRenderer_LargestFirstAndInside(t *testing.T) {
	r, err := NewRenderer(smallOptions())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	cloud, err := r.Render(sampleFrequencies)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	placements := cloud.Placements()
	if len(placements) == 0 {
		t.Fatal("Expected at least one placement")
	}
	if placements[0].Word != "python" {
		t.Errorf("Expected most frequent word first, got %q", placements[0].Word)
	}

	canvas := image.Rect(0, 0, 200, 100)
	for i, p := range placements {
		if !p.Bounds.In(canvas) {
			t.Errorf("placement %q at %v is outside the canvas", p.Word, p.Bounds)
		}
		if i > 0 && p.FontSize > placements[i-1].FontSize {
			t.Errorf("Expected non-increasing font sizes, %q has %d after %d",
				p.Word, p.FontSize, placements[i-1].FontSize)
		}
	}

	img := cloud.Image()
	if img.Bounds() != canvas {
		t.Errorf("Image() bounds = %v, want %v", img.Bounds(), canvas)
	}
}

func TestRenderer_MaxWords(t *testing.T) {
	opts := smallOptions()
	opts.MaxWords = 2
	r, err := NewRenderer(opts)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	cloud, err := r.Render(sampleFrequencies)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if n := len(cloud.Placements()); n > 2 {
		t.Errorf("Expected at most 2 placements, got %d", n)
	}
}

func TestRenderer_Empty(t *testing.T) {
	r, err := NewRenderer(smallOptions())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	if _, err := r.Render(Frequencies{}); !errors.Is(err, ErrEmptyFrequencies) {
		t.Errorf("Expected ErrEmptyFrequencies, got %v", err)
	}
}

func TestNewRenderer_InvalidOptions(t *testing.T) {
	opts := smallOptions()
	opts.Width = -1
	if _, err := NewRenderer(opts); err == nil {
		t.Error("Expected error for invalid options")
	}
}

func TestRotate90(t *testing.T) {
	src := image.NewAlpha(image.Rect(0, 0, 3, 2))
	src.SetAlpha(2, 0, color.Alpha{A: 255})

	dst := rotate90(src)
	if dst.Bounds() != image.Rect(0, 0, 2, 3) {
		t.Fatalf("rotate90() bounds = %v, want 2x3", dst.Bounds())
	}
	// the top right pixel ends up top left
	if dst.AlphaAt(0, 0).A != 255 {
		t.Error("Expected top right pixel to move to the top left")
	}
	if dst.AlphaAt(1, 2).A != 0 {
		t.Error("Expected bottom right of rotated image to be empty")
	}
}
