package wordcloud

import (
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestOccupancy_SampleOnlyFreeSpot(t *testing.T) {
	// 4x4 grid with only the bottom right 2x2 free
	blocked := make([]bool, 16)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			blocked[y*4+x] = !(x >= 2 && y >= 2)
		}
	}
	occ := newOccupancy(4, 4, blocked)
	rng := rand.New(rand.NewSource(1))

	x, y, ok := occ.samplePosition(2, 2, rng)
	if !ok || x != 2 || y != 2 {
		t.Errorf("samplePosition() = (%d, %d, %v), want (2, 2, true)", x, y, ok)
	}
	if _, _, ok := occ.samplePosition(3, 2, rng); ok {
		t.Error("Expected no room for a 3x2 box")
	}
}

func TestOccupancy_TooLarge(t *testing.T) {
	occ := newOccupancy(4, 4, nil)
	if _, _, ok := occ.samplePosition(5, 1, rand.New(rand.NewSource(0))); ok {
		t.Error("Expected box wider than canvas to be rejected")
	}
}

func TestOccupancy_Mark(t *testing.T) {
	occ := newOccupancy(4, 4, nil)
	glyph := image.NewAlpha(image.Rect(0, 0, 2, 2))
	glyph.Pix[0] = 255

	occ.mark(1, 1, glyph)

	if occ.used(0, 0, 4, 4) != 1 {
		t.Errorf("Expected one used pixel, got %d", occ.used(0, 0, 4, 4))
	}
	if occ.used(1, 1, 1, 1) != 1 {
		t.Error("Expected pixel (1, 1) to be used")
	}
	if occ.used(2, 2, 2, 2) != 0 {
		t.Error("Expected transparent glyph pixels to stay free")
	}
}

func TestBuildMask_Ellipse(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 40, 20
	opts.Mask = MaskEllipse

	blocked, err := buildMask(opts)
	if err != nil {
		t.Fatalf("buildMask() error = %v", err)
	}
	if !blocked[0] {
		t.Error("Expected top left corner to be outside the ellipse")
	}
	if blocked[10*40+20] {
		t.Error("Expected center to be inside the ellipse")
	}
}

func TestBuildMask_None(t *testing.T) {
	blocked, err := buildMask(DefaultOptions())
	if err != nil || blocked != nil {
		t.Errorf("buildMask() = %v, %v; want nil, nil", blocked, err)
	}
}

func TestBuildMask_MissingSVG(t *testing.T) {
	opts := DefaultOptions()
	opts.Mask = "does/not/exist.svg"
	if _, err := buildMask(opts); err == nil {
		t.Error("Expected error for missing mask file")
	}
}

func TestBuildMask_SVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="40" height="20" viewBox="0 0 40 20">` +
		`<rect x="0" y="0" width="20" height="20" fill="black"/></svg>`
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		t.Fatalf("failed to write mask: %v", err)
	}

	opts := DefaultOptions()
	opts.Width, opts.Height = 40, 20
	opts.Mask = path

	blocked, err := buildMask(opts)
	if err != nil {
		t.Fatalf("buildMask() error = %v", err)
	}
	if blocked[10*40+5] {
		t.Error("Expected painted left half to be free")
	}
	if !blocked[10*40+35] {
		t.Error("Expected unpainted right half to be blocked")
	}
}
