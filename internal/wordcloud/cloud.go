package wordcloud

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// Cloud is a finished layout. The bitmap is drawn on demand.
type Cloud struct {
	width, height int
	background    image.Image
	placements    []Placement
}

// Placements returns the drawn words in placement order.
func (c *Cloud) Placements() []Placement {
	out := make([]Placement, len(c.placements))
	copy(out, c.placements)
	return out
}

// Image draws the cloud onto a fresh RGBA canvas.
func (c *Cloud) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(img, img.Bounds(), c.background, image.Point{}, draw.Src)
	for _, p := range c.placements {
		draw.DrawMask(img, p.Bounds, image.NewUniform(p.Color), image.Point{}, p.glyph, image.Point{}, draw.Over)
	}
	return img
}

// Encode writes the cloud as PNG.
func (c *Cloud) Encode(w io.Writer) error {
	if err := png.Encode(w, c.Image()); err != nil {
		return fmt.Errorf("failed to encode word cloud as PNG: %w", err)
	}
	return nil
}

// PNG returns the PNG encoded cloud.
func (c *Cloud) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePNG stores encoded PNG data at path, creating parent directories and
// replacing any previous file.
func writePNG(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write word cloud: %w", err)
	}
	return nil
}
