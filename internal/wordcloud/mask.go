package wordcloud

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// MaskEllipse restricts words to the largest ellipse that fits the canvas.
const MaskEllipse = "ellipse"

// buildMask returns the cells words may not use, or nil when the whole
// canvas is free.
func buildMask(opts Options) ([]bool, error) {
	switch opts.Mask {
	case "":
		return nil, nil
	case MaskEllipse:
		return blockedOutside(ellipseShape(opts.Width, opts.Height)), nil
	default:
		shape, err := svgShape(opts.Mask, opts.Width, opts.Height)
		if err != nil {
			return nil, err
		}
		return blockedOutside(shape), nil
	}
}

func ellipseShape(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetColor(color.Black)
	rasterx.AddEllipse(float64(w)/2, float64(h)/2, float64(w)/2, float64(h)/2, 0, filler)
	filler.Draw()
	return img
}

func svgShape(path string, w, h int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("wordcloud: failed to close mask file", "path", path, "error", cerr)
		}
	}()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mask SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return img, nil
}

// blockedOutside marks every pixel that the shape did not paint.
func blockedOutside(shape *image.RGBA) []bool {
	b := shape.Bounds()
	blocked := make([]bool, b.Dx()*b.Dy())
	free := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if shape.RGBAAt(b.Min.X+x, b.Min.Y+y).A < 128 {
				blocked[y*b.Dx()+x] = true
			} else {
				free++
			}
		}
	}
	slog.Debug("wordcloud: built mask", "width", b.Dx(), "height", b.Dy(), "free_pixels", free)
	return blocked
}
