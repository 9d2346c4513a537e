package wordcloud

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Placement is one word drawn on the cloud.
type Placement struct {
	Word     string
	Count    int
	FontSize int
	Vertical bool
	// Bounds is the glyph box in image coordinates.
	Bounds image.Rectangle
	Color  color.RGBA

	glyph *image.Alpha
}

// Renderer lays out frequency tables. A Renderer is safe for concurrent use;
// each Render call works on its own font faces and canvas.
type Renderer struct {
	opts     Options
	font     *opentype.Font
	mask     []bool
	colormap colormap
}

// NewRenderer validates opts and prepares the font and mask.
func NewRenderer(opts Options) (*Renderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid word cloud options: %w", err)
	}

	ttf := goregular.TTF
	if opts.FontPath != "" {
		data, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
		ttf = data
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	mask, err := buildMask(opts)
	if err != nil {
		return nil, err
	}
	cm, err := lookupColormap(opts.Colormap)
	if err != nil {
		return nil, err
	}

	return &Renderer{opts: opts, font: f, mask: mask, colormap: cm}, nil
}

// Options returns the options the renderer was built with.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render places the most frequent words, largest first. The same table and
// options always produce the same cloud.
func (r *Renderer) Render(freqs Frequencies) (*Cloud, error) {
	top := freqs.Top(r.opts.MaxWords)
	if len(top) == 0 {
		return nil, ErrEmptyFrequencies
	}

	rng := rand.New(rand.NewSource(r.opts.Seed))
	occ := newOccupancy(r.opts.Width, r.opts.Height, r.mask)
	faces := make(map[int]font.Face)
	defer func() {
		for _, face := range faces {
			_ = face.Close()
		}
	}()

	margin := r.opts.Margin
	fontSize := r.opts.maxFontSize()
	maxCount := float64(top[0].Count)
	lastFreq := 1.0
	placements := make([]Placement, 0, len(top))

words:
	for _, wc := range top {
		freq := float64(wc.Count) / maxCount
		if rs := r.opts.RelativeScaling; rs != 0 {
			fontSize = int(math.Round((rs*freq/lastFreq + (1 - rs)) * float64(fontSize)))
		}

		vertical := rng.Float64() >= r.opts.PreferHorizontal
		triedOther := false
		var glyph *image.Alpha
		var x, y int
		for {
			if fontSize < r.opts.MinFontSize {
				break
			}
			face, err := r.face(faces, fontSize)
			if err != nil {
				return nil, err
			}
			bounds, w, h := measure(face, wc.Word)
			if w <= 0 || h <= 0 {
				slog.Debug("wordcloud: skipping word without visible glyphs", "word", wc.Word)
				continue words
			}
			if vertical {
				w, h = h, w
			}

			ok := false
			if w+margin <= r.opts.Width && h+margin <= r.opts.Height {
				x, y, ok = occ.samplePosition(w+margin, h+margin, rng)
			}
			if ok {
				glyph = rasterize(face, wc.Word, bounds)
				if vertical {
					glyph = rotate90(glyph)
				}
				break
			}

			if !triedOther && r.opts.PreferHorizontal < 1 {
				vertical = !vertical
				triedOther = true
			} else {
				fontSize -= r.opts.FontStep
				vertical = false
			}
		}

		if fontSize < r.opts.MinFontSize {
			// every later word would be smaller still
			break
		}

		x += margin / 2
		y += margin / 2
		occ.mark(x, y, glyph)
		placements = append(placements, Placement{
			Word:     wc.Word,
			Count:    wc.Count,
			FontSize: fontSize,
			Vertical: vertical,
			Bounds:   image.Rect(x, y, x+glyph.Bounds().Dx(), y+glyph.Bounds().Dy()),
			Color:    r.colormap.At(rng.Float64()),
			glyph:    glyph,
		})
		lastFreq = freq
	}

	slog.Debug("wordcloud: rendered",
		"candidates", len(top),
		"placed", len(placements),
		"width", r.opts.Width,
		"height", r.opts.Height)

	return &Cloud{
		width:      r.opts.Width,
		height:     r.opts.Height,
		background: image.NewUniform(r.opts.background()),
		placements: placements,
	}, nil
}

func (r *Renderer) face(faces map[int]font.Face, size int) (font.Face, error) {
	if face, ok := faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face of size %d: %w", size, err)
	}
	faces[size] = face
	return face, nil
}

// measure returns the ink bounds of word and their pixel size.
func measure(face font.Face, word string) (fixed.Rectangle26_6, int, int) {
	bounds, _ := font.BoundString(face, word)
	w := bounds.Max.X.Ceil() - bounds.Min.X.Floor()
	h := bounds.Max.Y.Ceil() - bounds.Min.Y.Floor()
	return bounds, w, h
}

// rasterize draws word so that its ink box starts at the origin.
func rasterize(face font.Face, word string, bounds fixed.Rectangle26_6) *image.Alpha {
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	img := image.NewAlpha(image.Rect(0, 0, bounds.Max.X.Ceil()-minX, bounds.Max.Y.Ceil()-minY))
	d := font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(-minX), Y: fixed.I(-minY)},
	}
	d.DrawString(word)
	return img
}

// rotate90 turns src a quarter counter-clockwise so that vertical words read
// bottom to top.
func rotate90(src *image.Alpha) *image.Alpha {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewAlpha(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetAlpha(y, w-1-x, src.AlphaAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
