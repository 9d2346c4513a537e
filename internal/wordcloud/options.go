package wordcloud

import (
	"fmt"
	"image/color"
)

// Options controls the size and layout of a rendered cloud.
type Options struct {
	Width      int
	Height     int
	Background color.Color
	MaxWords   int
	// MaxFontSize of 0 means the image height.
	MaxFontSize     int
	MinFontSize     int
	FontStep        int
	RelativeScaling float64
	// PreferHorizontal is the chance that a word is tried horizontally first.
	PreferHorizontal float64
	Margin           int
	Seed             int64
	Colormap         string
	// Mask is empty, "ellipse" or the path of an SVG file whose painted
	// area is where words may go.
	Mask string
	// FontPath optionally points at a TrueType or OpenType font. The Go
	// regular font is used otherwise.
	FontPath string
}

// DefaultOptions returns a 400x200 white cloud with up to 200 words.
func DefaultOptions() Options {
	return Options{
		Width:            400,
		Height:           200,
		Background:       color.White,
		MaxWords:         200,
		MinFontSize:      4,
		FontStep:         1,
		RelativeScaling:  0.5,
		PreferHorizontal: 0.9,
		Margin:           2,
		Seed:             0,
		Colormap:         ColormapViridis,
	}
}

// Validate checks that the options describe a drawable cloud.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", o.Width, o.Height)
	}
	if o.MaxWords <= 0 {
		return fmt.Errorf("maxWords must be positive, got %d", o.MaxWords)
	}
	if o.MinFontSize <= 0 {
		return fmt.Errorf("minFontSize must be positive, got %d", o.MinFontSize)
	}
	if o.MaxFontSize != 0 && o.MaxFontSize < o.MinFontSize {
		return fmt.Errorf("maxFontSize %d is below minFontSize %d", o.MaxFontSize, o.MinFontSize)
	}
	if o.FontStep <= 0 {
		return fmt.Errorf("fontStep must be positive, got %d", o.FontStep)
	}
	if o.RelativeScaling < 0 || o.RelativeScaling > 1 {
		return fmt.Errorf("relativeScaling must be within [0, 1], got %g", o.RelativeScaling)
	}
	if o.PreferHorizontal < 0 || o.PreferHorizontal > 1 {
		return fmt.Errorf("preferHorizontal must be within [0, 1], got %g", o.PreferHorizontal)
	}
	if o.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d", o.Margin)
	}
	if _, err := lookupColormap(o.Colormap); err != nil {
		return err
	}
	return nil
}

func (o Options) maxFontSize() int {
	if o.MaxFontSize > 0 {
		return o.MaxFontSize
	}
	return o.Height
}

func (o Options) background() color.Color {
	if o.Background == nil {
		return color.White
	}
	return o.Background
}
