package wordcloud

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// Colormap names.
const (
	ColormapViridis = "viridis"
	ColormapPlasma  = "plasma"
)

// ErrUnknownColormap is returned for a colormap name that is not built in.
var ErrUnknownColormap = errors.New("unknown colormap")

// colormap is a list of evenly spaced anchor colors.
type colormap []color.RGBA

var colormaps = map[string]colormap{
	ColormapViridis: {
		{68, 1, 84, 255}, {72, 40, 120, 255}, {62, 73, 137, 255},
		{49, 104, 142, 255}, {38, 130, 142, 255}, {31, 158, 137, 255},
		{53, 183, 121, 255}, {110, 206, 88, 255}, {253, 231, 37, 255},
	},
	ColormapPlasma: {
		{13, 8, 135, 255}, {75, 3, 161, 255}, {125, 3, 168, 255},
		{168, 34, 150, 255}, {203, 70, 121, 255}, {229, 107, 93, 255},
		{248, 148, 65, 255}, {253, 195, 40, 255}, {240, 249, 33, 255},
	},
}

func lookupColormap(name string) (colormap, error) {
	if name == "" {
		name = ColormapViridis
	}
	cm, ok := colormaps[name]
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrUnknownColormap, name)
	}
	return cm, nil
}

// At returns the linearly interpolated color at t in [0, 1].
func (c colormap) At(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(c)-1)
	i := int(pos)
	if i >= len(c)-1 {
		return c[len(c)-1]
	}
	frac := pos - float64(i)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*frac))
	}
	return color.RGBA{
		R: lerp(c[i].R, c[i+1].R),
		G: lerp(c[i].G, c[i+1].G),
		B: lerp(c[i].B, c[i+1].B),
		A: 255,
	}
}
