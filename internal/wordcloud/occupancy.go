package wordcloud

import (
	"image"
	"math/rand"
)

// occupancy tracks used pixels with a summed-area table so that a free
// rectangle can be tested in constant time.
type occupancy struct {
	width, height int
	cells         []bool
	// integral has (height+1)*(width+1) entries; row 0 and column 0 are zero.
	integral []int
}

func newOccupancy(width, height int, blocked []bool) *occupancy {
	o := &occupancy{
		width:    width,
		height:   height,
		cells:    make([]bool, width*height),
		integral: make([]int, (width+1)*(height+1)),
	}
	if blocked != nil {
		copy(o.cells, blocked)
	}
	o.rebuild(0)
	return o
}

// rebuild recomputes the summed-area table from pixel row fromRow down.
func (o *occupancy) rebuild(fromRow int) {
	stride := o.width + 1
	for y := fromRow; y < o.height; y++ {
		rowSum := 0
		for x := 0; x < o.width; x++ {
			if o.cells[y*o.width+x] {
				rowSum++
			}
			o.integral[(y+1)*stride+x+1] = o.integral[y*stride+x+1] + rowSum
		}
	}
}

// used returns the number of occupied pixels in the rows x cols box at (x, y).
func (o *occupancy) used(x, y, cols, rows int) int {
	stride := o.width + 1
	return o.integral[(y+rows)*stride+x+cols] -
		o.integral[y*stride+x+cols] -
		o.integral[(y+rows)*stride+x] +
		o.integral[y*stride+x]
}

// samplePosition picks uniformly among all free positions for a box of the
// given size.
func (o *occupancy) samplePosition(cols, rows int, rng *rand.Rand) (int, int, bool) {
	if cols > o.width || rows > o.height || cols <= 0 || rows <= 0 {
		return 0, 0, false
	}

	hits := 0
	for y := 0; y <= o.height-rows; y++ {
		for x := 0; x <= o.width-cols; x++ {
			if o.used(x, y, cols, rows) == 0 {
				hits++
			}
		}
	}
	if hits == 0 {
		return 0, 0, false
	}

	goal := rng.Intn(hits)
	for y := 0; y <= o.height-rows; y++ {
		for x := 0; x <= o.width-cols; x++ {
			if o.used(x, y, cols, rows) != 0 {
				continue
			}
			if goal == 0 {
				return x, y, true
			}
			goal--
		}
	}
	return 0, 0, false
}

// mark occupies every pixel the glyph covers when drawn with its top left
// corner at (x, y).
func (o *occupancy) mark(x, y int, glyph *image.Alpha) {
	b := glyph.Bounds()
	for gy := 0; gy < b.Dy(); gy++ {
		py := y + gy
		if py < 0 || py >= o.height {
			continue
		}
		for gx := 0; gx < b.Dx(); gx++ {
			px := x + gx
			if px < 0 || px >= o.width {
				continue
			}
			if glyph.AlphaAt(b.Min.X+gx, b.Min.Y+gy).A > 0 {
				o.cells[py*o.width+px] = true
			}
		}
	}
	if y < 0 {
		y = 0
	}
	if y < o.height {
		o.rebuild(y)
	}
}
