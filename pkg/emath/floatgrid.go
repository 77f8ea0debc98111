package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
)

// A FloatGrid is a grid of floats, stored row-major, with some
// operations. It is the in-memory form of a sensor frame: x indexes
// columns, y indexes rows, and row 0 is the top of the frame.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFromRows builds a grid from a slice of rows; all rows
// must have the same length.
func NewFloatGridFromRows(rows [][]float64) (FloatGrid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return FloatGrid{}, fmt.Errorf("empty grid")
	}
	g := NewFloatGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.stride {
			return FloatGrid{}, fmt.Errorf("row %d has %d values, want %d", y, len(row), g.stride)
		}
		copy(g.values[y*g.stride:], row)
	}
	return g, nil
}

func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Bounds() image.Rectangle { return image.Rect(0, 0, fg.Dx(), fg.Dy()) }
func (fg *FloatGrid)IsEmpty() bool           { return len(fg.values) == 0 }

func (fg *FloatGrid)Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 *FloatGrid)Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

// Values exposes the backing slice, row-major.
func (fg *FloatGrid)Values() []float64 { return fg.values }

// DownSampleBy averages each factor x factor block into a single
// value. Trailing rows/columns that don't fill a whole block are
// dropped.
func (g1 *FloatGrid)DownSampleBy(factor int) FloatGrid {
	if factor <= 1 {
		return *g1.Copy()
	}

	width := g1.Dx() / factor
	height := g1.Dy() / factor
	g2 := NewFloatGrid(width, height)
	norm := float64(factor * factor)

	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			p := 0.0
			for dy:=0; dy<factor; dy++ {
				for dx:=0; dx<factor; dx++ {
					p += g1.Get(factor*x+dx, factor*y+dy)
				}
			}
			g2.Set(x, y, p/norm)
		}
	}

	return g2
}

// Offset adds `delta` to every value, and floors the result at `floor`.
func (fg *FloatGrid)Offset(delta, floor float64) {
	for i:=0; i<len(fg.values); i++ {
		v := fg.values[i] + delta
		if v < floor { v = floor }
		fg.values[i] = v
	}
}

func (fg *FloatGrid)MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0  * min

	for i:=0 ; i<len(fg.values) ; i++ {
		if fg.values[i] > max { max = fg.values[i] }
		if fg.values[i] < min { min = fg.values[i] }
	}
	return min, max
}

func (fg *FloatGrid)Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToGray renders the grid as a grayscale image. If logScale is set,
// values are compressed with log10(v + max) first, which is how
// spectrograph frames are usually inspected (a few bright lines, lots
// of faint ones).
func (fg *FloatGrid)ToGray(logScale bool) *image.RGBA64 {
	min, max := fg.MinMax()
	xform := func(v float64) float64 { return v }
	if logScale {
		offset := math.Max(math.Abs(max), 1e-12)
		xform = func(v float64) float64 { return math.Log10(math.Max(v + offset, 1e-12)) }
	}
	lo, hi := xform(min), xform(max)

	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			lum := 0.0
			if hi > lo {
				lum = (xform(fg.Get(x,y)) - lo) / (hi - lo)
			}
			gray := uint16(GammaExpand_F64(lum) * 65535.0)
			img.Set(x, y, color.RGBA64{gray, gray, gray, 0xFFFF})
		}
	}
	return img
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision
func (fg *FloatGrid)ToImg(title, filename string) error {
	dc := gg.NewContextForImage(fg.ToGray(false))
	dc.SetRGB(1,1,1)
	dc.DrawString(title, 50, 50)
	return dc.SavePNG(filename)
}
