// Package overlay draws the diagnostic view of a sensor frame: where
// each diffraction order runs, and where the reference lines ought to
// land in it. If the markers sit on the bright spots, the instrument
// parameters are right.
package overlay

import(
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/echelle/pkg/echelle"
	"github.com/abworrall/echelle/pkg/emath"
)

type Options struct {
	LogScale     bool
	TraceSamples int     // points per order trace
	LineWidth    float64
	MarkerRadius float64 // for major lines; smaller classes are drawn smaller
	Labels       bool    // write the order number at the left end of each trace
}

func DefaultOptions() Options {
	return Options{
		LogScale:     true,
		TraceSamples: echelle.DefaultInverseSamples,
		LineWidth:    1.5,
		MarkerRadius: 8,
		Labels:       true,
	}
}

// OrderColor spreads the orders around the hue wheel.
func OrderColor(i, n int) colorful.Color {
	if n < 1 { n = 1 }
	return colorful.Hsv(360.0 * float64(i) / float64(n), 0.8, 1.0)
}

// toPixel maps normalized sensor coords onto the image. y=0 is the
// bottom of the frame, same convention the extractor uses.
func toPixel(x, y float64, bounds image.Rectangle) (float64, float64) {
	return x * float64(bounds.Dx()), (1.0 - y) * float64(bounds.Dy())
}

// Render draws the frame in grayscale with a colored trace per order,
// and an open circle per marker.
func Render(img *emath.FloatGrid, g echelle.Geometry, orders []int, markers []echelle.Marker, opts Options) (image.Image, error) {
	if img.IsEmpty() {
		return nil, fmt.Errorf("overlay: empty image")
	}
	bounds := img.Bounds()
	dc := gg.NewContextForImage(img.ToGray(opts.LogScale))
	dc.SetLineWidth(opts.LineWidth)

	colorOf := map[int]colorful.Color{}
	for i, order := range orders {
		col := OrderColor(i, len(orders))
		colorOf[order] = col

		xs, ys, err := echelle.OrderTrace(g, order, opts.TraceSamples)
		if err != nil {
			return nil, err
		}
		if len(xs) < 2 {
			continue
		}

		dc.SetColor(col)
		for j := range xs {
			px, py := toPixel(xs[j], ys[j], bounds)
			if j == 0 {
				dc.MoveTo(px, py)
			} else {
				dc.LineTo(px, py)
			}
		}
		dc.Stroke()

		if opts.Labels {
			px, py := toPixel(xs[0], ys[0], bounds)
			dc.DrawString(fmt.Sprintf("%d", order), px+2, py-2)
		}
	}

	for _, m := range markers {
		if !m.InRange {
			continue // clamped to the edge, would only mislead
		}
		col, exists := colorOf[m.Order]
		if !exists {
			continue
		}

		radius := opts.MarkerRadius
		switch m.Line.Class {
		case echelle.Midi:   radius *= 0.75
		case echelle.Minor:  radius *= 0.5
		case echelle.Listed: radius *= 0.5
		}

		px, py := toPixel(m.X, m.Y, bounds)
		dc.SetColor(col)
		dc.DrawCircle(px, py, radius)
		dc.Stroke()
	}

	return dc.Image(), nil
}

func WritePNG(filename string, img *emath.FloatGrid, g echelle.Geometry, orders []int, markers []echelle.Marker, opts Options) error {
	out, err := Render(img, g, orders, markers, opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(out)
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("overlay write '%s': %v", filename, err)
	}
	return nil
}
