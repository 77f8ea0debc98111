package sensor

import(
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/echelle/pkg/emath"
)

// HDRGrid presents a FloatGrid as a gray HDR image, so it can be
// written out as Radiance RGBE without clipping the bright lines.
type HDRGrid struct {
	Grid *emath.FloatGrid
}

// Implement image.Image
func (hg HDRGrid)ColorModel() color.Model       { return hdrcolor.RGBModel }
func (hg HDRGrid)Bounds() image.Rectangle       { return hg.Grid.Bounds() }
func (hg HDRGrid)At(x, y int) color.Color       { return hg.HDRAt(x,y) }

// Implement hdr.Image
func (hg HDRGrid)HDRAt(x, y int) hdrcolor.Color {
	v := hg.Grid.Get(x, y)
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (hg HDRGrid)Size() int                     { return hg.Grid.Dx() * hg.Grid.Dy() }

// WriteHDR saves the grid as a Radiance .hdr file. Handy for looking
// at the preprocessed SensorImage in an HDR viewer.
func WriteHDR(filename string, g *emath.FloatGrid) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("WriteHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		if err := rgbe.Encode(writer, HDRGrid{g}); err != nil {
			return fmt.Errorf("WriteHDR, encoding RGBE '%s': %v", filename, err)
		}
	}
	return nil
}

// loadHDR reads a Radiance RGBE file, e.g. a stacked exposure. Values
// are kept as-is, they are not squashed into [0,1].
func loadHDR(filename string) (Frame, error) {
	f := Frame{LoadFilename: filename}

	reader, err := os.Open(filename)
	if err != nil {
		return f, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	img, err := rgbe.Decode(reader)
	if err != nil {
		return f, fmt.Errorf("rgbe loading '%s': %v", filename, err)
	}

	hdrImg, ok := img.(hdr.Image)
	if !ok {
		f.Grid = ToFloatGrid(img)
		return f, nil
	}

	bounds := hdrImg.Bounds()
	f.Grid = emath.NewFloatGrid(bounds.Dx(), bounds.Dy())
	for y:=bounds.Min.Y; y<bounds.Max.Y; y++ {
		for x:=bounds.Min.X; x<bounds.Max.X; x++ {
			r, g, b, _ := hdrImg.HDRAt(x, y).HDRRGBA()
			f.Grid.Set(x-bounds.Min.X, y-bounds.Min.Y, (r+g+b) / 3.0)
		}
	}
	return f, nil
}
