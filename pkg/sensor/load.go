package sensor

import(
	"fmt"
	"image"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"

	"github.com/abworrall/echelle/pkg/emath"
)

// Exposure is what we could find out about how the frame was taken.
// It's informational; nothing downstream depends on it.
type Exposure struct {
	ISO          int64
	ExposureTime string // e.g. "1/500"
	Model        string
}

func (e Exposure)String() string {
	if e.ISO == 0 && e.ExposureTime == "" {
		return "exposure unknown"
	}
	return fmt.Sprintf("%s, ISO%d, %ss", e.Model, e.ISO, e.ExposureTime)
}

// A Frame is a camera frame, reduced to one float intensity per
// pixel, in [0,1].
type Frame struct {
	LoadFilename string
	Exposure
	Grid         emath.FloatGrid
}

func (f Frame)String() string {
	return fmt.Sprintf("%s: %s, %s", filepath.Base(f.LoadFilename), f.Exposure, f.Grid.Stats())
}

// IsImageFile says whether LoadFile knows how to load this.
func IsImageFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff", ".png", ".fits", ".fit", ".fts", ".hdr":
		return true
	}
	return false
}

func LoadFile(filename string) (Frame, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		return loadTIFF(filename)
	case ".png":
		return loadPNG(filename)
	case ".fits", ".fit", ".fts":
		return loadFITS(filename)
	case ".hdr":
		return loadHDR(filename)
	}
	return Frame{}, fmt.Errorf("'%s': unrecognized image type", filename)
}

func loadTIFF(filename string) (Frame, error) {
	f := Frame{LoadFilename: filename}

	// EXIF is nice to have; plenty of RAW converters don't write it.
	if ex, err := loadExif(filename); err != nil {
		log.Printf("%s: no exposure info (%v)\n", filename, err)
	} else {
		f.Exposure = ex
	}

	if reader, err := os.Open(filename); err != nil {
		return f, fmt.Errorf("open+r img '%s': %v", filename, err)
	} else {
		defer reader.Close()
		if img, err := tiff.Decode(reader); err != nil {
			return f, fmt.Errorf("tiff loading '%s': %v", filename, err)
		} else {
			f.Grid = ToFloatGrid(img)
		}
	}

	return f, nil
}

func loadExif(filename string) (Exposure, error) {
	e := Exposure{}

	reader, err := os.Open(filename)
	if err != nil {
		return e, fmt.Errorf("open+r exif '%s': %v", filename, err)
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return e, fmt.Errorf("exif parsing '%s': %v", filename, err)
	}

	if tag,err := ex.Get(exif.ISOSpeedRatings); err == nil {
		if val,err := tag.Int64(0); err == nil {
			e.ISO = val
		}
	}
	if tag,err := ex.Get(exif.ExposureTime); err == nil {
		if num,denom,err := tag.Rat2(0); err == nil {
			if denom == 1 {
				e.ExposureTime = fmt.Sprintf("%d", num)
			} else {
				e.ExposureTime = fmt.Sprintf("%d/%d", num, denom)
			}
		}
	}
	if tag,err := ex.Get(exif.Model); err == nil {
		if s,err := tag.StringVal(); err == nil {
			e.Model = s
		}
	}

	return e, nil
}

func loadPNG(filename string) (Frame, error) {
	f := Frame{LoadFilename: filename}

	reader, err := os.Open(filename)
	if err != nil {
		return f, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return f, fmt.Errorf("png loading '%s': %v", filename, err)
	}
	f.Grid = ToFloatGrid(img)
	return f, nil
}

// loadFITS takes the first 2-D image HDU in the file.
func loadFITS(filename string) (Frame, error) {
	f := Frame{LoadFilename: filename}

	reader, err := os.Open(filename)
	if err != nil {
		return f, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	fits, err := fitsio.Open(reader)
	if err != nil {
		return f, fmt.Errorf("fits parsing '%s': %v", filename, err)
	}
	defer fits.Close()

	for _, hdu := range fits.HDUs() {
		fimg, ok := hdu.(fitsio.Image)
		if !ok || len(fimg.Header().Axes()) != 2 {
			continue
		}
		img := fimg.Image()
		if img == nil {
			continue
		}
		f.Grid = ToFloatGrid(img)
		return f, nil
	}

	return f, fmt.Errorf("fits '%s': no 2-D image HDU", filename)
}

// ToFloatGrid averages the color channels of each pixel into [0,1].
func ToFloatGrid(img image.Image) emath.FloatGrid {
	bounds := img.Bounds()
	g := emath.NewFloatGrid(bounds.Dx(), bounds.Dy())

	for y:=bounds.Min.Y; y<bounds.Max.Y; y++ {
		for x:=bounds.Min.X; x<bounds.Max.X; x++ {
			r, gg, b, _ := img.At(x, y).RGBA()
			g.Set(x-bounds.Min.X, y-bounds.Min.Y, float64(r+gg+b) / 3.0 / float64(0xFFFF))
		}
	}

	return g
}
