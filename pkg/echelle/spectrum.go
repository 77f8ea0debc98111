package echelle

import(
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/astrogo/fitsio"
	"gonum.org/v1/gonum/floats"
)

// A PartialSpectrum is the raw (wavelength, intensity) trace pulled
// out of the sensor image for one diffraction order. Wavelengths are
// in meters, intensities in whatever units the image had. They usually
// come out ascending (columns are walked left to right) but nothing
// downstream relies on that.
type PartialSpectrum struct {
	Order       int
	Wavelengths []float64
	Intensities []float64

	// Bookkeeping for the columns that were dropped
	OffSensor   int // wavelength falls outside the sensor for this order
	ModelErrors int // optical model had no real solution
}

func (ps PartialSpectrum)Len() int { return len(ps.Wavelengths) }

// Span returns the min and max wavelength.
func (ps PartialSpectrum)Span() (float64, float64) {
	if ps.Len() == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(ps.Wavelengths), floats.Max(ps.Wavelengths)
}

func (ps PartialSpectrum)String() string {
	lo, hi := ps.Span()
	return fmt.Sprintf("order %3d: %4d samples, %7.2f-%7.2f nm (dropped %d off-sensor, %d model)",
		ps.Order, ps.Len(), lo*1e9, hi*1e9, ps.OffSensor, ps.ModelErrors)
}

// Sorted returns a copy with the samples in ascending wavelength order.
func (ps PartialSpectrum)Sorted() PartialSpectrum {
	idx := make([]int, ps.Len())
	for i := range idx { idx[i] = i }
	sort.SliceStable(idx, func(i, j int) bool { return ps.Wavelengths[idx[i]] < ps.Wavelengths[idx[j]] })

	out := ps
	out.Wavelengths = make([]float64, len(idx))
	out.Intensities = make([]float64, len(idx))
	for i, j := range idx {
		out.Wavelengths[i] = ps.Wavelengths[j]
		out.Intensities[i] = ps.Intensities[j]
	}
	return out
}

// A CompositeSpectrum is the stitched result, on a uniform wavelength
// grid. Where no order had any weight the intensity is NaN; that's a
// gap, and should be shown as one.
type CompositeSpectrum struct {
	Wavelengths []float64 // meters, strictly increasing
	Intensities []float64
	Weights     []float64 // total blending weight at each grid point
}

// A Gap is a run of grid indices [From, To] with no data.
type Gap struct {
	From, To int
}

func (cs CompositeSpectrum)Len() int          { return len(cs.Wavelengths) }
func (cs CompositeSpectrum)IsGap(i int) bool  { return math.IsNaN(cs.Intensities[i]) }

func (cs CompositeSpectrum)Gaps() []Gap {
	gaps := []Gap{}
	for i:=0; i<cs.Len(); i++ {
		if !cs.IsGap(i) {
			continue
		}
		if n := len(gaps); n > 0 && gaps[n-1].To == i-1 {
			gaps[n-1].To = i
		} else {
			gaps = append(gaps, Gap{i, i})
		}
	}
	return gaps
}

// Coverage is the fraction of grid points that have data.
func (cs CompositeSpectrum)Coverage() float64 {
	if cs.Len() == 0 {
		return 0
	}
	n := 0
	for i:=0; i<cs.Len(); i++ {
		if !cs.IsGap(i) { n++ }
	}
	return float64(n) / float64(cs.Len())
}

func (cs CompositeSpectrum)String() string {
	if cs.Len() == 0 {
		return "CompositeSpectrum[empty]"
	}
	return fmt.Sprintf("CompositeSpectrum[%d points, %.2f-%.2f nm, %.1f%% covered, %d gaps]",
		cs.Len(), cs.Wavelengths[0]*1e9, cs.Wavelengths[cs.Len()-1]*1e9, 100*cs.Coverage(), len(cs.Gaps()))
}

func unitScale(unit string) (float64, error) {
	switch unit {
	case "m", "":  return 1, nil
	case "nm":     return 1e9, nil
	}
	return 0, fmt.Errorf("no wavelength unit named '%s'", unit)
}

// WriteDat writes two whitespace separated columns, wavelength and
// intensity; gaps are written as `nan`.
func (cs CompositeSpectrum)WriteDat(w io.Writer, unit string) error {
	scale, err := unitScale(unit)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# wavelength(%s) intensity\n", unit)
	for i:=0; i<cs.Len(); i++ {
		if cs.IsGap(i) {
			fmt.Fprintf(bw, "%.6g nan\n", cs.Wavelengths[i]*scale)
		} else {
			fmt.Fprintf(bw, "%.6g %.6g\n", cs.Wavelengths[i]*scale, cs.Intensities[i])
		}
	}
	return bw.Flush()
}

// WriteComparisonDat is WriteDat with a third column, a reference
// spectrum on the same grid (e.g. from SyntheticSpectrum).
func (cs CompositeSpectrum)WriteComparisonDat(w io.Writer, unit string, reference []float64) error {
	if len(reference) != cs.Len() {
		return fmt.Errorf("reference has %d points, spectrum has %d", len(reference), cs.Len())
	}
	scale, err := unitScale(unit)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# wavelength(%s) intensity reference\n", unit)
	for i:=0; i<cs.Len(); i++ {
		if cs.IsGap(i) {
			fmt.Fprintf(bw, "%.6g nan %.6g\n", cs.Wavelengths[i]*scale, reference[i])
		} else {
			fmt.Fprintf(bw, "%.6g %.6g %.6g\n", cs.Wavelengths[i]*scale, cs.Intensities[i], reference[i])
		}
	}
	return bw.Flush()
}

// WriteFITS writes the spectrum as a 1-D float64 image, with the
// standard linear wavelength axis keywords. Gaps stay as NaN.
func (cs CompositeSpectrum)WriteFITS(w io.Writer) error {
	if cs.Len() == 0 {
		return fmt.Errorf("WriteFITS: empty spectrum")
	}

	step := 0.0
	if cs.Len() > 1 {
		step = (cs.Wavelengths[cs.Len()-1] - cs.Wavelengths[0]) / float64(cs.Len()-1)
	}

	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()

	im := fitsio.NewImage(-64, []int{cs.Len()})
	defer im.Close()

	err = im.Header().Append(
		fitsio.Card{Name: "CTYPE1", Value: "WAVE", Comment: "linear wavelength axis"},
		fitsio.Card{Name: "CUNIT1", Value: "m"},
		fitsio.Card{Name: "CRPIX1", Value: 1.0},
		fitsio.Card{Name: "CRVAL1", Value: cs.Wavelengths[0], Comment: "wavelength of first pixel"},
		fitsio.Card{Name: "CDELT1", Value: step, Comment: "wavelength step"},
	)
	if err != nil {
		return err
	}

	data := make([]float64, cs.Len())
	copy(data, cs.Intensities)
	if err := im.Write(data); err != nil {
		return err
	}
	return fits.Write(im)
}

func (cs CompositeSpectrum)WriteToFile(filename, unit string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return cs.WriteDat(writer, unit)
	}
}

func (cs CompositeSpectrum)WriteComparisonToFile(filename, unit string, reference []float64) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return cs.WriteComparisonDat(writer, unit, reference)
	}
}

func (cs CompositeSpectrum)WriteToFITSFile(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return cs.WriteFITS(writer)
	}
}
