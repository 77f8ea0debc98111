package echelle

import(
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
)

type LineClass int

const(
	Major LineClass = iota
	Midi
	Minor
	Listed // loaded from a line list file
)

func (lc LineClass)String() string {
	switch lc {
	case Major:  return "major"
	case Midi:   return "midi"
	case Minor:  return "minor"
	}
	return "listed"
}

// A ReferenceLine is a known emission line, used to check calibration
// by eye. Wavelength is in meters.
type ReferenceLine struct {
	Wavelength float64
	Intensity  float64 // relative
	Class      LineClass
}

// Neon lamp lines, in nm. (There is a known mismatch below ~500nm
// with the default parameters.)
var(
	neonMajorNM = []float64{585.249, 614.306, 640.225, 703.241}
	neonMidiNM  = []float64{
		576.4674, 588.189, 594.483, 607.434, 609.616, 616.359, 626.649, 633.443,
		638.299, 650.653, 667.828, 671.704, 692.947, 724.517,
	}
	neonMinorNM = []float64{
		334.148, 365.0146, 365.4833, 366.3276, 404.6563, 407.7831, 435.8328, 491.6068, 546.0735,
		576.9598, 579.0640, 581.932, 597.553, 603.000, 621.728, 630.479, 653.288, 659.895,
		717.394, 743.890,
	}
)

// NeonLines returns the built-in neon reference lines.
func NeonLines() []ReferenceLine {
	lines := []ReferenceLine{}
	add := func(nms []float64, intensity float64, class LineClass) {
		for _, nm := range nms {
			lines = append(lines, ReferenceLine{nm * 1e-9, intensity, class})
		}
	}
	add(neonMajorNM, 100, Major)
	add(neonMidiNM,   30, Midi)
	add(neonMinorNM,  10, Minor)
	return lines
}

// ReadLineList parses two whitespace separated columns: wavelength
// (nm) and relative intensity. A missing intensity column means 1.0.
// Lines that don't start with a number are logged and skipped.
func ReadLineList(r io.Reader, source string) ([]ReferenceLine, error) {
	lines := []ReferenceLine{}
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		nm, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			log.Printf("Warning: could not read a wavelength from line #%d of '%s', skipping\n", n, source)
			continue
		}
		intensity := 1.0
		if len(fields) > 1 {
			if f, err := strconv.ParseFloat(fields[1], 64); err == nil {
				intensity = f
			} else {
				log.Printf("Warning: bad intensity `%s` in line #%d of '%s', using 1.0\n", fields[1], n, source)
			}
		}
		lines = append(lines, ReferenceLine{nm * 1e-9, intensity, Listed})
	}

	return lines, scanner.Err()
}

// IsLineListFile says whether the file looks like a line list rather
// than a parameter file: no `=` anywhere, and every data line starts
// with a number. Both use .dat.
func IsLineListFile(filename string) (bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		return false, fmt.Errorf("open '%s': %w", filename, err)
	}
	defer f.Close()

	nData := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "=") {
			return false, nil
		}
		if _, err := strconv.ParseFloat(strings.Fields(line)[0], 64); err != nil {
			return false, nil
		}
		nData++
	}
	return nData > 0, scanner.Err()
}

func LoadLineList(filename string) ([]ReferenceLine, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open '%s': %w", filename, err)
	}
	defer f.Close()

	lines, err := ReadLineList(f, filename)
	if err != nil {
		return nil, fmt.Errorf("read '%s': %w", filename, err)
	}
	return lines, nil
}

// A Marker places a reference line on the sensor image, for one order.
type Marker struct {
	Order   int
	Line    ReferenceLine
	X, Y    float64 // normalized sensor coords
	InRange bool    // false: λ is outside this order's span, so X is clamped to an edge
}

// Annotate works out where each reference line should appear in each
// order. Lines the prism model can't place are left out.
func Annotate(im *InverseMapper, orders []int, lines []ReferenceLine) ([]Marker, error) {
	markers := []Marker{}

	for _, order := range orders {
		for _, line := range lines {
			x, err := im.LambdaToX(line.Wavelength, order)
			if err != nil {
				return nil, fmt.Errorf("annotate order %d: %w", order, err)
			}
			y, err := im.LambdaToY(line.Wavelength)
			if err != nil {
				continue
			}
			markers = append(markers, Marker{
				Order:   order,
				Line:    line,
				X:       x,
				Y:       y,
				InRange: im.InRange(line.Wavelength, order),
			})
		}
	}

	return markers, nil
}

// OrderTrace samples the path an order takes across the sensor, as n
// (x, y) points. Points where the prism model fails are skipped.
func OrderTrace(g Geometry, order, n int) ([]float64, []float64, error) {
	if n < 2 {
		n = 2
	}
	xs, ys := []float64{}, []float64{}
	for i:=0; i<n; i++ {
		x := float64(i) / float64(n-1)
		_, y, err := g.XToY(x, order)
		if IsOpticalModelError(err) {
			continue
		} else if err != nil {
			return nil, nil, err
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys, nil
}

// SyntheticWeight is the peak height a line gets in a synthetic
// spectrum. Listed lines carry NIST relative intensities, which are
// compressed; cubing and scaling them gives peaks comparable to what the
// sensor records. The built-in lines are already on that scale.
func (rl ReferenceLine)SyntheticWeight() float64 {
	if rl.Class == Listed {
		return math.Pow(rl.Intensity, 3) / 1e10
	}
	return rl.Intensity
}

// SyntheticSpectrum renders reference lines as 1nm-wide gaussians on a
// unit baseline, evaluated at the grid wavelengths (meters).
func SyntheticSpectrum(lines []ReferenceLine, grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, lambda := range grid {
		v := 1.0
		for _, line := range lines {
			d := (lambda - line.Wavelength) * 1e9
			v += math.Exp(-d*d) * line.SyntheticWeight()
		}
		out[i] = v
	}
	return out
}
