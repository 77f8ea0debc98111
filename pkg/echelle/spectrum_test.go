package echelle_test

import(
	"bytes"
	"math"
	"path/filepath"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/echelle/pkg/echelle"
)

func smallComposite() echelle.CompositeSpectrum {
	return echelle.CompositeSpectrum{
		Wavelengths: []float64{500e-9, 501e-9, 502e-9, 503e-9, 504e-9, 505e-9},
		Intensities: []float64{math.NaN(), 1.5, math.NaN(), math.NaN(), 2, math.NaN()},
		Weights:     []float64{0, 1, 0, 0, 1, 0},
	}
}

func TestPartialSorted(t *testing.T) {
	ps := echelle.PartialSpectrum{
		Order:       -6,
		Wavelengths: []float64{3, 1, 2},
		Intensities: []float64{30, 10, 20},
	}
	s := ps.Sorted()
	assert.Equal(t, []float64{1, 2, 3}, s.Wavelengths)
	assert.Equal(t, []float64{10, 20, 30}, s.Intensities)
	assert.Equal(t, []float64{3, 1, 2}, ps.Wavelengths, "original untouched")

	lo, hi := ps.Span()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)

	lo, _ = echelle.PartialSpectrum{}.Span()
	assert.True(t, math.IsNaN(lo))
}

func TestGaps(t *testing.T) {
	cs := smallComposite()
	assert.Equal(t, []echelle.Gap{{0, 0}, {2, 3}, {5, 5}}, cs.Gaps())
	assert.InDelta(t, 2.0/6.0, cs.Coverage(), 1e-12)
	assert.Contains(t, cs.String(), "3 gaps")
}

func TestWriteDat(t *testing.T) {
	cs := smallComposite()

	buf := bytes.Buffer{}
	require.NoError(t, cs.WriteDat(&buf, "nm"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "# wavelength(nm) intensity", lines[0])
	assert.Equal(t, "500 nan", lines[1])
	assert.Equal(t, "501 1.5", lines[2])
	assert.Equal(t, "504 2", lines[5])

	buf.Reset()
	require.NoError(t, cs.WriteDat(&buf, "m"))
	assert.Contains(t, buf.String(), "5.01e-07 1.5\n")

	assert.Error(t, cs.WriteDat(&buf, "furlongs"))
}

func TestWriteFITS(t *testing.T) {
	cs := smallComposite()

	buf := bytes.Buffer{}
	require.NoError(t, cs.WriteFITS(&buf))
	require.Greater(t, buf.Len(), 0)
	assert.Equal(t, 0, buf.Len() % 2880, "FITS files come in 2880 byte blocks")
	assert.Contains(t, buf.String(), "CTYPE1")
	assert.Contains(t, buf.String(), "CDELT1")

	assert.Error(t, echelle.CompositeSpectrum{}.WriteFITS(&buf))
}

func TestWriteToFiles(t *testing.T) {
	dir := t.TempDir()
	cs := smallComposite()

	dat := filepath.Join(dir, "spectrum.dat")
	require.NoError(t, cs.WriteToFile(dat, "nm"))
	b, err := os.ReadFile(dat)
	require.NoError(t, err)
	assert.Contains(t, string(b), "502 nan\n")

	fits := filepath.Join(dir, "spectrum.fits")
	require.NoError(t, cs.WriteToFITSFile(fits))
	_, err = os.Stat(fits)
	assert.NoError(t, err)

	assert.Error(t, cs.WriteToFile(filepath.Join(dir, "no", "such", "dir.dat"), "nm"))
}

func TestWriteComparisonDat(t *testing.T) {
	cs := smallComposite().Normalize()
	reference := echelle.SyntheticSpectrum(nil, cs.Wavelengths)

	buf := bytes.Buffer{}
	require.NoError(t, cs.WriteComparisonDat(&buf, "nm", reference))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "# wavelength(nm) intensity reference", lines[0])
	assert.Equal(t, "500 nan 1", lines[1])
	assert.Equal(t, "501 0.75 1", lines[2])
	assert.Equal(t, "504 1 1", lines[5])

	assert.Error(t, cs.WriteComparisonDat(&buf, "nm", reference[1:]))
	assert.Error(t, cs.WriteComparisonDat(&buf, "parsecs", reference))
}
