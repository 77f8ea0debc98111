package sensor

import(
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/echelle/pkg/emath"
)

func TestToFloatGrid(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 13, 22))
	img.Set(10, 20, color.RGBA{255, 255, 255, 255})
	img.Set(12, 21, color.RGBA{255, 0, 0, 255})

	g := ToFloatGrid(img)
	require.Equal(t, 3, g.Dx())
	require.Equal(t, 2, g.Dy())
	assert.InDelta(t, 1.0, g.Get(0, 0), 1e-9)
	assert.InDelta(t, 1.0/3.0, g.Get(2, 1), 1e-9)
	assert.Equal(t, 0.0, g.Get(1, 0))
}

func TestLoadPNG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.SetGray(1, 2, color.Gray{51})

	filename := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(filename)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	require.True(t, IsImageFile(filename))
	frame, err := LoadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, filename, frame.LoadFilename)
	assert.Equal(t, 4, frame.Grid.Dx())
	assert.Equal(t, 3, frame.Grid.Dy())
	assert.InDelta(t, 0.2, frame.Grid.Get(1, 2), 1e-9)
	assert.Contains(t, frame.String(), "exposure unknown")
}

func TestLoadFileErrors(t *testing.T) {
	assert.False(t, IsImageFile("params.dat"))
	_, err := LoadFile("params.dat")
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.fits")
	require.NoError(t, os.WriteFile(bad, []byte("not a fits file"), 0644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestBackgroundLevel(t *testing.T) {
	g := emath.NewFloatGrid(10, 10)
	for i := range g.Values() {
		g.Values()[i] = float64(i)
	}

	assert.Equal(t, 0.0, BackgroundLevel(&g, 0))
	assert.InDelta(t, 49.5, BackgroundLevel(&g, 50), 1.0)
	assert.InDelta(t, 99.0, BackgroundLevel(&g, 100), 0.5)

	flat := emath.NewFloatGrid(3, 3)
	flat.Offset(7, 0)
	assert.Equal(t, 7.0, BackgroundLevel(&flat, 50))
}

func TestPreprocess(t *testing.T) {
	g, err := emath.NewFloatGridFromRows([][]float64{
		{2, 2, 4, 4},
		{2, 2, 4, 4},
		{3, 3, 9, 9},
		{3, 3, 9, 9},
	})
	require.NoError(t, err)

	out := Preprocess{Decimate: 2, BackgroundPercentile: 0}.Apply(g)
	require.Equal(t, 2, out.Dx())
	assert.Equal(t, []float64{0, 2, 1, 7}, out.Values())

	out = Preprocess{Decimate: 1}.Apply(g)
	assert.Equal(t, 4, out.Dx())
	assert.Equal(t, 0.0, out.Get(0, 0))
	assert.Equal(t, 2.0, g.Get(0, 0), "input untouched")
}

func TestHDRRoundTrip(t *testing.T) {
	g, err := emath.NewFloatGridFromRows([][]float64{
		{0, 0.5, 12.0},
		{1.0, 250.0, 0.25},
	})
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "frame.hdr")
	require.NoError(t, WriteHDR(filename, &g))

	require.True(t, IsImageFile(filename))
	frame, err := LoadFile(filename)
	require.NoError(t, err)
	require.Equal(t, 3, frame.Grid.Dx())
	require.Equal(t, 2, frame.Grid.Dy())

	// RGBE keeps about 8 bits of mantissa, but no ceiling
	for y:=0; y<2; y++ {
		for x:=0; x<3; x++ {
			want := g.Get(x, y)
			assert.InDelta(t, want, frame.Grid.Get(x, y), 0.01*want + 1e-6, "(%d,%d)", x, y)
		}
	}
}
