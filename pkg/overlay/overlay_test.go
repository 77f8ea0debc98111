package overlay

import(
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/echelle/pkg/echelle"
	"github.com/abworrall/echelle/pkg/emath"
)

func countColored(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != g || g != bl {
				n++
			}
		}
	}
	return n
}

func TestRender(t *testing.T) {
	geom, err := echelle.DefaultParameters().Geometry()
	require.NoError(t, err)
	frame := emath.NewFloatGrid(200, 100)

	plain, err := Render(&frame, geom, nil, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), plain.Bounds())
	assert.Equal(t, 0, countColored(plain))

	orders := []int{9, 10, 11}
	markers, err := echelle.Annotate(echelle.NewInverseMapper(geom, 0), orders, echelle.NeonLines())
	require.NoError(t, err)

	drawn, err := Render(&frame, geom, orders, markers, DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, countColored(drawn), 100)

	empty := emath.FloatGrid{}
	_, err = Render(&empty, geom, orders, nil, DefaultOptions())
	assert.Error(t, err)
}

func TestOrderColor(t *testing.T) {
	a, b := OrderColor(0, 5), OrderColor(2, 5)
	assert.NotEqual(t, a.Hex(), b.Hex())
	assert.Equal(t, OrderColor(0, 0).Hex(), OrderColor(0, 1).Hex())
}

func TestWritePNG(t *testing.T) {
	geom, err := echelle.DefaultParameters().Geometry()
	require.NoError(t, err)
	frame := emath.NewFloatGrid(60, 40)

	filename := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, WritePNG(filename, &frame, geom, []int{9}, nil, DefaultOptions()))
	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
