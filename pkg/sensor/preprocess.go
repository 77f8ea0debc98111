package sensor

import(
	"math"

	"github.com/codahale/hdrhistogram"

	"github.com/abworrall/echelle/pkg/emath"
)

// histogramResolution is how many buckets the intensity range is
// quantized into when estimating the background.
const histogramResolution = 1000000

// Preprocess turns a raw frame into the SensorImage the extractor
// samples: decimated, background subtracted, non-negative.
type Preprocess struct {
	Decimate             int
	BackgroundPercentile float64
}

func (pp Preprocess)Apply(g emath.FloatGrid) emath.FloatGrid {
	// Box averaging over the decimation block also suppresses the
	// Bayer mask residue
	out := g.DownSampleBy(pp.Decimate)

	bg := BackgroundLevel(&out, pp.BackgroundPercentile)
	out.Offset(-bg, 0.0)

	return out
}

// BackgroundLevel is the intensity at the given percentile (0-100). At
// 0 it's just the minimum.
func BackgroundLevel(g *emath.FloatGrid, percentile float64) float64 {
	min, max := g.MinMax()
	if g.IsEmpty() || percentile <= 0 || max <= min {
		return min
	}

	h := hdrhistogram.New(0, histogramResolution, 3)
	scale := float64(histogramResolution) / (max - min)
	for _, v := range g.Values() {
		h.RecordValue(int64(math.Round((v - min) * scale)))
	}

	return min + float64(h.ValueAtQuantile(percentile)) / scale
}
