package echelle

import(
	"log"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/abworrall/echelle/pkg/emath"
)

// WeightExponent shapes the taper; below 1 it makes the window
// flatter-topped than a plain sine.
const WeightExponent = 0.8

// Weight is the blending window over an order's own normalized
// wavelength q ∈ [0,1]:
//
//   sin(qπ)^0.8 × (sign(q)+1) × (sign(1-q)+1) / 4
//
// It is exactly zero at and beyond both edges, and peaks at 1.0 in the
// middle. Orders are least trustworthy at their ends (vignetting, blaze
// falloff), so they fade out there and let the neighbouring order take
// over.
func Weight(q float64) float64 {
	if !(q > 0 && q < 1) {
		return 0
	}
	return math.Pow(math.Sin(q*math.Pi), WeightExponent) * (emath.Sign(q)+1) * (emath.Sign(1-q)+1) / 4
}

// usablePartial is a partial spectrum that can be normalized: at least
// two samples spanning a nonzero range.
func usablePartial(ps PartialSpectrum) bool {
	if ps.Len() < 2 {
		return false
	}
	lo, hi := ps.Span()
	return hi > lo
}

// Stitch merges the per-order spectra into one. The output grid runs
// evenly from the lowest to the highest wavelength seen, with as many
// points as there were input samples in total. Each order contributes
// weight×intensity and weight, both linearly resampled onto the grid
// (and zero outside the order's own range); the composite is the ratio
// of the two sums. Grid points that no order covers come out as NaN.
func Stitch(partials []PartialSpectrum) (CompositeSpectrum, error) {
	usable := []PartialSpectrum{}
	nTotal := 0
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, ps := range partials {
		if !usablePartial(ps) {
			if ps.Len() > 0 {
				log.Printf("Stitch: skipping order %d, only %d sample(s) over a zero range\n", ps.Order, ps.Len())
			}
			continue
		}
		usable = append(usable, ps)
		nTotal += ps.Len()
		l, h := ps.Span()
		lo = math.Min(lo, l)
		hi = math.Max(hi, h)
	}

	if len(usable) == 0 {
		return CompositeSpectrum{}, ErrNoSamples
	}

	cs := CompositeSpectrum{
		Wavelengths: emath.Linspace(lo, hi, nTotal),
		Intensities: make([]float64, nTotal),
		Weights:     make([]float64, nTotal),
	}

	weighted := make([]float64, nTotal)
	for _, ps := range usable {
		ps = ps.Sorted()
		pLo, pHi := ps.Span()

		w  := make([]float64, ps.Len())
		wi := make([]float64, ps.Len())
		for i, lambda := range ps.Wavelengths {
			w[i]  = Weight((lambda - pLo) / (pHi - pLo))
			wi[i] = w[i] * ps.Intensities[i]
		}

		for j, lambda := range cs.Wavelengths {
			weighted[j]   += emath.InterpZero(lambda, ps.Wavelengths, wi)
			cs.Weights[j] += emath.InterpZero(lambda, ps.Wavelengths, w)
		}
	}

	for j := range cs.Intensities {
		if cs.Weights[j] > 0 {
			cs.Intensities[j] = weighted[j] / cs.Weights[j]
		} else {
			cs.Intensities[j] = math.NaN()
		}
	}

	return cs, nil
}

// Normalize scales a composite so its largest finite intensity is 1.
// Handy before comparing against a reference spectrum.
func (cs CompositeSpectrum)Normalize() CompositeSpectrum {
	finite := []float64{}
	for i:=0; i<cs.Len(); i++ {
		if !cs.IsGap(i) { finite = append(finite, cs.Intensities[i]) }
	}
	if len(finite) == 0 {
		return cs
	}
	max := floats.Max(finite)
	if max == 0 {
		return cs
	}

	out := cs
	out.Intensities = make([]float64, cs.Len())
	for i, v := range cs.Intensities {
		out.Intensities[i] = v / max
	}
	return out
}
