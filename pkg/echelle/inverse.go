package echelle

import(
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/interp"

	"github.com/abworrall/echelle/pkg/emath"
)

// DefaultInverseSamples is deliberately coarse; the inverse is only
// used to place annotation markers.
const DefaultInverseSamples = 20

// An InverseMapper recovers the sensor x for a wavelength in a given
// order. There's no closed form, so it samples XToLambda at evenly
// spaced x and interpolates x(λ) piecewise-linearly. Outside the
// sampled range the result clamps to the nearest edge x.
//
// Tables are built once per order and cached; it is safe for
// concurrent use.
type InverseMapper struct {
	Geometry
	Samples int

	mu     sync.Mutex
	tables map[int]*inverseTable
}

type inverseTable struct {
	fit       interp.PiecewiseLinear
	lambdaMin float64
	lambdaMax float64
}

func NewInverseMapper(g Geometry, samples int) *InverseMapper {
	if samples < 2 {
		samples = DefaultInverseSamples
	}
	return &InverseMapper{
		Geometry: g,
		Samples:  samples,
		tables:   map[int]*inverseTable{},
	}
}

func (im *InverseMapper)table(order int) (*inverseTable, error) {
	if order == 0 {
		return nil, &DomainError{order}
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	if t, exists := im.tables[order]; exists {
		return t, nil
	}

	t, err := newInverseTable(im.Geometry, order, im.Samples)
	if err != nil {
		return nil, err
	}
	im.tables[order] = t
	return t, nil
}

func newInverseTable(g Geometry, order, n int) (*inverseTable, error) {
	type sample struct{ x, lambda float64 }

	samples := []sample{}
	for _, x := range emath.Linspace(0, 1, n) {
		lambda, err := g.XToLambda(x, order)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample{x, lambda})
	}

	// Negative orders run backwards in λ; the interpolator wants λ ascending.
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].lambda < samples[j].lambda })

	lambdas, xs := []float64{}, []float64{}
	for _, s := range samples {
		if len(lambdas) > 0 && s.lambda <= lambdas[len(lambdas)-1] {
			continue
		}
		lambdas = append(lambdas, s.lambda)
		xs = append(xs, s.x)
	}

	t := inverseTable{lambdaMin: lambdas[0], lambdaMax: lambdas[len(lambdas)-1]}
	if err := t.fit.Fit(lambdas, xs); err != nil {
		return nil, fmt.Errorf("order %d: x(λ) table is degenerate: %v", order, err)
	}
	return &t, nil
}

// LambdaToX maps a wavelength (m) back to a normalized sensor x.
func (im *InverseMapper)LambdaToX(lambda float64, order int) (float64, error) {
	t, err := im.table(order)
	if err != nil {
		return 0, err
	}
	return t.fit.Predict(lambda), nil
}

// Range is the span of wavelengths the order covers across the sensor
// width. LambdaToX is only meaningful inside it.
func (im *InverseMapper)Range(order int) (float64, float64, error) {
	t, err := im.table(order)
	if err != nil {
		return 0, 0, err
	}
	return t.lambdaMin, t.lambdaMax, nil
}

func (im *InverseMapper)InRange(lambda float64, order int) bool {
	lo, hi, err := im.Range(order)
	return err == nil && lambda >= lo && lambda <= hi
}
