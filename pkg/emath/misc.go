package emath

import(
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Some functions that only operate on basic types, that are useful

func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

// Linspace returns n evenly spaced values over [lo, hi], endpoints included.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{lo}
	}
	out := floats.Span(make([]float64, n), lo, hi)
	out[n-1] = hi
	return out
}

// Sign returns -1, 0 or +1.
func Sign(f float64) float64 {
	switch {
	case f > 0: return 1
	case f < 0: return -1
	}
	return 0
}

// InterpZero linearly interpolates the samples (xs, ys) at x. xs must
// be sorted ascending (repeats allowed). Outside [xs[0], xs[n-1]] the
// result is exactly 0, not the edge value.
func InterpZero(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || x < xs[0] || x > xs[n-1] || math.IsNaN(x) {
		return 0
	}

	i := sort.SearchFloat64s(xs, x) // first index with xs[i] >= x
	if xs[i] == x {
		return ys[i]
	}

	x0, x1 := xs[i-1], xs[i]
	t := (x - x0) / (x1 - x0)
	return ys[i-1] + t*(ys[i]-ys[i-1])
}
